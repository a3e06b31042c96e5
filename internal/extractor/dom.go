package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kaptinlin/jsonrepair"

	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
	"github.com/Pavankona715/seo-audit-platform/internal/sanitizer"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/internal/textify"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

/*
Responsibilities
- Parse HTML into a DOM tree
- Populate the normalized page fields: meta tags, canonical link,
  outbound links, image descriptors, JSON-LD blocks
- Derive plain text through the sanitize -> textify pipeline

Parse errors are absorbed: a malformed JSON-LD block is skipped, a page
that fails to parse at all yields empty (never absent) fields.
*/

// Extractor turns one fetched HTML body into the normalized page fields.
type Extractor interface {
	Extract(sourceUrl url.URL, htmlByte []byte) (ExtractionResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ Extractor = (*DomExtractor)(nil)

type DomExtractor struct {
	metadataSink metadata.MetadataSink
	sanitizer    sanitizer.Sanitizer
	textifier    textify.Textifier
}

func NewDomExtractor(metadataSink metadata.MetadataSink) DomExtractor {
	htmlSanitizer := sanitizer.NewHTMLSanitizer(metadataSink)
	return DomExtractor{
		metadataSink: metadataSink,
		sanitizer:    &htmlSanitizer,
		textifier:    textify.NewMarkdownTextifier(metadataSink),
	}
}

// NewDomExtractorWithDeps creates a DomExtractor with injected pipeline
// stages for testing.
func NewDomExtractorWithDeps(metadataSink metadata.MetadataSink, san sanitizer.Sanitizer, tex textify.Textifier) DomExtractor {
	return DomExtractor{
		metadataSink: metadataSink,
		sanitizer:    san,
		textifier:    tex,
	}
}

func (d *DomExtractor) Extract(
	sourceUrl url.URL,
	htmlByte []byte,
) (ExtractionResult, failure.ClassifiedError) {
	result, err := d.extract(htmlByte)
	if err != nil {
		var extractionError *ExtractionError
		errors.As(err, &extractionError)
		if d.metadataSink != nil {
			d.metadataSink.RecordError(metadata.NewErrorRecord(
				"extractor",
				"DomExtractor.Extract",
				mapExtractionErrorToMetadataCause(extractionError),
				err,
				metadata.NewAttr(metadata.AttrURL, fmt.Sprintf("%v", sourceUrl)),
			))
		}
		return emptyResult(), extractionError
	}
	return result, nil
}

func (d *DomExtractor) extract(htmlByte []byte) (ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlByte))
	if err != nil {
		return ExtractionResult{}, &ExtractionError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	result := emptyResult()

	extractMeta(doc, result.Meta)
	result.CanonicalURL = extractCanonical(doc)
	result.Links = extractLinks(doc)
	result.Images = extractImages(doc)
	result.StructuredData = extractStructuredData(doc)
	result.HasRelNext = doc.Find(`link[rel="next"]`).Length() > 0
	result.HasRelPrev = doc.Find(`link[rel="prev"]`).Length() > 0

	// Text extraction mutates the tree (boilerplate removal), so it runs
	// last, after every field above has been read from the intact DOM.
	d.extractText(doc, &result)

	return result, nil
}

// extractMeta fills meta with lowercased name/property -> content, with the
// document title stored under "title".
func extractMeta(doc *goquery.Document, meta map[string]string) {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		meta["title"] = title
	}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok {
			name, ok = s.Attr("property")
		}
		if !ok || name == "" {
			return
		}
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		meta[strings.ToLower(strings.TrimSpace(name))] = content
	})
}

func extractCanonical(doc *goquery.Document) string {
	href, _ := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	return strings.TrimSpace(href)
}

// skippedHrefPrefixes are anchors that never lead to a crawlable document.
var skippedHrefPrefixes = []string{"#", "mailto:", "tel:", "javascript:"}

func extractLinks(doc *goquery.Document) []string {
	links := []string{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		lower := strings.ToLower(href)
		for _, prefix := range skippedHrefPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return
			}
		}
		links = append(links, href)
	})
	return links
}

func extractImages(doc *goquery.Document) []seomodel.Image {
	images := []seomodel.Image{}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		images = append(images, seomodel.Image{
			Src:     s.AttrOr("src", ""),
			Alt:     s.AttrOr("alt", ""),
			Width:   s.AttrOr("width", ""),
			Height:  s.AttrOr("height", ""),
			Loading: s.AttrOr("loading", ""),
		})
	})
	return images
}

// extractStructuredData parses every JSON-LD script individually. A block
// that fails to parse is run through jsonrepair before being skipped.
func extractStructuredData(doc *goquery.Document) []any {
	blocks := []any{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err == nil {
			blocks = append(blocks, value)
			return
		}
		repaired, err := jsonrepair.JSONRepair(raw)
		if err != nil {
			return
		}
		if err := json.Unmarshal([]byte(repaired), &value); err == nil {
			blocks = append(blocks, value)
		}
	})
	return blocks
}

// extractText runs the sanitize -> textify pipeline over the (already
// harvested) DOM. Failures leave the text fields empty; they never fail
// the extraction as a whole.
func (d *DomExtractor) extractText(doc *goquery.Document, result *ExtractionResult) {
	root := doc.Get(0)
	if root == nil {
		return
	}
	sanitized, sanErr := d.sanitizer.Sanitize(root)
	if sanErr != nil {
		return
	}
	text, texErr := d.textifier.Textify(sanitized.GetContentNode())
	if texErr != nil {
		return
	}
	result.TextContent = text.PlainText()
	result.WordCount = text.WordCount()
	result.H1Count = text.HeadingCount(1)
}
