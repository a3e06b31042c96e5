/*
Responsibilities
- Remove script, style, nav and footer subtrees
- Remove comment nodes

Only content a reader would see may pass through to text extraction.
*/
package sanitizer

import (
	"errors"

	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
	"golang.org/x/net/html"
)

// strippedTags are the subtrees that never contribute reader-visible page
// text: executable/style payloads plus site chrome.
var strippedTags = map[string]struct{}{
	"script": {},
	"style":  {},
	"nav":    {},
	"footer": {},
}

type HtmlSanitizer struct {
	metadataSink metadata.MetadataSink
}

func NewHTMLSanitizer(metadataSink metadata.MetadataSink) HtmlSanitizer {
	return HtmlSanitizer{
		metadataSink: metadataSink,
	}
}

// Sanitize removes boilerplate subtrees from the document in place and
// returns it wrapped as a SanitizedHTMLDoc. All sanitization errors are
// recorded via metadataSink before being returned.
func (h *HtmlSanitizer) Sanitize(
	inputContentNode *html.Node,
) (SanitizedHTMLDoc, failure.ClassifiedError) {
	sanitizedHtmlDoc, err := sanitize(inputContentNode)
	if err != nil {
		var sanitizationError *SanitizationError
		errors.As(err, &sanitizationError)
		if h.metadataSink != nil {
			h.metadataSink.RecordError(metadata.NewErrorRecord(
				"sanitizer",
				"HtmlSanitizer.Sanitize",
				mapSanitizationErrorToMetadataCause(*sanitizationError),
				err,
			))
		}
		return SanitizedHTMLDoc{}, sanitizationError
	}
	return sanitizedHtmlDoc, nil
}

func sanitize(doc *html.Node) (SanitizedHTMLDoc, *SanitizationError) {
	if doc == nil {
		return SanitizedHTMLDoc{}, &SanitizationError{
			Message:   "nil document node",
			Retryable: false,
			Cause:     ErrCauseUnparseableHTML,
		}
	}
	removeStrippedSubtrees(doc)
	return NewSanitizedHTMLDoc(doc), nil
}

// removeStrippedSubtrees walks the tree and detaches every node whose tag
// is in strippedTags, along with comment nodes. Children are collected
// before removal so the sibling chain stays valid during iteration.
func removeStrippedSubtrees(node *html.Node) {
	var doomed []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if shouldStrip(child) {
			doomed = append(doomed, child)
			continue
		}
		removeStrippedSubtrees(child)
	}
	for _, child := range doomed {
		node.RemoveChild(child)
	}
}

func shouldStrip(node *html.Node) bool {
	switch node.Type {
	case html.CommentNode:
		return true
	case html.ElementNode:
		_, stripped := strippedTags[node.Data]
		return stripped
	default:
		return false
	}
}
