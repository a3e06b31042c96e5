package textify

import (
	"errors"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/net/html"

	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

/*
Design Principles
- Semantic fidelity over visual fidelity
- No inferred structure
- DOM order preserved

Pipeline: sanitized DOM -> Markdown (html-to-markdown) -> AST walk
(gomarkdown) -> plain text, word count, heading counts.

The Markdown hop keeps the projection deterministic: block boundaries
become explicit, so the plain text never glues two paragraphs into one
word, and heading levels survive as structure instead of styling.
*/

// Textifier converts a sanitized DOM to the plain-text signals the page
// model carries. Implementations must be deterministic.
type Textifier interface {
	Textify(contentNode *html.Node) (TextifyResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ Textifier = (*MarkdownTextifier)(nil)

type MarkdownTextifier struct {
	metadataSink metadata.MetadataSink
}

func NewMarkdownTextifier(metadataSink metadata.MetadataSink) *MarkdownTextifier {
	return &MarkdownTextifier{
		metadataSink: metadataSink,
	}
}

func (m *MarkdownTextifier) Textify(contentNode *html.Node) (TextifyResult, failure.ClassifiedError) {
	result, err := textify(contentNode)
	if err != nil {
		var textifyError *TextifyError
		errors.As(err, &textifyError)
		if m.metadataSink != nil {
			m.metadataSink.RecordError(metadata.NewErrorRecord(
				"textify",
				"MarkdownTextifier.Textify",
				mapTextifyErrorToMetadataCause(textifyError),
				err,
			))
		}
		return TextifyResult{}, textifyError
	}
	return result, nil
}

// textify is a stateless pure function over one DOM node.
func textify(contentNode *html.Node) (TextifyResult, *TextifyError) {
	if contentNode == nil {
		return TextifyResult{}, &TextifyError{
			Message:   "cannot textify nil HTML node",
			Retryable: false,
			Cause:     ErrCauseNilNode,
		}
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	md, err := conv.ConvertNode(contentNode)
	if err != nil {
		return TextifyResult{}, &TextifyError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}

	plain, headings := renderPlain(md)
	words := len(strings.Fields(plain))

	return NewTextifyResult(string(md), plain, words, headings), nil
}

// renderPlain parses the markdown and walks its AST, collecting text
// leaves in document order and counting headings per level.
func renderPlain(md []byte) (string, [6]int) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(md)

	var fragments []string
	var headings [6]int

	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level >= 1 && n.Level <= 6 {
				headings[n.Level-1]++
			}
		case *ast.Text:
			if t := strings.TrimSpace(string(n.Literal)); t != "" {
				fragments = append(fragments, t)
			}
		case *ast.Code:
			if t := strings.TrimSpace(string(n.Literal)); t != "" {
				fragments = append(fragments, t)
			}
		case *ast.CodeBlock:
			if t := strings.TrimSpace(string(n.Literal)); t != "" {
				fragments = append(fragments, t)
			}
		}
		return ast.GoToNext
	})

	return collapseWhitespace(strings.Join(fragments, " ")), headings
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
