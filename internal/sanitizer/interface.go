package sanitizer

import (
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
	"golang.org/x/net/html"
)

// Sanitizer strips non-content subtrees from a parsed page so that the
// text extraction downstream sees only reader-visible content.
// Implementations must be deterministic.
type Sanitizer interface {
	Sanitize(inputContentNode *html.Node) (SanitizedHTMLDoc, failure.ClassifiedError)
}

// Compile-time interface check
var _ Sanitizer = (*HtmlSanitizer)(nil)
