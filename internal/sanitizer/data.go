package sanitizer

import "golang.org/x/net/html"

// SanitizedHTMLDoc is the boilerplate-free view of one page's DOM: the
// parsed document with script, style, nav and footer subtrees removed.
type SanitizedHTMLDoc struct {
	contentNode *html.Node
}

func (s *SanitizedHTMLDoc) GetContentNode() *html.Node {
	return s.contentNode
}

func NewSanitizedHTMLDoc(contentNode *html.Node) SanitizedHTMLDoc {
	return SanitizedHTMLDoc{contentNode: contentNode}
}
