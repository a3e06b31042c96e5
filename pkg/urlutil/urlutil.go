package urlutil

import (
	"errors"
	"net/url"
	"strings"

	"github.com/Pavankona715/seo-audit-platform/pkg/hashutil"
)

// ErrRejectedScheme is returned by Normalize when the resolved URL's scheme
// is neither http nor https.
var ErrRejectedScheme = errors.New("urlutil: scheme not http(s)")

// ErrRejectedExtension is returned by Normalize when the resolved URL's path
// ends in a binary/asset extension that is never worth crawling.
var ErrRejectedExtension = errors.New("urlutil: path matches asset deny-list")

// deniedExtensions lists path suffixes that identify binary or asset
// payloads rather than crawlable documents.
var deniedExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico",
	".css", ".js", ".woff", ".woff2", ".ttf",
	".zip", ".tar", ".gz", ".mp4", ".mp3", ".wav",
}

// ignoredQueryParams lists tracking/session parameters dropped during
// normalization; everything else survives in stable input order.
var ignoredQueryParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_content":  {},
	"utm_term":     {},
	"ref":          {},
	"fbclid":       {},
	"gclid":        {},
}

// Normalize resolves rawURL against base, then applies the canonicalization
// steps: scheme check, asset deny-list, lowercase scheme/host, fragment
// drop, tracking-parameter filter, and trailing-slash trim.
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Normalize(Normalize(u, b), b) == Normalize(u, b)
//   - Context-free: does not depend on crawl history
func Normalize(rawURL string, base url.URL) (url.URL, error) {
	resolved, err := base.Parse(rawURL)
	if err != nil {
		return url.URL{}, err
	}

	canonical := *resolved

	canonical.Scheme = lowerASCII(canonical.Scheme)
	if canonical.Scheme != "http" && canonical.Scheme != "https" {
		return url.URL{}, ErrRejectedScheme
	}

	lowerPath := lowerASCII(canonical.Path)
	for _, ext := range deniedExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return url.URL{}, ErrRejectedExtension
		}
	}

	canonical.Host = lowerASCII(canonical.Host)
	canonical.Fragment = ""
	canonical.RawFragment = ""

	canonical.RawQuery = filterQuery(canonical.RawQuery)

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
	}

	return canonical, nil
}

// filterQuery drops ignoredQueryParams and re-encodes the surviving keys
// in their first-seen input order, with a key's repeated values kept in
// occurrence order. The raw query is parsed by hand: url.Values is a map
// and would lose the input order.
func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	var keys []string
	values := make(map[string][]string)
	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(segment, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			key = rawKey
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			value = rawValue
		}
		if _, denied := ignoredQueryParams[key]; denied {
			continue
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = append(values[key], value)
	}

	var encoded strings.Builder
	for _, key := range keys {
		for _, value := range values[key] {
			if encoded.Len() > 0 {
				encoded.WriteByte('&')
			}
			encoded.WriteString(url.QueryEscape(key))
			encoded.WriteByte('=')
			encoded.WriteString(url.QueryEscape(value))
		}
	}
	return encoded.String()
}

// Fingerprint returns a stable 128-bit hex fingerprint of a normalized URL
// string, suitable for visited-set membership and cross-crawl identity.
func Fingerprint(normalizedURL string) string {
	return hashutil.Fingerprint128([]byte(normalizedURL))
}

// SameDomain reports whether host equals root or is a subdomain of root.
func SameDomain(host, root string) bool {
	host = lowerASCII(host)
	root = lowerASCII(root)
	return host == root || strings.HasSuffix(host, "."+root)
}

// lowerASCII converts ASCII characters to lowercase without allocating
// unless the input actually contains uppercase letters.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path, leaving a single
// "/" untouched.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
