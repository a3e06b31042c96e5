package urlutil

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBase(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestNormalize_StripsTrackingParamsAndFragment(t *testing.T) {
	base := mustBase(t, "https://EX.com/")

	got, err := Normalize("/x?utm_source=g&id=1#frag", base)
	require.NoError(t, err)

	assert.Equal(t, "https://ex.com/x?id=1", got.String())
}

func TestNormalize_RejectsNonHTTPScheme(t *testing.T) {
	base := mustBase(t, "https://example.com/")

	_, err := Normalize("ftp://example.com/file", base)
	assert.ErrorIs(t, err, ErrRejectedScheme)
}

func TestNormalize_RejectsAssetExtensions(t *testing.T) {
	base := mustBase(t, "https://example.com/")

	for _, path := range []string{"/banner.jpg", "/sheet.CSS", "/doc.PDF"} {
		_, err := Normalize(path, base)
		assert.ErrorIsf(t, err, ErrRejectedExtension, "path %q should be rejected", path)
	}
}

func TestNormalize_TrimsTrailingSlashExceptRoot(t *testing.T) {
	base := mustBase(t, "https://example.com/")

	got, err := Normalize("/a/b/", base)
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got.Path)

	root, err := Normalize("/", base)
	require.NoError(t, err)
	assert.Equal(t, "/", root.Path)
}

func TestNormalize_PreservesQueryInputOrder(t *testing.T) {
	base := mustBase(t, "https://example.com/")

	got, err := Normalize("/x?zone=asia&id=5", base)
	require.NoError(t, err)
	assert.Equal(t, "zone=asia&id=5", got.RawQuery)

	repeated, err := Normalize("/x?tag=b&ref=abc&tag=a", base)
	require.NoError(t, err)
	assert.Equal(t, "tag=b&tag=a", repeated.RawQuery, "repeated keys keep occurrence order, tracking keys drop")
}

func TestNormalize_Idempotent(t *testing.T) {
	base := mustBase(t, "https://example.com/")

	first, err := Normalize("/A/B?z=1&utm_campaign=x&a=2", base)
	require.NoError(t, err)

	second, err := Normalize(first.String(), base)
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
}

func TestSameDomain(t *testing.T) {
	assert.True(t, SameDomain("example.com", "example.com"))
	assert.True(t, SameDomain("blog.example.com", "example.com"))
	assert.False(t, SameDomain("notexample.com", "example.com"))
	assert.False(t, SameDomain("example.com.evil.com", "example.com"))
}

func TestFingerprint_StableAndSizedAs128Bits(t *testing.T) {
	a := Fingerprint("https://example.com/a")
	b := Fingerprint("https://example.com/a")
	c := Fingerprint("https://example.com/b")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32) // 128 bits = 32 hex chars
}
