package sitemap

// Candidate sitemap locations probed relative to a site root.
var candidatePaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap/sitemap.xml",
}

// maxRecursionDepth bounds sitemapindex recursion.
const maxRecursionDepth = 3

// urlSet mirrors a sitemaps.org <urlset> document: only <loc> is consumed.
type urlSet struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// sitemapIndex mirrors a <sitemapindex> document referencing child sitemaps.
type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}
