package listingshttp

const (
	// pages always shown at either end
	paginationEndSize = 1
	// pages shown either side of the current one
	paginationMidSize = 2
)

type pageLink struct {
	Number  int
	URL     string
	Current bool
	Gap     bool
}

// paginateLinks lays out numbered page links, collapsing runs of hidden pages
// into a single gap marker.
func paginateLinks(path, filter string, current, total int) []pageLink {
	var links []pageLink
	gapAllowed := false
	for n := 1; n <= total; n++ {
		switch {
		case n == current:
			links = append(links, pageLink{Number: n, Current: true})
			gapAllowed = true
		case n <= paginationEndSize ||
			(n >= current-paginationMidSize && n <= current+paginationMidSize) ||
			n > total-paginationEndSize:
			links = append(links, pageLink{Number: n, URL: pageURL(path, filter, n)})
			gapAllowed = true
		case gapAllowed:
			links = append(links, pageLink{Gap: true})
			gapAllowed = false
		}
	}
	return links
}
