package eett

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rePageTarget pulls the target page number out of a pager link's inline
// click handler, e.g. onclick="document.f.startPage.value='3';submit();".
var rePageTarget = regexp.MustCompile(`startPage\.value='?(\d+)'?`)

// hasNextPage inspects the pagination control for any signal that a page
// beyond current exists.
//
// Signals, checked per item:
//   - an item titled as the "next page" control ("Επόμενη" or "Next") that is
//     not disabled
//   - a link whose visible text is a page number greater than current
//   - a link whose click handler assigns startPage to a number greater than
//     current
//
// A missing control means the whole result set fits on one page.
func hasNextPage(doc *goquery.Document, current int) bool {
	pager := doc.Find("ul.pagination").First()
	if pager.Length() == 0 {
		return false
	}

	next := false
	pager.Find("li").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := item.AttrOr("title", "")
		if (strings.Contains(title, "Επόμενη") || strings.Contains(title, "Next")) &&
			!item.HasClass("disabled") {
			next = true
			return false
		}

		link := item.Find("a").First()
		if link.Length() == 0 {
			return true
		}

		if n, ok := pageNumber(strings.TrimSpace(link.Text())); ok && n > current {
			next = true
			return false
		}
		if m := rePageTarget.FindStringSubmatch(link.AttrOr("onclick", "")); m != nil {
			if n, ok := pageNumber(m[1]); ok && n > current {
				next = true
				return false
			}
		}
		return true
	})
	return next
}

// pageNumber parses s as an unsigned decimal page number.
// Signed or non-numeric link text ("«", "...") is not a page number.
func pageNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
