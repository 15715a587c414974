package eett

import (
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// Form action values understood by the results endpoint.
const (
	actionSearch = "search" // first page of a fresh search
	actionPage   = "page"   // subsequent pages of the same search
)

// searchForm is the mutable form-field set carried across one scrape: the
// fixed search fields plus whatever hidden inputs the live form carried
// (server-defined names, copied verbatim). It is built once per search and
// rendered into an independent payload per page request.
type searchForm struct {
	fields map[string]string
}

// newSearchForm merges the fixed search fields with the form's hidden inputs.
// On a name collision the hidden input wins: the server knows its own form
// better than we do.
func newSearchForm(municipalityValue string, hidden map[string]string) *searchForm {
	fields := make(map[string]string, len(hidden)+3)
	fields["address"] = ""
	fields["municipality"] = municipalityValue
	fields["siteId"] = ""
	for k, v := range hidden {
		fields[k] = v
	}
	return &searchForm{fields: fields}
}

// pagePayload renders the form for a single page request. Page numbers are
// 1-based; page 1 issues a fresh search, later pages advance it.
func (f *searchForm) pagePayload(page int) url.Values {
	payload := url.Values{}
	for k, v := range f.fields {
		payload.Set(k, v)
	}
	payload.Set("startPage", strconv.Itoa(page))
	if page == 1 {
		payload.Set("myAction", actionSearch)
	} else {
		payload.Set("myAction", actionPage)
	}
	return payload
}

// parseHiddenFields collects all hidden inputs of the document as name→value.
// The set is server-defined and treated as opaque (session tokens and the
// like); values default to empty when the attribute is absent.
func parseHiddenFields(doc *goquery.Document) map[string]string {
	hidden := map[string]string{}
	doc.Find(`input[type="hidden"]`).Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		hidden[name] = input.AttrOr("value", "")
	})
	return hidden
}
