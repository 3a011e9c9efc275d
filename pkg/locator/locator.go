// Package locator discovers the embedded data tables of a fetched
// article page. PMC wraps every table in an element carrying the
// "table-wrap" class whose id attribute names the table.
package locator

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// ParseError reports article markup the HTML tokenizer could not get
// through at all. Sloppy or XHTML-flavored markup does not trigger it.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing article markup: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TableIDs returns the id of every table-wrap container in document
// order. Wraps without an id are skipped. An article without tables
// yields an empty slice, not an error.
func TableIDs(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	ids := []string{}
	doc.Find(".table-wrap").Each(func(_ int, wrap *goquery.Selection) {
		if id, ok := wrap.Attr("id"); ok && id != "" {
			ids = append(ids, id)
		}
	})
	return ids, nil
}
