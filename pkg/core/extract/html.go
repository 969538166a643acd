// Package extract turns offering-memorandum text into a deal draft: HTML
// flattening, amount and percent parsing, and the LLM extraction call.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var spaces = regexp.MustCompile(`[\s\x{00A0}]+`)

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, tr, dt, dd, caption"

// FlattenHTML reduces an HTML document to one line per block element.
// Table rows become "cell | cell | cell"; scripts, styles and navigation
// are dropped.
func FlattenHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer, svg, img").Remove()

	var lines []string
	doc.Find(blockSelector).Each(func(i int, sel *goquery.Selection) {
		// Nested blocks are covered by their outermost block
		if sel.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}

		var line string
		if goquery.NodeName(sel) == "tr" {
			var cells []string
			sel.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				if t := normalizeSpace(cell.Text()); t != "" {
					cells = append(cells, t)
				}
			})
			line = strings.Join(cells, " | ")
		} else {
			line = normalizeSpace(sel.Text())
		}
		if line != "" {
			lines = append(lines, line)
		}
	})

	// Documents without block markup
	if len(lines) == 0 {
		if t := normalizeSpace(doc.Find("body").Text()); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
