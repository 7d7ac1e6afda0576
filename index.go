package insider

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// MalformedRowError reports an index-table row that does not expose the
// three columns the filing index is expected to have. The row exists but
// violates the assumed schema, which is different from a row simply not
// describing a Form 4.
type MalformedRowError struct {
	Row   int // 1-based row number, header excluded
	Cells int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("index row %d has %d cells, expected at least 3", e.Row, e.Cells)
}

// FindForm4XMLLink parses a filing's index page and returns the href of the
// Form 4 XML document, or "" if the filing contains none.
//
// A row qualifies when its type cell equals "FORM 4" or its document cell
// contains "form4", and the document cell's name ends in .xml. The two
// conditions deliberately read different columns: the archive labels some
// filings only in the type column and others only in the document name.
// Symmetrizing the check breaks matching against the live index layout.
func FindForm4XMLLink(page []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse index page: %w", err)
	}

	table := findFirstTable(doc)
	if table == nil {
		return "", nil
	}

	rows := findRows(table)
	if len(rows) <= 1 {
		return "", nil
	}

	// Skip the header row.
	for i, row := range rows[1:] {
		cells := findCells(row)
		if len(cells) < 3 {
			return "", &MalformedRowError{Row: i + 1, Cells: len(cells)}
		}

		typeText := extractText(cells[1])
		docText := extractText(cells[2])
		nameParts := strings.Split(docText, ".")

		if (typeText == "FORM 4" || strings.Contains(docText, "form4")) &&
			nameParts[len(nameParts)-1] == "xml" {
			anchor := firstAnchor(cells[2])
			if anchor == nil {
				return "", fmt.Errorf("form 4 row %d has no document link", i+1)
			}
			href, ok := anchorHref(anchor)
			if !ok {
				return "", fmt.Errorf("form 4 row %d document link has no href", i+1)
			}
			return href, nil
		}
	}

	return "", nil
}
