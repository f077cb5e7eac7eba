// Package formatter tidies saved clip documents, fixing markdown table
// alignment using display widths.
package formatter

import (
	"strings"

	"clipper/pkg/metadata"

	"github.com/mattn/go-runewidth"
)

// Tidy reflows every markdown table in the document so columns align on
// display width. A clip that carried an integrity trailer is re-signed
// after reflowing; unsigned clips stay unsigned.
func Tidy(content, generator string) string {
	trailer, clean := metadata.Extract(content)
	if trailer == nil {
		// Extract trims trailing newlines for hashing; without a
		// trailer the document must pass through byte-identical.
		clean = content
	}

	lines := strings.Split(clean, "\n")

	var formattedLines []string

	var tableBuffer []string

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		// Table rows start and end with a pipe.
		if strings.HasPrefix(trimmedLine, "|") && strings.HasSuffix(trimmedLine, "|") {
			tableBuffer = append(tableBuffer, line)

			continue
		}

		if len(tableBuffer) > 0 {
			formattedLines = append(formattedLines, reflowTable(tableBuffer)...)
			tableBuffer = nil
		}

		formattedLines = append(formattedLines, line)
	}

	if len(tableBuffer) > 0 {
		formattedLines = append(formattedLines, reflowTable(tableBuffer)...)
	}

	formatted := strings.Join(formattedLines, "\n")

	if trailer != nil {
		return metadata.Sign(formatted, generator, trailer.Validated)
	}

	return formatted
}

func reflowTable(rows []string) []string {
	// A single pipe-line is not a table; it needs at least header and
	// separator to be worth reflowing.
	if len(rows) < 2 {
		return rows
	}

	var table [][]string

	for _, row := range rows {
		parts := strings.Split(row, "|")

		if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
			parts = parts[1:]
		}

		if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}

		var cells []string
		for _, p := range parts {
			cells = append(cells, strings.TrimSpace(p))
		}

		table = append(table, cells)
	}

	if len(table) == 0 {
		return rows
	}

	colCount := len(table[0])
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	separatorRowIdx := findSeparatorRow(table)

	// Column widths use display width so CJK content lines up too.
	colWidths := make([]int, colCount)

	for rIdx, row := range table {
		if rIdx == separatorRowIdx {
			continue
		}

		for i := 0; i < len(row) && i < colCount; i++ {
			if width := runewidth.StringWidth(row[i]); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	var result []string

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		isSeparator := i == separatorRowIdx

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			content := ""
			if j < len(row) {
				content = row[j]
			}

			if isSeparator {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
			} else {
				sb.WriteString(content)

				if padding := colWidths[j] - runewidth.StringWidth(content); padding > 0 {
					sb.WriteString(strings.Repeat(" ", padding))
				}
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}

// findSeparatorRow returns the index of the header separator row, or -1.
// The separator is conventionally the second row and contains only
// dashes, colons and spaces.
func findSeparatorRow(table [][]string) int {
	if len(table) < 2 {
		return -1
	}

	for _, cell := range table[1] {
		trim := strings.TrimSpace(cell)
		trim = strings.ReplaceAll(trim, "-", "")
		trim = strings.ReplaceAll(trim, ":", "")
		trim = strings.ReplaceAll(trim, " ", "")

		if trim != "" {
			return -1
		}
	}

	return 1
}
