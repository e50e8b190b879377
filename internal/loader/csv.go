package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVConverter renders CSV rows as pipe tables, one slide per batch.
type CSVConverter struct{}

const csvBatchSize = 20

func (c *CSVConverter) Convert(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: baseTitle(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}
	headers := records[0]
	dataRows := records[1:]

	if len(dataRows) == 0 {
		doc.Text = pipeTable(headers, nil, width)
		return doc, nil
	}

	var blocks []string
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))
		// Row numbers are 1-indexed and count the header line.
		heading := fmt.Sprintf("## Rows %d-%d", i+2, end+1)
		blocks = append(blocks, heading, pipeTable(headers, dataRows[i:end], width))
	}
	doc.Text = joinBlocks(blocks)
	return doc, nil
}

func pipeTable(headers []string, rows [][]string, width int) string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(cells) {
				cell = tableCell(cells[i])
			}
			b.WriteString(" " + cell + " |")
		}
	}

	writeRow(headers)
	b.WriteString("\n|")
	for i := 0; i < width; i++ {
		b.WriteString(" --- |")
	}
	for _, row := range rows {
		b.WriteString("\n")
		writeRow(row)
	}
	return b.String()
}

func tableCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
