package retrieval

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Supported file types, expressed as MIME types to match upload metadata.
const (
	FileTypeText = "text/plain"
	FileTypeCSV  = "text/csv"
)

// LoadDocument reads a file and returns its textual sections. Plain text
// yields one section; CSV yields one section per row with "header: value"
// lines so each row stays retrievable on its own.
func LoadDocument(path, fileType string) ([]string, error) {
	switch fileType {
	case FileTypeCSV:
		return loadCSV(path)
	case FileTypeText, "":
		return loadText(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
}

func loadText(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}

func loadCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	sections := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var sb strings.Builder
		for i, field := range row {
			name := fmt.Sprintf("column_%d", i+1)
			if i < len(header) {
				name = header[i]
			}
			fmt.Fprintf(&sb, "%s: %s\n", name, field)
		}
		sections = append(sections, strings.TrimSpace(sb.String()))
	}
	return sections, nil
}
