package output

import (
	"fmt"
	"strings"

	"siteprov/site"
)

// Writer renders a batch of descriptors to a file: CSV in the platform's
// site import format, Excel as a review workbook with provenance columns.
type Writer interface {
	Write(path string, descriptors []site.Descriptor) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
