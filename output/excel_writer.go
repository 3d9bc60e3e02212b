package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"siteprov/site"
)

// ExcelWriter renders descriptors into a review workbook: same fields as the
// import CSV plus provenance columns, for diff-based checks before import.
type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, descriptors []site.Descriptor) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	headers := []string{
		"Name", "Address", "Location", "SitegroupNames", "Vars",
		"NetworkTemplateID", "GatewayTemplateID", "RFTemplateID",
		"CountryCode", "Timezone", "Latitude", "Longitude",
		"Identifier", "SourceSheet", "SourceRow", "SourceCol",
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, descriptor := range descriptors {
		row := i + 2
		values := []string{
			descriptor.Name,
			descriptor.Address,
			descriptor.Location,
			strings.Join(descriptor.SitegroupNames, ";"),
			SerializeVars(descriptor.Vars),
			descriptor.NetworkTemplateID,
			descriptor.GatewayTemplateID,
			descriptor.RFTemplateID,
			descriptor.CountryCode,
			descriptor.Timezone,
			formatCoord(descriptor.Latitude),
			formatCoord(descriptor.Longitude),
			descriptor.Identifier,
			descriptor.SourceSheet,
			strconv.Itoa(descriptor.SourceRow + 1),
			strconv.Itoa(descriptor.SourceCol + 1),
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}

func formatCoord(value float64) string {
	if value == 0 {
		return ""
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
