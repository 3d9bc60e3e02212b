package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"siteprov/site"
)

// Base import columns; the extended tail is appended only when a descriptor
// in the batch carries template IDs or geo fields.
var baseColumns = []string{"name", "address", "sitegroup_names", "vars"}

var extendedColumns = []string{
	"networktemplate_id", "gatewaytemplate_id", "rftemplate_id", "country_code", "timezone",
}

// CSVWriter renders descriptors into the platform's site import format:
// a '#'-prefixed header line followed by one fully quoted line per site.
//
// encoding/csv cannot produce this format: the import layer expects every
// field quoted (as the reference tooling emits) and a comment-style header,
// so quoting is done by hand with standard doubled-quote escaping.
type CSVWriter struct{}

func (w *CSVWriter) Write(path string, descriptors []site.Descriptor) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	extended := NeedsExtendedLayout(descriptors)
	if _, err := file.WriteString(ImportHeader(extended) + "\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, descriptor := range descriptors {
		if _, err := file.WriteString(ImportLine(descriptor, extended) + "\n"); err != nil {
			return fmt.Errorf("write csv row for %s: %w", descriptor.Name, err)
		}
	}

	return nil
}

// NeedsExtendedLayout reports whether any descriptor carries fields beyond
// the base import columns.
func NeedsExtendedLayout(descriptors []site.Descriptor) bool {
	for _, d := range descriptors {
		if d.NetworkTemplateID != "" || d.GatewayTemplateID != "" || d.RFTemplateID != "" ||
			d.CountryCode != "" || d.Timezone != "" {
			return true
		}
	}
	return false
}

// ImportHeader returns the '#'-prefixed column header line.
func ImportHeader(extended bool) string {
	columns := baseColumns
	if extended {
		columns = append(append([]string{}, baseColumns...), extendedColumns...)
	}
	return "#" + strings.Join(columns, ",")
}

// ImportLine renders one descriptor as a single import line. Output is
// deterministic: identical descriptors serialize byte-identically.
func ImportLine(d site.Descriptor, extended bool) string {
	fields := []string{
		d.Name,
		d.Address,
		strings.Join(d.SitegroupNames, ";"),
		SerializeVars(d.Vars),
	}
	if extended {
		fields = append(fields,
			d.NetworkTemplateID,
			d.GatewayTemplateID,
			d.RFTemplateID,
			d.CountryCode,
			d.Timezone,
		)
	}

	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = quote(field)
	}
	return strings.Join(quoted, ",")
}

// SerializeVars renders the variable mapping as key:value pairs joined by
// commas in sorted-key order, so output diffs cleanly across runs.
func SerializeVars(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, key := range keys {
		pairs[i] = key + ":" + vars[key]
	}
	return strings.Join(pairs, ",")
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
