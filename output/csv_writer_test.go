package output

import (
	"os"
	"path/filepath"
	"testing"

	"siteprov/site"
)

func springfieldDescriptor() site.Descriptor {
	return site.Descriptor{
		Name:           "Springfield_SITE001",
		Address:        "123 Main St",
		SitegroupNames: []string{"Default_Group"},
		Vars:           map[string]string{"vlan10": "10.0.1.0/24"},
	}
}

func TestImportLineBaseLayout(t *testing.T) {
	t.Parallel()

	got := ImportLine(springfieldDescriptor(), false)
	want := `"Springfield_SITE001","123 Main St","Default_Group","vlan10:10.0.1.0/24"`
	if got != want {
		t.Fatalf("line = %s, want %s", got, want)
	}
}

func TestImportLineQuotesEscaped(t *testing.T) {
	t.Parallel()

	descriptor := springfieldDescriptor()
	descriptor.Address = `123 "Main" St, Suite 4`

	got := ImportLine(descriptor, false)
	want := `"Springfield_SITE001","123 ""Main"" St, Suite 4","Default_Group","vlan10:10.0.1.0/24"`
	if got != want {
		t.Fatalf("line = %s, want %s", got, want)
	}
}

func TestImportLineExtendedLayout(t *testing.T) {
	t.Parallel()

	descriptor := springfieldDescriptor()
	descriptor.NetworkTemplateID = "net-1"
	descriptor.CountryCode = "US"
	descriptor.Timezone = "America/Chicago"

	got := ImportLine(descriptor, true)
	want := `"Springfield_SITE001","123 Main St","Default_Group","vlan10:10.0.1.0/24","net-1","","","US","America/Chicago"`
	if got != want {
		t.Fatalf("line = %s, want %s", got, want)
	}
}

func TestImportHeader(t *testing.T) {
	t.Parallel()

	if got := ImportHeader(false); got != "#name,address,sitegroup_names,vars" {
		t.Errorf("base header = %s", got)
	}
	want := "#name,address,sitegroup_names,vars,networktemplate_id,gatewaytemplate_id,rftemplate_id,country_code,timezone"
	if got := ImportHeader(true); got != want {
		t.Errorf("extended header = %s", got)
	}
}

func TestSerializeVarsSortedAndDeterministic(t *testing.T) {
	t.Parallel()

	vars := map[string]string{"zeta": "1", "alpha": "2", "mid": "3"}
	want := "alpha:2,mid:3,zeta:1"
	for i := 0; i < 10; i++ {
		if got := SerializeVars(vars); got != want {
			t.Fatalf("serialization not deterministic: %s vs %s", got, want)
		}
	}
	if got := SerializeVars(nil); got != "" {
		t.Errorf("empty vars = %q, want empty string", got)
	}
}

func TestNeedsExtendedLayout(t *testing.T) {
	t.Parallel()

	if NeedsExtendedLayout([]site.Descriptor{springfieldDescriptor()}) {
		t.Error("base descriptor must not require extended layout")
	}
	withGeo := springfieldDescriptor()
	withGeo.CountryCode = "US"
	if !NeedsExtendedLayout([]site.Descriptor{springfieldDescriptor(), withGeo}) {
		t.Error("descriptor with country_code requires extended layout")
	}
}

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "site.csv")

	writer := &CSVWriter{}
	if err := writer.Write(path, []site.Descriptor{springfieldDescriptor()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "#name,address,sitegroup_names,vars\n" +
		`"Springfield_SITE001","123 Main St","Default_Group","vlan10:10.0.1.0/24"` + "\n"
	if string(content) != want {
		t.Fatalf("file content = %q, want %q", content, want)
	}
}

func TestWriterForFormat(t *testing.T) {
	t.Parallel()

	if _, err := WriterForFormat("csv"); err != nil {
		t.Errorf("csv: %v", err)
	}
	if _, err := WriterForFormat("XLSX"); err != nil {
		t.Errorf("xlsx: %v", err)
	}
	if _, err := WriterForFormat("pdf"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
