package extract

import "testing"

func TestResolveTemplateHappyPath(t *testing.T) {
	t.Parallel()

	book := buildWorkbook(
		buildSheet("Sites", [][]string{{"SITE001", "123 Main St"}}),
		buildSheet("Site Variables", [][]string{
			{"vlan10", "10.0.1.0/24"},
			{"dns_primary", "10.0.0.53"},
		}),
	)

	vars, warnings := ResolveTemplate(book, "variables")
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if vars["vlan10"] != "10.0.1.0/24" {
		t.Errorf("vlan10 = %q", vars["vlan10"])
	}
	if vars["dns_primary"] != "10.0.0.53" {
		t.Errorf("dns_primary = %q", vars["dns_primary"])
	}
}

func TestResolveTemplateMissingSheetIsEmptyNotError(t *testing.T) {
	t.Parallel()

	book := buildWorkbook(buildSheet("Sites", [][]string{{"SITE001"}}))

	vars, warnings := ResolveTemplate(book, "variables")
	if len(vars) != 0 || len(warnings) != 0 {
		t.Fatalf("vars = %v warnings = %v, want empty", vars, warnings)
	}
}

func TestResolveTemplateSheetMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	book := buildWorkbook(buildSheet("SITE VARIABLES", [][]string{{"a", "1"}}))

	vars, _ := ResolveTemplate(book, "variables")
	if vars["a"] != "1" {
		t.Fatalf("vars = %v, want a=1", vars)
	}
}

func TestResolveTemplateSkipsHeadersAndEmptyNames(t *testing.T) {
	t.Parallel()

	book := buildWorkbook(buildSheet("Site Variables", [][]string{
		{"Branch Type: Small", ""},
		{"Template v2", ""},
		{"", "orphan value"},
		{"vlan10", "10.0.1.0/24"},
	}))

	vars, warnings := ResolveTemplate(book, "variables")
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if len(vars) != 1 || vars["vlan10"] != "10.0.1.0/24" {
		t.Fatalf("vars = %v, want only vlan10", vars)
	}
}

func TestResolveTemplateEmptyValueDefaultsToZero(t *testing.T) {
	t.Parallel()

	book := buildWorkbook(buildSheet("Site Variables", [][]string{{"guest_vlan"}}))

	vars, _ := ResolveTemplate(book, "variables")
	if vars["guest_vlan"] != "0" {
		t.Fatalf("guest_vlan = %q, want %q", vars["guest_vlan"], "0")
	}
}

func TestResolveTemplateUndefinedValueSkipped(t *testing.T) {
	t.Parallel()

	book := buildWorkbook(buildSheet("Site Variables", [][]string{{"later_var", "undefined"}}))

	vars, warnings := ResolveTemplate(book, "variables")
	if _, ok := vars["later_var"]; ok {
		t.Fatalf("undefined value must be skipped, got %v", vars)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none for undefined values", warnings)
	}
}

func TestResolveTemplateFormulaErrorWarns(t *testing.T) {
	t.Parallel()

	book := buildWorkbook(buildSheet("Site Variables", [][]string{
		{"broken", "#REF!"},
		{"vlan10", "10.0.1.0/24"},
	}))

	vars, warnings := ResolveTemplate(book, "variables")
	if _, ok := vars["broken"]; ok {
		t.Fatalf("formula error row must be skipped, got %v", vars)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
	if warnings[0].Name != "broken" || warnings[0].Value != "#REF!" {
		t.Errorf("warning = %+v", warnings[0])
	}
	if vars["vlan10"] != "10.0.1.0/24" {
		t.Errorf("run must continue past malformed rows, vars = %v", vars)
	}
}

func TestResolveTemplateLastDefinitionWins(t *testing.T) {
	t.Parallel()

	book := buildWorkbook(buildSheet("Site Variables", [][]string{
		{"vlan10", "10.0.1.0/24"},
		{"vlan10", "10.0.2.0/24"},
	}))

	vars, _ := ResolveTemplate(book, "variables")
	if vars["vlan10"] != "10.0.2.0/24" {
		t.Fatalf("vlan10 = %q, want last definition", vars["vlan10"])
	}
}
