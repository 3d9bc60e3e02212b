package textutil

import "strings"

// NormalizeIdentifier produces the canonical form used for identifier
// comparison: trimmed, case-folded, inner whitespace collapsed.
func NormalizeIdentifier(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(value)), " "))
}

// SanitizeName collapses every run of non-alphanumeric characters into a
// single underscore so the result is safe for file names and CSV fields.
func SanitizeName(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	pendingUnderscore := false
	for _, r := range value {
		alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingUnderscore = b.Len() > 0
			continue
		}
		if pendingUnderscore {
			b.WriteByte('_')
			pendingUnderscore = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeVariableName mirrors the import format's variable key cleanup:
// spaces and dashes become underscores, parentheses are stripped.
func SanitizeVariableName(value string) string {
	replacer := strings.NewReplacer(" ", "_", "-", "_", "(", "", ")", "")
	return replacer.Replace(strings.TrimSpace(value))
}

// FoldKey lowercases and trims a lookup key for case-insensitive matching.
func FoldKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
