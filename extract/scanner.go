package extract

import (
	"sort"
	"strings"

	"siteprov/internal/textutil"
	"siteprov/workbook"
)

// Match is a cell where the target identifier was found. The matched column
// becomes the anchor for field mapping.
type Match struct {
	Location
}

// ScanResult holds every match for the target identifier plus the distinct
// candidate identifiers seen along the way (used for not-found diagnostics).
type ScanResult struct {
	Matches    []Match
	Discovered []string
}

// Scan walks every data sheet looking for cells whose normalized value equals
// the normalized identifier. Sheets whose name contains a skip keyword are
// never scanned, so identifiers that coincidentally appear in template or
// config sheets cannot produce matches. Matching is exact equality after
// normalization; substring matches would confuse structured IDs such as
// SITE001 vs SITE0010.
func Scan(book *workbook.Workbook, identifier string, minLength int, skipKeywords []string) ScanResult {
	target := textutil.NormalizeIdentifier(identifier)
	targetMatchable := len(target) >= minLength

	result := ScanResult{}
	seen := make(map[string]struct{})

	for _, sheet := range book.Sheets {
		if skipSheet(sheet.Name, skipKeywords) {
			continue
		}
		for rowIdx, row := range sheet.Rows {
			for colIdx, cell := range row {
				normalized := cell.Normalize()
				if len(normalized) < minLength {
					continue
				}
				folded := textutil.NormalizeIdentifier(normalized)
				if _, dup := seen[normalized]; !dup {
					seen[normalized] = struct{}{}
					result.Discovered = append(result.Discovered, normalized)
				}
				if targetMatchable && folded == target {
					result.Matches = append(result.Matches, Match{Location{Sheet: sheet.Name, Row: rowIdx, Col: colIdx}})
				}
			}
		}
	}

	sort.Strings(result.Discovered)
	return result
}

func skipSheet(name string, keywords []string) bool {
	folded := textutil.FoldKey(name)
	for _, keyword := range keywords {
		keyword = textutil.FoldKey(keyword)
		if keyword != "" && strings.Contains(folded, keyword) {
			return true
		}
	}
	return false
}
