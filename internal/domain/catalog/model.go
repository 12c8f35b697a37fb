package catalog

import (
	"fmt"
	"strings"
)

// Group is a top-level material classification. Each group maps to one
// workbook sheet on import and export.
type Group string

const (
	GroupElectrical Group = "ELECTRICAL" // 전기자재
	GroupAutomation Group = "AUTOMATION" // 자동화자재
)

// Uncategorized is the major category assigned to imported rows without one.
const Uncategorized = "미분류"

// DefaultIcon is used when a material is registered without an icon.
const DefaultIcon = "📦"

var groups = []struct {
	group Group
	label string
	word  string
}{
	{GroupElectrical, "전기자재", "electrical"},
	{GroupAutomation, "자동화자재", "automation"},
}

// Groups returns every recognized group in sheet order.
func Groups() []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.group)
	}
	return out
}

// Label is the human-readable name, also used as the export sheet name.
func (g Group) Label() string {
	for _, it := range groups {
		if it.group == g {
			return it.label
		}
	}
	return string(g)
}

func (g Group) Valid() bool {
	for _, it := range groups {
		if it.group == g {
			return true
		}
	}
	return false
}

// GroupFromSheet matches a sheet name against the known labels by substring.
// The English word is matched case-insensitively.
func GroupFromSheet(sheet string) (Group, bool) {
	lower := strings.ToLower(sheet)
	for _, it := range groups {
		if strings.Contains(sheet, it.label) || strings.Contains(lower, it.word) {
			return it.group, true
		}
	}
	return "", false
}

// ParseGroup accepts the enum value, the label or the English word.
func ParseGroup(s string) (Group, error) {
	s = strings.TrimSpace(s)
	for _, it := range groups {
		if strings.EqualFold(s, string(it.group)) || s == it.label || strings.EqualFold(s, it.word) {
			return it.group, nil
		}
	}
	return "", fmt.Errorf("unknown category group %q", s)
}
