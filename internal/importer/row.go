package importer

import (
	"fmt"
	"strings"

	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/numeric"
	"github.com/Spok95/material-kiosk/internal/xlsx"
)

// Canonical import labels.
const (
	ColName     = "name"
	ColMajor    = "major_category"
	ColMinor    = "minor_category"
	ColCode     = "code"
	ColPrice    = "unit_price"
	ColQuantity = "quantity_on_hand"
	ColIcon     = "icon"
)

var aliases = map[string]string{
	xlsx.LabelName:     ColName,
	xlsx.LabelMajor:    ColMajor,
	xlsx.LabelMinor:    ColMinor,
	xlsx.LabelCode:     ColCode,
	xlsx.LabelPrice:    ColPrice,
	xlsx.LabelQuantity: ColQuantity,
	xlsx.LabelIcon:     ColIcon,
}

func canonical(label string) string {
	label = strings.TrimSpace(label)
	if c, ok := aliases[label]; ok {
		return c
	}
	return strings.ToLower(label)
}

// Row is one decoded spreadsheet record. Absent text columns are nil.
type Row struct {
	Name      string
	Major     *string
	Minor     *string
	Code      *string
	Icon      *string
	UnitPrice any
	Quantity  any
}

func decodeRow(raw xlsx.Row) Row {
	var r Row
	for label, v := range raw {
		switch canonical(label) {
		case ColName:
			r.Name = strings.TrimSpace(text(v))
		case ColMajor:
			r.Major = textPtr(v)
		case ColMinor:
			r.Minor = textPtr(v)
		case ColCode:
			r.Code = textPtr(v)
		case ColIcon:
			r.Icon = textPtr(v)
		case ColPrice:
			r.UnitPrice = v
		case ColQuantity:
			r.Quantity = v
		}
	}
	return r
}

// candidate builds the material a row describes within group.
func (r Row) candidate(group catalog.Group) materials.Material {
	major := deref(r.Major)
	if major == "" {
		major = catalog.Uncategorized
	}
	return materials.Material{
		Group:     group,
		Major:     major,
		Minor:     deref(r.Minor),
		Code:      deref(r.Code),
		Name:      r.Name,
		UnitPrice: numeric.ParseQuantityOrPrice(r.UnitPrice),
		Quantity:  numeric.ParseQuantityOrPrice(r.Quantity),
		Icon:      deref(r.Icon),
	}
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func textPtr(v any) *string {
	s := strings.TrimSpace(text(v))
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
