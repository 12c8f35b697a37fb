package http

import (
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/importer"
	"github.com/Spok95/material-kiosk/internal/stock"
)

type registerRequest struct {
	Group     string `json:"group" validate:"required"`
	Major     string `json:"major_category" validate:"required"`
	Minor     string `json:"minor_category"`
	Code      string `json:"code"`
	Name      string `json:"name" validate:"required"`
	UnitPrice any    `json:"unit_price"`
	Icon      string `json:"icon"`
}

type movementRequest struct {
	Type     string `json:"type" validate:"required,oneof=IN OUT"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Actor    string `json:"actor" validate:"required_if=Type OUT"`
	Note     string `json:"note"`
}

// entryPatchRequest carries either a new quantity or a single field edit.
type entryPatchRequest struct {
	Quantity *int64  `json:"quantity" validate:"omitempty,gt=0"`
	Field    string  `json:"field" validate:"omitempty,oneof=date actor note"`
	Value    *string `json:"value"`
}

type materialResponse struct {
	ID        string `json:"id"`
	Group     string `json:"group"`
	GroupName string `json:"group_label"`
	Major     string `json:"major_category"`
	Minor     string `json:"minor_category"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity_on_hand"`
	Value     int64  `json:"value"`
	Icon      string `json:"icon"`
}

func toMaterial(m materials.Material) materialResponse {
	return materialResponse{
		ID:        m.ID.String(),
		Group:     string(m.Group),
		GroupName: m.Group.Label(),
		Major:     m.Major,
		Minor:     m.Minor,
		Code:      m.Code,
		Name:      m.Name,
		UnitPrice: m.UnitPrice,
		Quantity:  m.Quantity,
		Value:     m.Value(),
		Icon:      m.Icon,
	}
}

func toMaterials(ms []materials.Material) []materialResponse {
	out := make([]materialResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMaterial(m))
	}
	return out
}

type entryResponse struct {
	ID           string `json:"id"`
	MaterialID   string `json:"material_id"`
	MaterialName string `json:"material_name"`
	MaterialCode string `json:"material_code"`
	Group        string `json:"group"`
	Type         string `json:"type"`
	Date         string `json:"date"`
	Quantity     int64  `json:"quantity"`
	Actor        string `json:"actor,omitempty"`
	Note         string `json:"note,omitempty"`
}

func toEntry(e ledger.Entry) entryResponse {
	return entryResponse{
		ID:           e.ID.String(),
		MaterialID:   e.MaterialID.String(),
		MaterialName: e.MaterialName,
		MaterialCode: e.MaterialCode,
		Group:        string(e.Group),
		Type:         string(e.Type),
		Date:         e.Date.Format(ledger.DateLayout),
		Quantity:     e.Quantity,
		Actor:        e.Actor,
		Note:         e.Note,
	}
}

func toEntries(es []ledger.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(es))
	for _, e := range es {
		out = append(out, toEntry(e))
	}
	return out
}

type importResponse struct {
	Inserted      int      `json:"inserted"`
	Updated       int      `json:"updated"`
	Skipped       int      `json:"skipped"`
	IgnoredSheets []string `json:"ignored_sheets,omitempty"`
}

func toImport(s importer.Summary) importResponse {
	return importResponse{Inserted: s.Inserted, Updated: s.Updated, Skipped: s.Skipped, IgnoredSheets: s.IgnoredSheets}
}

type auditLineResponse struct {
	Material  materialResponse `json:"material"`
	LedgerNet int64            `json:"ledger_net"`
	Entries   int              `json:"entries"`
	Opening   int64            `json:"opening"`
}

type auditResponse struct {
	Lines       []auditLineResponse `json:"lines"`
	Unexplained int                 `json:"unexplained"`
	Orphans     []entryResponse     `json:"orphans"`
}

func toAudit(r stock.AuditReport) auditResponse {
	out := auditResponse{
		Lines:       make([]auditLineResponse, 0, len(r.Lines)),
		Unexplained: len(r.Unexplained()),
		Orphans:     toEntries(r.Orphans),
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, auditLineResponse{
			Material:  toMaterial(l.Material),
			LedgerNet: l.LedgerNet,
			Entries:   l.Entries,
			Opening:   l.Opening,
		})
	}
	return out
}
