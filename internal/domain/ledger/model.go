package ledger

import (
	"time"

	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/id"
)

type MoveType string

const (
	MoveIn  MoveType = "IN"
	MoveOut MoveType = "OUT"
)

func (t MoveType) Valid() bool {
	return t == MoveIn || t == MoveOut
}

// DateLayout is the calendar date format used on every transport.
const DateLayout = "2006-01-02"

// Entry is one recorded movement. MaterialID may point at a deleted material.
type Entry struct {
	ID           id.ID         `db:"id"`
	MaterialID   id.ID         `db:"material_id"`
	MaterialName string        `db:"material_name"`
	MaterialCode string        `db:"material_code"`
	Group        catalog.Group `db:"category_group"`
	Type         MoveType      `db:"movement_type"`
	Date         time.Time     `db:"entry_date"`
	Quantity     int64         `db:"quantity"`
	Actor        string        `db:"actor"`
	Note         string        `db:"note"`
	RecordedAt   time.Time     `db:"recorded_at"`
}

// Effect is the signed change this entry applies to the quantity on hand.
func (e Entry) Effect() int64 {
	return Effect(e.Type, e.Quantity)
}

func Effect(t MoveType, qty int64) int64 {
	if t == MoveOut {
		return -qty
	}
	return qty
}

// Patch holds the mutable fields of an entry.
type Patch struct {
	Date     *time.Time
	Quantity *int64
	Actor    *string
	Note     *string
}

func (p Patch) Apply(e *Entry) {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Quantity != nil {
		e.Quantity = *p.Quantity
	}
	if p.Actor != nil {
		e.Actor = *p.Actor
	}
	if p.Note != nil {
		e.Note = *p.Note
	}
}

// Filter narrows List results. Month is honoured only together with Year.
type Filter struct {
	Year       int
	Month      int
	Group      catalog.Group
	MaterialID *id.ID
}

// Range returns the half-open date interval selected by Year/Month.
func (f Filter) Range() (from, to time.Time, ok bool) {
	if f.Year == 0 {
		return time.Time{}, time.Time{}, false
	}
	if f.Month == 0 {
		from = time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0), true
	}
	from = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), true
}

// Match applies the filter to an in-memory entry.
func (f Filter) Match(e Entry) bool {
	if from, to, ok := f.Range(); ok {
		if e.Date.Before(from) || !e.Date.Before(to) {
			return false
		}
	}
	if f.Group != "" && e.Group != f.Group {
		return false
	}
	if f.MaterialID != nil && e.MaterialID != *f.MaterialID {
		return false
	}
	return true
}

// ParseDate parses a calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
