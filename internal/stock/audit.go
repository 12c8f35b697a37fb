package stock

import (
	"context"

	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
)

// AuditLine compares one material with the signed sum of its entries.
// Opening is the part of the quantity not explained by the ledger, such as
// stock loaded by an import.
type AuditLine struct {
	Material  materials.Material
	LedgerNet int64
	Entries   int
	Opening   int64
}

type AuditReport struct {
	Lines   []AuditLine
	Orphans []ledger.Entry // entries whose material no longer exists
}

// Unexplained returns the lines whose quantity differs from the ledger net.
func (r AuditReport) Unexplained() []AuditLine {
	var out []AuditLine
	for _, l := range r.Lines {
		if l.Opening != 0 {
			out = append(out, l)
		}
	}
	return out
}

// Audit reads the catalog and the whole ledger in one transaction.
func (s *Service) Audit(ctx context.Context) (AuditReport, error) {
	var (
		ms      []materials.Material
		entries []ledger.Entry
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if ms, err = tx.Catalog().List(ctx); err != nil {
			return err
		}
		entries, err = tx.Ledger().List(ctx, ledger.Filter{})
		return err
	})
	if err != nil {
		return AuditReport{}, err
	}

	net := make(map[id.ID]int64, len(ms))
	count := make(map[id.ID]int, len(ms))
	known := make(map[id.ID]struct{}, len(ms))
	for _, m := range ms {
		known[m.ID] = struct{}{}
	}

	var report AuditReport
	for _, e := range entries {
		if _, ok := known[e.MaterialID]; !ok {
			report.Orphans = append(report.Orphans, e)
			continue
		}
		net[e.MaterialID] += e.Effect()
		count[e.MaterialID]++
	}

	materials.SortByName(ms)
	for _, m := range ms {
		report.Lines = append(report.Lines, AuditLine{
			Material:  m,
			LedgerNet: net[m.ID],
			Entries:   count[m.ID],
			Opening:   m.Quantity - net[m.ID],
		})
	}
	return report, nil
}
