// Package importer merges spreadsheet rows into the material catalog,
// upserting by (name, category group).
package importer

import (
	"context"
	"io"
	"log/slog"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
	"github.com/Spok95/material-kiosk/internal/infra/feed"
	"github.com/Spok95/material-kiosk/internal/infra/metrics"
	"github.com/Spok95/material-kiosk/internal/stock"
	"github.com/Spok95/material-kiosk/internal/xlsx"
)

type Summary struct {
	Inserted      int
	Updated       int
	Skipped       int
	IgnoredSheets []string
}

type Processor struct {
	store   stock.Store
	log     *slog.Logger
	pub     feed.Publisher
	metrics *metrics.Metrics
}

// New builds a Processor. pub and m may be nil.
func New(store stock.Store, log *slog.Logger, pub feed.Publisher, m *metrics.Metrics) *Processor {
	return &Processor{store: store, log: log, pub: pub, metrics: m}
}

// ImportWorkbook reads an .xlsx stream and merges it. An unreadable stream
// is the only failure that aborts before any row is applied.
func (p *Processor) ImportWorkbook(ctx context.Context, r io.Reader) (Summary, error) {
	sheets, err := xlsx.ReadWorkbook(r)
	if err != nil {
		return Summary{}, apperror.NewImportRead(err)
	}
	return p.Merge(ctx, sheets)
}

// Merge applies sheets row by row against the catalog as it was before the
// merge started. A key that repeats within the batch overwrites the earlier
// row's result.
func (p *Processor) Merge(ctx context.Context, sheets []xlsx.Sheet) (Summary, error) {
	snapshot, err := p.snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	created := make(map[materials.Key]id.ID)

	var sum Summary
	defer func() {
		p.metrics.ImportRows("inserted", sum.Inserted)
		p.metrics.ImportRows("updated", sum.Updated)
		p.metrics.ImportRows("skipped", sum.Skipped)
		if sum.Inserted+sum.Updated > 0 && p.pub != nil {
			if err := p.pub.Publish(ctx, feed.TopicMaterials); err != nil {
				p.log.Error("publish change failed", "topic", feed.TopicMaterials, "err", err)
			}
		}
	}()

	for _, sheet := range sheets {
		group, ok := catalog.GroupFromSheet(sheet.Name)
		if !ok {
			p.log.Info("import: sheet ignored", "sheet", sheet.Name)
			sum.IgnoredSheets = append(sum.IgnoredSheets, sheet.Name)
			continue
		}
		for i, raw := range sheet.Rows {
			row := decodeRow(raw)
			if row.Name == "" {
				sum.Skipped++
				continue
			}
			cand := row.candidate(group)
			key := cand.Key()

			target, ok := snapshot[key]
			if !ok {
				target, ok = created[key]
			}
			if !ok {
				m, err := p.create(ctx, cand)
				if err != nil {
					return sum, err
				}
				created[key] = m.ID
				sum.Inserted++
				continue
			}

			err := p.overwrite(ctx, target, cand)
			if apperror.IsNotFound(err) {
				p.log.Warn("import: material vanished during import", "sheet", sheet.Name, "row", i+2, "name", cand.Name)
				sum.Skipped++
				continue
			}
			if err != nil {
				return sum, err
			}
			sum.Updated++
		}
	}

	p.log.Info("import finished", "inserted", sum.Inserted, "updated", sum.Updated, "skipped", sum.Skipped)
	return sum, nil
}

func (p *Processor) snapshot(ctx context.Context) (map[materials.Key]id.ID, error) {
	out := make(map[materials.Key]id.ID)
	err := p.store.WithTx(ctx, func(ctx context.Context, tx stock.Tx) error {
		ms, err := tx.Catalog().List(ctx)
		if err != nil {
			return err
		}
		for _, m := range ms {
			if _, dup := out[m.Key()]; !dup {
				out[m.Key()] = m.ID
			}
		}
		return nil
	})
	return out, err
}

func (p *Processor) create(ctx context.Context, cand materials.Material) (*materials.Material, error) {
	var m *materials.Material
	err := p.store.WithTx(ctx, func(ctx context.Context, tx stock.Tx) error {
		var err error
		m, err = tx.Catalog().Create(ctx, cand)
		return err
	})
	return m, err
}

// overwrite replaces every imported field; the name and group already match.
func (p *Processor) overwrite(ctx context.Context, materialID id.ID, cand materials.Material) error {
	return p.store.WithTx(ctx, func(ctx context.Context, tx stock.Tx) error {
		_, err := tx.Catalog().Update(ctx, materialID, materials.Patch{
			Major:     &cand.Major,
			Minor:     &cand.Minor,
			Code:      &cand.Code,
			UnitPrice: &cand.UnitPrice,
			Quantity:  &cand.Quantity,
			Icon:      &cand.Icon,
		})
		return err
	})
}
