// Package memstore is an in-memory stock.Store. Transactions are fully
// serialized and roll back by restoring a copy of the maps.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
	"github.com/Spok95/material-kiosk/internal/stock"
)

var _ stock.Store = (*Store)(nil)

type Store struct {
	mu        sync.Mutex
	materials map[id.ID]materials.Material
	entries   map[id.ID]ledger.Entry
	order     map[id.ID]int64
	seq       int64
	now       func() time.Time
}

func New() *Store {
	return &Store{
		materials: make(map[id.ID]materials.Material),
		entries:   make(map[id.ID]ledger.Entry),
		order:     make(map[id.ID]int64),
		now:       time.Now,
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(context.Context, stock.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mats := maps.Clone(s.materials)
	entries := maps.Clone(s.entries)
	order := maps.Clone(s.order)
	seq := s.seq

	if err := fn(ctx, &tx{s: s}); err != nil {
		s.materials, s.entries, s.order, s.seq = mats, entries, order, seq
		return err
	}
	return nil
}

type tx struct{ s *Store }

func (t *tx) Catalog() stock.Catalog { return catalogTx{t.s} }
func (t *tx) Ledger() stock.Ledger   { return ledgerTx{t.s} }

type catalogTx struct{ s *Store }

func (c catalogTx) Get(_ context.Context, materialID id.ID) (*materials.Material, error) {
	m, ok := c.s.materials[materialID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (c catalogTx) GetForUpdate(ctx context.Context, materialID id.ID) (*materials.Material, error) {
	return c.Get(ctx, materialID)
}

func (c catalogTx) List(_ context.Context) ([]materials.Material, error) {
	out := make([]materials.Material, 0, len(c.s.materials))
	for _, m := range c.s.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c catalogTx) Create(_ context.Context, m materials.Material) (*materials.Material, error) {
	if id.IsNil(m.ID) {
		m.ID = id.New()
	}
	if _, ok := c.s.materials[m.ID]; ok {
		return nil, fmt.Errorf("create material: duplicate id %s", m.ID)
	}
	if m.UnitPrice < 0 || m.Quantity < 0 {
		return nil, fmt.Errorf("create material: negative price or quantity")
	}
	now := c.s.now()
	m.Version = 1
	m.CreatedAt, m.UpdatedAt = now, now
	c.s.materials[m.ID] = m
	return &m, nil
}

func (c catalogTx) Update(_ context.Context, materialID id.ID, p materials.Patch) (*materials.Material, error) {
	m, ok := c.s.materials[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID)
	}
	if p.Empty() {
		return &m, nil
	}
	p.Apply(&m)
	if m.UnitPrice < 0 || m.Quantity < 0 {
		return nil, fmt.Errorf("update material: negative price or quantity")
	}
	m.Version++
	m.UpdatedAt = c.s.now()
	c.s.materials[materialID] = m
	return &m, nil
}

func (c catalogTx) SetQuantity(_ context.Context, materialID id.ID, version, qty int64) (*materials.Material, error) {
	m, ok := c.s.materials[materialID]
	if !ok || m.Version != version {
		return nil, apperror.NewConcurrentModification("material", materialID)
	}
	if qty < 0 {
		return nil, fmt.Errorf("set quantity: negative quantity %d", qty)
	}
	m.Quantity = qty
	m.Version++
	m.UpdatedAt = c.s.now()
	c.s.materials[materialID] = m
	return &m, nil
}

func (c catalogTx) Delete(_ context.Context, materialID id.ID) error {
	if _, ok := c.s.materials[materialID]; !ok {
		return apperror.NewNotFound("material", materialID)
	}
	delete(c.s.materials, materialID)
	return nil
}

type ledgerTx struct{ s *Store }

func (l ledgerTx) Get(_ context.Context, entryID id.ID) (*ledger.Entry, error) {
	e, ok := l.s.entries[entryID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (l ledgerTx) GetForUpdate(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	return l.Get(ctx, entryID)
}

func (l ledgerTx) List(_ context.Context, f ledger.Filter) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, e := range l.s.entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return l.s.order[out[i].ID] < l.s.order[out[j].ID]
	})
	return out, nil
}

func (l ledgerTx) Insert(_ context.Context, e ledger.Entry) (*ledger.Entry, error) {
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if e.Quantity <= 0 {
		return nil, fmt.Errorf("insert entry: quantity must be positive")
	}
	e.RecordedAt = l.s.now()
	l.s.seq++
	l.s.order[e.ID] = l.s.seq
	l.s.entries[e.ID] = e
	return &e, nil
}

func (l ledgerTx) Update(_ context.Context, entryID id.ID, p ledger.Patch) (*ledger.Entry, error) {
	e, ok := l.s.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("entry", entryID)
	}
	p.Apply(&e)
	if e.Quantity <= 0 {
		return nil, fmt.Errorf("update entry: quantity must be positive")
	}
	l.s.entries[entryID] = e
	return &e, nil
}

func (l ledgerTx) Delete(_ context.Context, entryID id.ID) error {
	if _, ok := l.s.entries[entryID]; !ok {
		return apperror.NewNotFound("entry", entryID)
	}
	delete(l.s.entries, entryID)
	delete(l.s.order, entryID)
	return nil
}
