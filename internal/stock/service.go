// Package stock keeps material quantities consistent with the movement
// ledger. It is the only code path that changes quantity_on_hand through
// ledger mutations.
package stock

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
	"github.com/Spok95/material-kiosk/internal/infra/feed"
	"github.com/Spok95/material-kiosk/internal/infra/metrics"
)

type Service struct {
	store   Store
	log     *slog.Logger
	pub     feed.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithPublisher(p feed.Publisher) Option { return func(s *Service) { s.pub = p } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store Store, log *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store exposes the underlying store to collaborators sharing the service.
func (s *Service) Store() Store { return s.store }

// MovementInput describes a receipt or withdrawal. A zero Date means today.
type MovementInput struct {
	Type     ledger.MoveType
	Quantity int64
	Date     time.Time
	Actor    string
	Note     string
}

// ParseQuantity is the strict parser for user-entered movement quantities.
func ParseQuantity(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, apperror.NewValidation("quantity must be a positive integer").WithDetail("value", raw)
	}
	return n, nil
}

// RecordMovement appends an entry for m and applies it to the quantity on
// hand in the same transaction. The material is re-read under lock, so a
// stale snapshot in m only supplies the id.
func (s *Service) RecordMovement(ctx context.Context, m materials.Material, in MovementInput) (*ledger.Entry, error) {
	if !in.Type.Valid() {
		return nil, s.reject(apperror.NewValidation("movement type must be IN or OUT").WithDetail("type", in.Type))
	}
	if in.Quantity <= 0 {
		return nil, s.reject(apperror.NewValidation("quantity must be a positive integer").WithDetail("quantity", in.Quantity))
	}
	actor := strings.TrimSpace(in.Actor)
	if in.Type == ledger.MoveOut && actor == "" {
		return nil, s.reject(apperror.NewValidation("actor is required for OUT movements"))
	}
	if in.Type == ledger.MoveIn {
		actor = ""
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	var entry *ledger.Entry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.Catalog().GetForUpdate(ctx, m.ID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperror.NewNotFound("material", m.ID)
		}
		if cur.Version != m.Version {
			s.log.Debug("stale material snapshot", "material_id", m.ID, "seen", m.Version, "current", cur.Version)
		}

		next := cur.Quantity + ledger.Effect(in.Type, in.Quantity)
		if next < 0 {
			return apperror.NewInsufficientStock(cur.ID, in.Quantity, cur.Quantity)
		}
		if _, err := tx.Catalog().SetQuantity(ctx, cur.ID, cur.Version, next); err != nil {
			return err
		}
		entry, err = tx.Ledger().Insert(ctx, ledger.Entry{
			MaterialID:   cur.ID,
			MaterialName: cur.Name,
			MaterialCode: cur.Code,
			Group:        cur.Group,
			Type:         in.Type,
			Date:         ledger.Day(date),
			Quantity:     in.Quantity,
			Actor:        actor,
			Note:         strings.TrimSpace(in.Note),
		})
		return err
	})
	if err != nil {
		return nil, s.reject(err)
	}

	s.metrics.Movement("record", string(in.Type))
	s.log.Info("movement recorded",
		"entry_id", entry.ID, "material_id", entry.MaterialID, "type", entry.Type, "qty", entry.Quantity)
	s.publish(ctx, feed.TopicMaterials, feed.TopicLedger)
	return entry, nil
}

// EditEntryQuantity replaces the quantity of an entry and shifts the
// material by the difference. Deltas are taken from the stored entry, not
// from e.
func (s *Service) EditEntryQuantity(ctx context.Context, e ledger.Entry, quantity int64) (*ledger.Entry, error) {
	if quantity <= 0 {
		return nil, s.reject(apperror.NewValidation("quantity must be a positive integer").WithDetail("quantity", quantity))
	}

	var (
		updated *ledger.Entry
		changed bool
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.Ledger().GetForUpdate(ctx, e.ID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperror.NewNotFound("entry", e.ID)
		}
		delta := quantity - cur.Quantity
		if delta == 0 {
			updated = cur
			return nil
		}
		if err := s.shift(ctx, tx, cur.MaterialID, ledger.Effect(cur.Type, delta)); err != nil {
			return err
		}
		updated, err = tx.Ledger().Update(ctx, cur.ID, ledger.Patch{Quantity: &quantity})
		changed = err == nil
		return err
	})
	if err != nil {
		return nil, s.reject(err)
	}
	if !changed {
		return updated, nil
	}

	s.metrics.Movement("edit", string(updated.Type))
	s.log.Info("entry quantity edited", "entry_id", updated.ID, "material_id", updated.MaterialID, "qty", updated.Quantity)
	s.publish(ctx, feed.TopicMaterials, feed.TopicLedger)
	return updated, nil
}

// Entry fields accepted by EditEntryField.
const (
	FieldDate  = "date"
	FieldActor = "actor"
	FieldNote  = "note"
)

// EditEntryField changes entry metadata. It never touches stock.
func (s *Service) EditEntryField(ctx context.Context, e ledger.Entry, field, value string) (*ledger.Entry, error) {
	var p ledger.Patch
	value = strings.TrimSpace(value)
	switch field {
	case FieldDate:
		d, err := ledger.ParseDate(value)
		if err != nil {
			return nil, s.reject(apperror.NewValidation("date must be YYYY-MM-DD").WithDetail("value", value))
		}
		p.Date = &d
	case FieldActor:
		p.Actor = &value
	case FieldNote:
		p.Note = &value
	case "quantity":
		return nil, s.reject(apperror.NewValidation("quantity is edited through the quantity correction"))
	case "type", "movement_type":
		return nil, s.reject(apperror.NewValidation("movement type cannot be changed"))
	default:
		return nil, s.reject(apperror.NewValidation("unknown entry field").WithDetail("field", field))
	}

	var updated *ledger.Entry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.Ledger().GetForUpdate(ctx, e.ID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperror.NewNotFound("entry", e.ID)
		}
		if p.Actor != nil {
			if cur.Type == ledger.MoveOut && *p.Actor == "" {
				return apperror.NewValidation("actor is required for OUT movements")
			}
			if cur.Type == ledger.MoveIn && *p.Actor != "" {
				return apperror.NewValidation("IN movements carry no actor")
			}
		}
		updated, err = tx.Ledger().Update(ctx, cur.ID, p)
		return err
	})
	if err != nil {
		return nil, s.reject(err)
	}

	s.log.Info("entry field edited", "entry_id", updated.ID, "field", field)
	s.publish(ctx, feed.TopicLedger)
	return updated, nil
}

// DeleteEntry removes an entry and reverses its effect on the material.
func (s *Service) DeleteEntry(ctx context.Context, e ledger.Entry) error {
	var deleted ledger.Entry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.Ledger().GetForUpdate(ctx, e.ID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperror.NewNotFound("entry", e.ID)
		}
		if err := s.shift(ctx, tx, cur.MaterialID, -cur.Effect()); err != nil {
			return err
		}
		deleted = *cur
		return tx.Ledger().Delete(ctx, cur.ID)
	})
	if err != nil {
		return s.reject(err)
	}

	s.metrics.Movement("delete", string(deleted.Type))
	s.log.Info("entry deleted", "entry_id", deleted.ID, "material_id", deleted.MaterialID, "type", deleted.Type, "qty", deleted.Quantity)
	s.publish(ctx, feed.TopicMaterials, feed.TopicLedger)
	return nil
}

// shift adds delta to the material's quantity. A missing material is
// skipped so orphaned entries stay editable.
func (s *Service) shift(ctx context.Context, tx Tx, materialID id.ID, delta int64) error {
	m, err := tx.Catalog().GetForUpdate(ctx, materialID)
	if err != nil {
		return err
	}
	if m == nil {
		s.log.Warn("entry references a deleted material, stock left unchanged", "material_id", materialID)
		return nil
	}
	next := m.Quantity + delta
	if next < 0 {
		return apperror.NewNegativeStock(m.ID, m.Quantity, delta)
	}
	_, err = tx.Catalog().SetQuantity(ctx, m.ID, m.Version, next)
	return err
}

func (s *Service) reject(err error) error {
	if appErr, ok := apperror.AsAppError(err); ok {
		s.metrics.Rejection(appErr.Code)
		s.log.Warn("ledger operation rejected", "code", appErr.Code, "err", err)
	}
	return err
}

func (s *Service) publish(ctx context.Context, topics ...feed.Topic) {
	if s.pub == nil {
		return
	}
	for _, t := range topics {
		if err := s.pub.Publish(ctx, t); err != nil {
			s.log.Error("publish change failed", "topic", t, "err", err)
		}
	}
}
