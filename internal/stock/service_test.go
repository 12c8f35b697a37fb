package stock_test

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
	"github.com/Spok95/material-kiosk/internal/infra/feed"
	"github.com/Spok95/material-kiosk/internal/infra/memstore"
	"github.com/Spok95/material-kiosk/internal/stock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, opts ...stock.Option) (*stock.Service, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	return stock.NewService(st, discardLogger(), opts...), st
}

// seedMaterial creates a material with an opening quantity that has no
// ledger entries behind it, the way an import leaves it.
func seedMaterial(t *testing.T, st stock.Store, name string, qty int64) materials.Material {
	t.Helper()
	var m *materials.Material
	require.NoError(t, st.WithTx(context.Background(), func(ctx context.Context, tx stock.Tx) error {
		var err error
		m, err = tx.Catalog().Create(ctx, materials.Material{
			Group: catalog.GroupElectrical, Major: "차단기", Name: name, UnitPrice: 1000, Quantity: qty,
		})
		return err
	}))
	return *m
}

func quantity(t *testing.T, svc *stock.Service, m materials.Material) int64 {
	t.Helper()
	cur, err := svc.GetMaterial(context.Background(), m.ID)
	require.NoError(t, err)
	return cur.Quantity
}

func in(q int64) stock.MovementInput {
	return stock.MovementInput{Type: ledger.MoveIn, Quantity: q}
}

func out(q int64, actor string) stock.MovementInput {
	return stock.MovementInput{Type: ledger.MoveOut, Quantity: q, Actor: actor}
}

func TestRecordMovement(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	m := seedMaterial(t, st, "MCCB 3P", 10)

	e, err := svc.RecordMovement(ctx, m, stock.MovementInput{
		Type: ledger.MoveIn, Quantity: 5, Actor: "ignored", Note: " 입고 ",
		Date: time.Date(2024, 3, 5, 15, 4, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), quantity(t, svc, m))
	assert.Equal(t, "MCCB 3P", e.MaterialName)
	assert.Equal(t, catalog.GroupElectrical, e.Group)
	assert.Empty(t, e.Actor)
	assert.Equal(t, "입고", e.Note)
	assert.Equal(t, "2024-03-05", e.Date.Format(ledger.DateLayout))
	assert.False(t, e.RecordedAt.IsZero())

	_, err = svc.RecordMovement(ctx, m, out(4, "A"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), quantity(t, svc, m))
}

func TestRecordMovementValidation(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	m := seedMaterial(t, st, "케이블", 3)

	cases := []struct {
		name string
		in   stock.MovementInput
		code string
	}{
		{"zero quantity", in(0), apperror.CodeValidation},
		{"negative quantity", in(-2), apperror.CodeValidation},
		{"out without actor", out(1, "  "), apperror.CodeValidation},
		{"bad type", stock.MovementInput{Type: "MOVE", Quantity: 1}, apperror.CodeValidation},
		{"insufficient", out(4, "A"), apperror.CodeInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordMovement(ctx, m, tc.in)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tc.code), err.Error())
			assert.Equal(t, int64(3), quantity(t, svc, m))
		})
	}

	entries, err := svc.ListEntries(ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInsufficientStockCarriesAvailable(t *testing.T) {
	svc, st := newService(t)
	m := seedMaterial(t, st, "단자대", 3)

	_, err := svc.RecordMovement(context.Background(), m, out(4, "A"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(3), appErr.Details["available"])
	assert.Equal(t, int64(4), appErr.Details["requested"])
}

func TestRecordMovementMissingMaterial(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.RecordMovement(context.Background(), materials.Material{ID: id.New()}, in(1))
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordMovementUsesFreshQuantity(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	m := seedMaterial(t, st, "PLC", 2)

	_, err := svc.RecordMovement(ctx, m, in(5))
	require.NoError(t, err)

	// m still says 2 at version 1; the engine must use the stored 7
	_, err = svc.RecordMovement(ctx, m, out(6, "B"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), quantity(t, svc, m))
}

func TestEditEntryQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("lower IN", func(t *testing.T) {
		svc, st := newService(t)
		m := seedMaterial(t, st, "A", 0)
		e, err := svc.RecordMovement(ctx, m, in(2))
		require.NoError(t, err)

		got, err := svc.EditEntryQuantity(ctx, *e, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Quantity)
		assert.Equal(t, int64(1), quantity(t, svc, m))
	})

	t.Run("lower IN below what was withdrawn", func(t *testing.T) {
		svc, st := newService(t)
		m := seedMaterial(t, st, "B", 0)
		e, err := svc.RecordMovement(ctx, m, in(5))
		require.NoError(t, err)
		_, err = svc.RecordMovement(ctx, m, out(2, "A"))
		require.NoError(t, err)
		_, err = svc.RecordMovement(ctx, m, out(3, "A"))
		require.NoError(t, err)
		require.Equal(t, int64(0), quantity(t, svc, m))

		_, err = svc.EditEntryQuantity(ctx, *e, 3)
		assert.True(t, apperror.HasCode(err, apperror.CodeNegativeStock))
		assert.Equal(t, int64(0), quantity(t, svc, m))

		stored, err := svc.GetEntry(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), stored.Quantity)
	})

	t.Run("raise OUT", func(t *testing.T) {
		svc, st := newService(t)
		m := seedMaterial(t, st, "C", 10)
		e, err := svc.RecordMovement(ctx, m, out(4, "A"))
		require.NoError(t, err)

		_, err = svc.EditEntryQuantity(ctx, *e, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(3), quantity(t, svc, m))

		_, err = svc.EditEntryQuantity(ctx, *e, 11)
		assert.True(t, apperror.HasCode(err, apperror.CodeNegativeStock))
		assert.Equal(t, int64(3), quantity(t, svc, m))
	})

	t.Run("delta from stored value", func(t *testing.T) {
		svc, st := newService(t)
		m := seedMaterial(t, st, "D", 0)
		e, err := svc.RecordMovement(ctx, m, in(2))
		require.NoError(t, err)
		_, err = svc.EditEntryQuantity(ctx, *e, 6)
		require.NoError(t, err)

		// e still holds 2; the stored 6 is the base
		_, err = svc.EditEntryQuantity(ctx, *e, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(4), quantity(t, svc, m))
	})

	t.Run("no-op", func(t *testing.T) {
		svc, st := newService(t)
		m := seedMaterial(t, st, "E", 0)
		e, err := svc.RecordMovement(ctx, m, in(2))
		require.NoError(t, err)
		got, err := svc.EditEntryQuantity(ctx, *e, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Quantity)
		assert.Equal(t, int64(2), quantity(t, svc, m))
	})

	t.Run("invalid quantity", func(t *testing.T) {
		svc, st := newService(t)
		m := seedMaterial(t, st, "F", 0)
		e, err := svc.RecordMovement(ctx, m, in(2))
		require.NoError(t, err)
		_, err = svc.EditEntryQuantity(ctx, *e, 0)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("missing entry", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.EditEntryQuantity(ctx, ledger.Entry{ID: id.New()}, 3)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("OUT restores stock", func(t *testing.T) {
		svc, st := newService(t)
		m := seedMaterial(t, st, "A", 10)
		e, err := svc.RecordMovement(ctx, m, out(4, "A"))
		require.NoError(t, err)
		require.Equal(t, int64(6), quantity(t, svc, m))

		require.NoError(t, svc.DeleteEntry(ctx, *e))
		assert.Equal(t, int64(10), quantity(t, svc, m))
		_, err = svc.GetEntry(ctx, e.ID)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("IN already consumed", func(t *testing.T) {
		svc, st := newService(t)
		m := seedMaterial(t, st, "B", 0)
		e, err := svc.RecordMovement(ctx, m, in(5))
		require.NoError(t, err)
		_, err = svc.RecordMovement(ctx, m, out(4, "A"))
		require.NoError(t, err)

		err = svc.DeleteEntry(ctx, *e)
		assert.True(t, apperror.HasCode(err, apperror.CodeNegativeStock))
		assert.Equal(t, int64(1), quantity(t, svc, m))
		_, err = svc.GetEntry(ctx, e.ID)
		assert.NoError(t, err)
	})

	t.Run("twice", func(t *testing.T) {
		svc, st := newService(t)
		m := seedMaterial(t, st, "C", 0)
		e, err := svc.RecordMovement(ctx, m, in(5))
		require.NoError(t, err)
		require.NoError(t, svc.DeleteEntry(ctx, *e))
		assert.True(t, apperror.IsNotFound(svc.DeleteEntry(ctx, *e)))
		assert.Equal(t, int64(0), quantity(t, svc, m))
	})
}

func TestOrphanedEntries(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	m := seedMaterial(t, st, "A", 0)
	e1, err := svc.RecordMovement(ctx, m, in(5))
	require.NoError(t, err)
	e2, err := svc.RecordMovement(ctx, m, out(5, "A"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMaterial(ctx, m.ID))

	edited, err := svc.EditEntryQuantity(ctx, *e1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), edited.Quantity)

	require.NoError(t, svc.DeleteEntry(ctx, *e2))

	report, err := svc.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Lines)
	require.Len(t, report.Orphans, 1)
	assert.Equal(t, e1.ID, report.Orphans[0].ID)
}

func TestEditEntryField(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	m := seedMaterial(t, st, "A", 10)
	o, err := svc.RecordMovement(ctx, m, out(2, "A"))
	require.NoError(t, err)
	i, err := svc.RecordMovement(ctx, m, in(3))
	require.NoError(t, err)

	got, err := svc.EditEntryField(ctx, *o, stock.FieldDate, "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", got.Date.Format(ledger.DateLayout))

	got, err = svc.EditEntryField(ctx, *o, stock.FieldActor, "B")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Actor)

	got, err = svc.EditEntryField(ctx, *i, stock.FieldNote, "반품")
	require.NoError(t, err)
	assert.Equal(t, "반품", got.Note)

	assert.Equal(t, int64(11), quantity(t, svc, m))

	reject := []struct {
		name  string
		entry ledger.Entry
		field string
		value string
	}{
		{"bad date", *o, stock.FieldDate, "31.01.2024"},
		{"empty actor on OUT", *o, stock.FieldActor, " "},
		{"actor on IN", *i, stock.FieldActor, "C"},
		{"quantity", *o, "quantity", "3"},
		{"type", *o, "movement_type", "IN"},
		{"unknown", *o, "color", "red"},
	}
	for _, tc := range reject {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.EditEntryField(ctx, tc.entry, tc.field, tc.value)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation), err)
		})
	}

	stored, err := svc.GetEntry(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", stored.Actor)
	assert.Equal(t, ledger.MoveOut, stored.Type)
}

// TestLedgerInvariant drives a random sequence of operations and checks
// that the quantity always equals opening plus the ledger net.
func TestLedgerInvariant(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	const opening = 7
	m := seedMaterial(t, st, "A", opening)
	rnd := rand.New(rand.NewSource(42))

	var live []ledger.Entry
	for i := 0; i < 300; i++ {
		switch op := rnd.Intn(4); {
		case op == 0 || len(live) == 0:
			e, err := svc.RecordMovement(ctx, m, in(int64(rnd.Intn(5)+1)))
			require.NoError(t, err)
			live = append(live, *e)
		case op == 1:
			e, err := svc.RecordMovement(ctx, m, out(int64(rnd.Intn(6)+1), "A"))
			if err == nil {
				live = append(live, *e)
			} else {
				require.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
			}
		case op == 2:
			k := rnd.Intn(len(live))
			e, err := svc.EditEntryQuantity(ctx, live[k], int64(rnd.Intn(6)+1))
			if err == nil {
				live[k] = *e
			} else {
				require.True(t, apperror.HasCode(err, apperror.CodeNegativeStock))
			}
		default:
			k := rnd.Intn(len(live))
			err := svc.DeleteEntry(ctx, live[k])
			if err == nil {
				live = append(live[:k], live[k+1:]...)
			} else {
				require.True(t, apperror.HasCode(err, apperror.CodeNegativeStock))
			}
		}

		q := quantity(t, svc, m)
		require.GreaterOrEqual(t, q, int64(0))
		var net int64
		for _, e := range live {
			net += e.Effect()
		}
		require.Equal(t, opening+net, q, "step %d", i)
	}

	report, err := svc.Audit(ctx)
	require.NoError(t, err)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, int64(opening), report.Lines[0].Opening)
	assert.Len(t, report.Unexplained(), 1)
}

func TestConcurrentWithdrawalsNeverOversell(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	m := seedMaterial(t, st, "A", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordMovement(ctx, m, out(1, "A")); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
	assert.Equal(t, int64(0), quantity(t, svc, m))
}

func TestPublishesChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	local := feed.NewLocal()
	svc, st := newService(t, stock.WithPublisher(local))
	m := seedMaterial(t, st, "A", 1)

	ch, err := local.Subscribe(ctx, feed.TopicLedger)
	require.NoError(t, err)

	_, err = svc.RecordMovement(ctx, m, in(1))
	require.NoError(t, err)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no ledger change published")
	}
}

func TestParseQuantity(t *testing.T) {
	n, err := stock.ParseQuantity(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	for _, raw := range []string{"", "0", "-3", "1.5", "abc", "1,000"} {
		_, err := stock.ParseQuantity(raw)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), raw)
	}
}
