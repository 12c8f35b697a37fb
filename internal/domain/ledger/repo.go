package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/id"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const table = "ledger_entries"

var columns = []string{
	"id", "material_id", "material_name", "material_code", "category_group",
	"movement_type", "entry_date", "quantity", "actor", "note", "recorded_at",
}

type Repo struct {
	q       DBTX
	builder squirrel.StatementBuilderType
}

func NewRepo(q DBTX) *Repo {
	return &Repo{q: q, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

func (r *Repo) Get(ctx context.Context, entryID id.ID) (*Entry, error) {
	return r.get(ctx, r.builder.Select(columns...).From(table).Where(squirrel.Eq{"id": entryID}))
}

// GetForUpdate locks the entry row until the surrounding transaction ends.
func (r *Repo) GetForUpdate(ctx context.Context, entryID id.ID) (*Entry, error) {
	return r.get(ctx, r.builder.Select(columns...).From(table).Where(squirrel.Eq{"id": entryID}).Suffix("FOR UPDATE"))
}

func (r *Repo) get(ctx context.Context, q squirrel.SelectBuilder) (*Entry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var e Entry
	if err := pgxscan.Get(ctx, r.q, &e, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &e, nil
}

// List returns entries in date order, ties broken by recording time.
func (r *Repo) List(ctx context.Context, f Filter) ([]Entry, error) {
	q := r.builder.Select(columns...).From(table).OrderBy("entry_date", "recorded_at")
	if from, to, ok := f.Range(); ok {
		q = q.Where(squirrel.GtOrEq{"entry_date": from}).Where(squirrel.Lt{"entry_date": to})
	}
	if f.Group != "" {
		q = q.Where(squirrel.Eq{"category_group": string(f.Group)})
	}
	if f.MaterialID != nil {
		q = q.Where(squirrel.Eq{"material_id": *f.MaterialID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	var out []Entry
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

func (r *Repo) Insert(ctx context.Context, e Entry) (*Entry, error) {
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	sql, args, err := r.builder.Insert(table).
		Columns(columns[:len(columns)-1]...).
		Values(e.ID, e.MaterialID, e.MaterialName, e.MaterialCode, string(e.Group),
			string(e.Type), e.Date, e.Quantity, e.Actor, e.Note).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	var out Entry
	if err := pgxscan.Get(ctx, r.q, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return &out, nil
}

func (r *Repo) Update(ctx context.Context, entryID id.ID, p Patch) (*Entry, error) {
	q := r.builder.Update(table).Where(squirrel.Eq{"id": entryID}).Suffix("RETURNING " + joinColumns())
	set := false
	if p.Date != nil {
		q, set = q.Set("entry_date", *p.Date), true
	}
	if p.Quantity != nil {
		q, set = q.Set("quantity", *p.Quantity), true
	}
	if p.Actor != nil {
		q, set = q.Set("actor", *p.Actor), true
	}
	if p.Note != nil {
		q, set = q.Set("note", *p.Note), true
	}
	if !set {
		e, err := r.Get(ctx, entryID)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, apperror.NewNotFound("entry", entryID)
		}
		return e, nil
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	var out Entry
	if err := pgxscan.Get(ctx, r.q, &out, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("entry", entryID)
		}
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return &out, nil
}

func (r *Repo) Delete(ctx context.Context, entryID id.ID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("entry", entryID)
	}
	return nil
}

func joinColumns() string {
	out := columns[0]
	for _, c := range columns[1:] {
		out += ", " + c
	}
	return out
}
