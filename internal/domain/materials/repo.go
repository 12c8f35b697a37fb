package materials

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

const columns = `id, category_group, major_category, minor_category, code, name,
	unit_price, quantity_on_hand, icon, version, created_at, updated_at`

type Repo struct {
	q       DBTX
	builder squirrel.StatementBuilderType
}

func NewRepo(q DBTX) *Repo {
	return &Repo{q: q, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

func (r *Repo) Get(ctx context.Context, materialID id.ID) (*Material, error) {
	return r.get(ctx, `SELECT `+columns+` FROM materials WHERE id = $1`, materialID)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *Repo) GetForUpdate(ctx context.Context, materialID id.ID) (*Material, error) {
	return r.get(ctx, `SELECT `+columns+` FROM materials WHERE id = $1 FOR UPDATE`, materialID)
}

func (r *Repo) get(ctx context.Context, sql string, materialID id.ID) (*Material, error) {
	var m Material
	if err := pgxscan.Get(ctx, r.q, &m, sql, materialID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &m, nil
}

func (r *Repo) List(ctx context.Context) ([]Material, error) {
	var out []Material
	if err := pgxscan.Select(ctx, r.q, &out, `SELECT `+columns+` FROM materials ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, m Material) (*Material, error) {
	if id.IsNil(m.ID) {
		m.ID = id.New()
	}
	var out Material
	err := pgxscan.Get(ctx, r.q, &out, `
		INSERT INTO materials (id, category_group, major_category, minor_category, code, name,
			unit_price, quantity_on_hand, icon, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1)
		RETURNING `+columns,
		m.ID, string(m.Group), m.Major, m.Minor, m.Code, m.Name, m.UnitPrice, m.Quantity, m.Icon)
	if err != nil {
		return nil, fmt.Errorf("create material: %w", err)
	}
	return &out, nil
}

func (r *Repo) Update(ctx context.Context, materialID id.ID, p Patch) (*Material, error) {
	if p.Empty() {
		m, err := r.Get(ctx, materialID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, apperror.NewNotFound("material", materialID)
		}
		return m, nil
	}

	q := r.builder.Update("materials").
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": materialID}).
		Suffix("RETURNING " + columns)
	if p.Group != nil {
		q = q.Set("category_group", string(*p.Group))
	}
	if p.Major != nil {
		q = q.Set("major_category", *p.Major)
	}
	if p.Minor != nil {
		q = q.Set("minor_category", *p.Minor)
	}
	if p.Code != nil {
		q = q.Set("code", *p.Code)
	}
	if p.Name != nil {
		q = q.Set("name", *p.Name)
	}
	if p.UnitPrice != nil {
		q = q.Set("unit_price", *p.UnitPrice)
	}
	if p.Quantity != nil {
		q = q.Set("quantity_on_hand", *p.Quantity)
	}
	if p.Icon != nil {
		q = q.Set("icon", *p.Icon)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	var out Material
	if err := pgxscan.Get(ctx, r.q, &out, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("material", materialID)
		}
		return nil, fmt.Errorf("update material: %w", err)
	}
	return &out, nil
}

// SetQuantity writes qty only if the row still carries version.
func (r *Repo) SetQuantity(ctx context.Context, materialID id.ID, version, qty int64) (*Material, error) {
	var out Material
	err := pgxscan.Get(ctx, r.q, &out, `
		UPDATE materials
		SET quantity_on_hand = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+columns, materialID, version, qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewConcurrentModification("material", materialID)
		}
		return nil, fmt.Errorf("set quantity: %w", err)
	}
	return &out, nil
}

func (r *Repo) Delete(ctx context.Context, materialID id.ID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM materials WHERE id = $1`, materialID)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("material", materialID)
	}
	return nil
}
