package stock

import (
	"context"

	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
)

// Catalog is the material store as seen inside a transaction.
// Get and GetForUpdate return (nil, nil) when the material does not exist.
type Catalog interface {
	Get(ctx context.Context, materialID id.ID) (*materials.Material, error)
	GetForUpdate(ctx context.Context, materialID id.ID) (*materials.Material, error)
	List(ctx context.Context) ([]materials.Material, error)
	Create(ctx context.Context, m materials.Material) (*materials.Material, error)
	Update(ctx context.Context, materialID id.ID, p materials.Patch) (*materials.Material, error)
	// SetQuantity fails with CONCURRENT_MODIFICATION when version is stale.
	SetQuantity(ctx context.Context, materialID id.ID, version, qty int64) (*materials.Material, error)
	Delete(ctx context.Context, materialID id.ID) error
}

// Ledger is the entry store as seen inside a transaction.
type Ledger interface {
	Get(ctx context.Context, entryID id.ID) (*ledger.Entry, error)
	GetForUpdate(ctx context.Context, entryID id.ID) (*ledger.Entry, error)
	List(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error)
	Insert(ctx context.Context, e ledger.Entry) (*ledger.Entry, error)
	Update(ctx context.Context, entryID id.ID, p ledger.Patch) (*ledger.Entry, error)
	Delete(ctx context.Context, entryID id.ID) error
}

type Tx interface {
	Catalog() Catalog
	Ledger() Ledger
}

// Store runs fn in one transaction; any error rolls everything back.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
