package stock

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
	"github.com/Spok95/material-kiosk/internal/infra/feed"
	"github.com/Spok95/material-kiosk/internal/numeric"
)

// RegisterInput is a manually entered material. UnitPrice accepts anything
// the numeric normalizer does.
type RegisterInput struct {
	Group     catalog.Group
	Major     string
	Minor     string
	Code      string
	Name      string
	UnitPrice any
	Icon      string
}

// Register creates a material with zero stock. Unlike imports, a major
// category is mandatory here.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*materials.Material, error) {
	if !in.Group.Valid() {
		return nil, apperror.NewValidation("unknown category group").WithDetail("group", in.Group)
	}
	major := strings.TrimSpace(in.Major)
	name := strings.TrimSpace(in.Name)
	if major == "" || name == "" {
		return nil, apperror.NewValidation("major category and name are required")
	}
	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = catalog.DefaultIcon
	}

	var created *materials.Material
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		created, err = tx.Catalog().Create(ctx, materials.Material{
			Group:     in.Group,
			Major:     major,
			Minor:     strings.TrimSpace(in.Minor),
			Code:      strings.TrimSpace(in.Code),
			Name:      name,
			UnitPrice: numeric.ParseQuantityOrPrice(in.UnitPrice),
			Quantity:  0,
			Icon:      icon,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("material registered", "material_id", created.ID, "name", created.Name, "group", created.Group)
	s.publish(ctx, feed.TopicMaterials)
	return created, nil
}

// DeleteMaterial removes the material only; its ledger entries stay.
func (s *Service) DeleteMaterial(ctx context.Context, materialID id.ID) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Catalog().Delete(ctx, materialID)
	})
	if err != nil {
		return err
	}
	s.log.Info("material deleted", "material_id", materialID)
	s.publish(ctx, feed.TopicMaterials)
	return nil
}

func (s *Service) GetMaterial(ctx context.Context, materialID id.ID) (*materials.Material, error) {
	var m *materials.Material
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		m, err = tx.Catalog().Get(ctx, materialID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperror.NewNotFound("material", materialID)
	}
	return m, nil
}

// ListMaterials returns materials ordered by name. An empty group means all.
func (s *Service) ListMaterials(ctx context.Context, group catalog.Group) ([]materials.Material, error) {
	var all []materials.Material
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		all, err = tx.Catalog().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, m := range all {
		if group == "" || m.Group == group {
			out = append(out, m)
		}
	}
	materials.SortByName(out)
	return out, nil
}

// FindMaterials matches text against name, code and categories, ignoring case.
func (s *Service) FindMaterials(ctx context.Context, text string) ([]materials.Material, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	all, err := s.ListMaterials(ctx, "")
	if err != nil || text == "" {
		return all, err
	}
	var out []materials.Material
	for _, m := range all {
		for _, f := range []string{m.Name, m.Code, m.Major, m.Minor} {
			if strings.Contains(strings.ToLower(f), text) {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

// Categories lists the distinct major categories of a group, or the
// distinct non-empty minor categories under major when it is given.
func (s *Service) Categories(ctx context.Context, group catalog.Group, major string) ([]string, error) {
	ms, err := s.ListMaterials(ctx, group)
	if err != nil {
		return nil, err
	}
	major = strings.TrimSpace(major)
	seen := make(map[string]struct{})
	var out []string
	for _, m := range ms {
		v := m.Major
		if major != "" {
			if m.Major != major {
				continue
			}
			v = m.Minor
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	c := collate.New(language.Korean)
	sort.SliceStable(out, func(i, j int) bool { return c.CompareString(out[i], out[j]) < 0 })
	return out, nil
}

// TotalValue sums unit price times quantity over the whole catalog.
func (s *Service) TotalValue(ctx context.Context) (int64, error) {
	ms, err := s.ListMaterials(ctx, "")
	if err != nil {
		return 0, err
	}
	var total int64
	for _, m := range ms {
		total += m.Value()
	}
	return total, nil
}

func (s *Service) GetEntry(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	var e *ledger.Entry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		e, err = tx.Ledger().Get(ctx, entryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperror.NewNotFound("entry", entryID)
	}
	return e, nil
}

func (s *Service) ListEntries(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error) {
	var out []ledger.Entry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.Ledger().List(ctx, f)
		return err
	})
	return out, err
}
