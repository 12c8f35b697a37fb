package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/stock"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	m, err := svc.Register(ctx, stock.RegisterInput{
		Group: catalog.GroupElectrical, Major: " 차단기 ", Name: "ELB 2P", UnitPrice: "12,500",
	})
	require.NoError(t, err)
	assert.Equal(t, "차단기", m.Major)
	assert.Equal(t, int64(12500), m.UnitPrice)
	assert.Equal(t, int64(0), m.Quantity)
	assert.Equal(t, catalog.DefaultIcon, m.Icon)

	m, err = svc.Register(ctx, stock.RegisterInput{
		Group: catalog.GroupAutomation, Major: "센서", Name: "근접센서", UnitPrice: "abc", Icon: "🔌",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.UnitPrice)
	assert.Equal(t, "🔌", m.Icon)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for name, in := range map[string]stock.RegisterInput{
		"no major": {Group: catalog.GroupElectrical, Name: "X"},
		"no name":  {Group: catalog.GroupElectrical, Major: "X"},
		"no group": {Major: "X", Name: "Y"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, in)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
		})
	}
	all, err := svc.ListMaterials(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListingAndCategories(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	reg := func(g catalog.Group, major, minor, name string) {
		_, err := svc.Register(ctx, stock.RegisterInput{Group: g, Major: major, Minor: minor, Name: name, UnitPrice: 100})
		require.NoError(t, err)
	}
	reg(catalog.GroupElectrical, "차단기", "MCCB", "하이브리드 차단기")
	reg(catalog.GroupElectrical, "차단기", "ELB", "누전 차단기")
	reg(catalog.GroupElectrical, "전선", "", "가요전선관")
	reg(catalog.GroupAutomation, "센서", "광전", "광센서")

	ms, err := svc.ListMaterials(ctx, catalog.GroupElectrical)
	require.NoError(t, err)
	names := make([]string, 0, len(ms))
	for _, m := range ms {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"가요전선관", "누전 차단기", "하이브리드 차단기"}, names)

	majors, err := svc.Categories(ctx, catalog.GroupElectrical, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"전선", "차단기"}, majors)

	minors, err := svc.Categories(ctx, catalog.GroupElectrical, "차단기")
	require.NoError(t, err)
	assert.Equal(t, []string{"ELB", "MCCB"}, minors)

	minors, err = svc.Categories(ctx, catalog.GroupElectrical, "전선")
	require.NoError(t, err)
	assert.Empty(t, minors)

	found, err := svc.FindMaterials(ctx, "mccb")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "하이브리드 차단기", found[0].Name)
}

func TestTotalValue(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	seedMaterial(t, st, "A", 3) // price 1000
	seedMaterial(t, st, "B", 0)

	total, err := svc.TotalValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), total)
}

func TestDeleteMaterialMissing(t *testing.T) {
	svc, _ := newService(t)
	err := svc.DeleteMaterial(context.Background(), materials.Material{}.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestLowStockTracker(t *testing.T) {
	tr := stock.NewLowStockTracker(5)
	a := materials.Material{Name: "A", Quantity: 2}
	b := materials.Material{Name: "B", Quantity: 10}
	a.ID[0], b.ID[0] = 1, 2

	assert.Empty(t, tr.Check([]materials.Material{a, b}), "first check only seeds")

	b.Quantity = 0
	alerts := tr.Check([]materials.Material{a, b})
	require.Len(t, alerts, 1)
	assert.Equal(t, "B", alerts[0].Material.Name)
	assert.True(t, alerts[0].Empty)

	assert.Empty(t, tr.Check([]materials.Material{a, b}))

	b.Quantity = 8
	assert.Empty(t, tr.Check([]materials.Material{a, b}))
	b.Quantity = 4
	alerts = tr.Check([]materials.Material{a, b})
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].Empty)
}
