package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
)

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetSheetName("Sheet1", "전기자재"))
	require.NoError(t, f.SetSheetRow("전기자재", "A1", &[]any{"품명", " 현재고 ", "", "단가"}))
	require.NoError(t, f.SetSheetRow("전기자재", "A2", &[]any{"차단기", "1,250", "ignored", 300}))
	require.NoError(t, f.SetSheetRow("전기자재", "A4", &[]any{"", "5"}))
	_, err := f.NewSheet("메모")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	sheets, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	assert.Equal(t, "전기자재", sheets[0].Name)
	require.Len(t, sheets[0].Rows, 2)
	assert.Equal(t, Row{"품명": "차단기", "현재고": "1,250", "단가": "300"}, sheets[0].Rows[0])
	assert.Equal(t, Row{"현재고": "5"}, sheets[0].Rows[1])

	assert.Equal(t, "메모", sheets[1].Name)
	assert.Empty(t, sheets[1].Rows)
}

func TestReadWorkbookRejectsGarbage(t *testing.T) {
	_, err := ReadWorkbook(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}

func TestWriteStock(t *testing.T) {
	ms := []materials.Material{
		{Group: catalog.GroupElectrical, Major: "차단기", Minor: "MCCB", Code: "E-1", Name: "차단기 3P", UnitPrice: 1500, Quantity: 4},
		{Group: catalog.GroupAutomation, Major: "센서", Name: "근접센서", UnitPrice: 200, Quantity: 0},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteStock(&buf, ms))

	sheets, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "전기자재", sheets[0].Name)
	assert.Equal(t, "자동화자재", sheets[1].Name)

	require.Len(t, sheets[0].Rows, 1)
	row := sheets[0].Rows[0]
	assert.Equal(t, "차단기 3P", row[LabelName])
	assert.Equal(t, "1500", row[LabelPrice])
	assert.Equal(t, "4", row[LabelQuantity])
	assert.Equal(t, "6000", row[LabelValue])

	require.Len(t, sheets[1].Rows, 1)
	assert.Equal(t, "0", sheets[1].Rows[0][LabelValue])
}

func TestWriteLedger(t *testing.T) {
	day, err := ledger.ParseDate("2024-03-05")
	require.NoError(t, err)
	entries := []ledger.Entry{
		{Date: day, Group: catalog.GroupElectrical, Type: ledger.MoveIn, MaterialName: "케이블", Quantity: 10},
		{Date: day, Group: catalog.GroupElectrical, Type: ledger.MoveOut, MaterialName: "케이블", Quantity: 3, Actor: "김", Note: "현장"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, entries))

	sheets, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	require.Len(t, sheets[0].Rows, 2)
	assert.Equal(t, "입고", sheets[0].Rows[0][LabelType])
	assert.Equal(t, "2024-03-05", sheets[0].Rows[0][LabelDate])
	assert.Equal(t, "출고", sheets[0].Rows[1][LabelType])
	assert.Equal(t, "김", sheets[0].Rows[1][LabelActor])
	assert.Equal(t, "전기자재", sheets[0].Rows[1][LabelGroup])
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "자재현황_20240305.xlsx", StockFileName(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "입출고내역_202403.xlsx", LedgerFileName(2024, 3))
	assert.Equal(t, "입출고내역_2024.xlsx", LedgerFileName(2024, 0))
}
