package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
)

// Column labels written by the exports. The import accepts them back.
const (
	LabelMajor    = "대분류"
	LabelMinor    = "소분류"
	LabelCode     = "품목코드"
	LabelName     = "품명"
	LabelPrice    = "단가"
	LabelQuantity = "현재고"
	LabelValue    = "재고금액"
	LabelIcon     = "아이콘"

	LabelDate  = "날짜"
	LabelGroup = "구분"
	LabelType  = "입출고"
	LabelQty   = "수량"
	LabelActor = "담당자"
	LabelNote  = "비고"
)

const ledgerSheet = "입출고내역"

// StockFileName follows 자재현황_YYYYMMDD.xlsx.
func StockFileName(now time.Time) string {
	return fmt.Sprintf("자재현황_%s.xlsx", now.Format("20060102"))
}

// LedgerFileName follows 입출고내역_YYYYMM.xlsx, or _YYYY when month is 0.
func LedgerFileName(year, month int) string {
	if month == 0 {
		return fmt.Sprintf("입출고내역_%04d.xlsx", year)
	}
	return fmt.Sprintf("입출고내역_%04d%02d.xlsx", year, month)
}

// WriteStock writes one sheet per category group with a value column.
func WriteStock(w io.Writer, ms []materials.Material) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header := []any{LabelMajor, LabelMinor, LabelCode, LabelName, LabelPrice, LabelQuantity, LabelValue}
	for i, g := range catalog.Groups() {
		sheet := g.Label()
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("new sheet: %w", err)
		}

		var rows [][]any
		for _, m := range ms {
			if m.Group != g {
				continue
			}
			rows = append(rows, []any{m.Major, m.Minor, m.Code, m.Name, m.UnitPrice, m.Quantity, m.Value()})
		}
		if err := writeTable(f, sheet, header, rows); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteLedger writes the given entries to a single sheet in their order.
func WriteLedger(w io.Writer, entries []ledger.Entry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), ledgerSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := []any{LabelDate, LabelGroup, LabelType, LabelName, LabelCode, LabelQty, LabelActor, LabelNote}
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{
			e.Date.Format(ledger.DateLayout),
			e.Group.Label(),
			moveLabel(e.Type),
			e.MaterialName,
			e.MaterialCode,
			e.Quantity,
			e.Actor,
			e.Note,
		})
	}
	if err := writeTable(f, ledgerSheet, header, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func moveLabel(t ledger.MoveType) string {
	switch t {
	case ledger.MoveIn:
		return "입고"
	case ledger.MoveOut:
		return "출고"
	}
	return string(t)
}

func writeTable(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}
