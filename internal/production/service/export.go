package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportFile 导出文件；URL 仅在归档到对象存储后有值
type ExportFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	URL         string `json:"url,omitempty"`
}

// 客户明细CSV列（顺序固定）
var PartywiseCSVHeaders = []string{
	"Party Name", "Order Date", "Design No", "Quality", "Ground Color", "Sets/Pcs", "Rate",
	"Lot No", "Lot Date", "Bill No", "Actual Pcs", "Delivery Date", "Status",
}

// 批次登记CSV列
var LotReportCSVHeaders = []string{
	"Lot Date", "Lot No", "Party Name", "Design No", "Quality", "Ground Color", "Total Pieces",
	"Bill No", "Actual Pieces", "Delivery Date", "Status", "Badge",
}

// quotedCSV 每个字段都加双引号，引号转义为两个，行尾 \n
type quotedCSV struct {
	buf bytes.Buffer
}

func (w *quotedCSV) write(fields ...string) {
	for i, f := range fields {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.buf.WriteByte('"')
		w.buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.buf.WriteByte('"')
	}
	w.buf.WriteByte('\n')
}

func (w *quotedCSV) bytes() []byte {
	return w.buf.Bytes()
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func partyStatusLabel(s entity.RowStatus) string {
	if s == entity.RowAllocated {
		return "Allocated"
	}
	return "Pending"
}

// PartywiseCSV 客户明细导出为CSV
func PartywiseCSV(groups []entity.PartyGroup) []byte {
	w := &quotedCSV{}
	w.write(PartywiseCSVHeaders...)
	for _, g := range groups {
		for _, r := range g.Rows {
			w.write(
				g.PartyName,
				r.Date,
				r.DesNo,
				r.Quality,
				r.GroundColorName,
				strconv.Itoa(r.SetsPcs),
				r.Rate.StringFixed(2),
				r.LotNo,
				r.LotNoDate,
				r.BillNo,
				optInt(r.ActualPcs),
				r.DeliveryDate,
				partyStatusLabel(r.Status),
			)
		}
	}
	return w.bytes()
}

// LotReportCSV 批次登记导出为CSV
func LotReportCSV(rows []entity.LotReportRow) []byte {
	w := &quotedCSV{}
	w.write(LotReportCSVHeaders...)
	for _, r := range rows {
		w.write(
			r.LotDate,
			r.LotNo,
			r.PartyName,
			r.DesignNo,
			r.Quality,
			r.GroundColorName,
			strconv.Itoa(r.TotalPieces),
			r.BillNo,
			optInt(r.ActualPieces),
			r.DeliveryDate,
			r.Status,
			string(r.Badge),
		)
	}
	return w.bytes()
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	return style
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

func setColWidths(f *excelize.File, sheet string, widths []float64) {
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}
}

// PartywiseXLSX 客户明细导出为Excel：客户标题行、明细行、客户小计行
func PartywiseXLSX(groups []entity.PartyGroup) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Partywise"
	f.SetSheetName("Sheet1", sheet)

	writeHeaderRow(f, sheet, PartywiseCSVHeaders, headerStyle(f))
	partyStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "1F4E78"},
	})
	subtotalStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "top", Color: "000000", Style: 1},
		},
	})

	row := 2
	for _, g := range groups {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), g.PartyName)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("M%d", row), partyStyle)
		row++

		for _, r := range g.Rows {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), g.PartyName)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Date)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.DesNo)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Quality)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.GroundColorName)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.SetsPcs)
			rate, _ := r.Rate.Round(2).Float64()
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), rate)
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.LotNo)
			f.SetCellValue(sheet, fmt.Sprintf("I%d", row), r.LotNoDate)
			f.SetCellValue(sheet, fmt.Sprintf("J%d", row), r.BillNo)
			if r.ActualPcs != nil {
				f.SetCellValue(sheet, fmt.Sprintf("K%d", row), *r.ActualPcs)
			}
			f.SetCellValue(sheet, fmt.Sprintf("L%d", row), r.DeliveryDate)
			f.SetCellValue(sheet, fmt.Sprintf("M%d", row), partyStatusLabel(r.Status))
			row++
		}

		value, _ := g.TotalValue.Round(2).Float64()
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Subtotal")
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("Items: %d", g.ItemCount))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), g.TotalRemainingPieces+g.TotalAllocatedPieces)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), value)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("M%d", row), subtotalStyle)
		row++
	}

	setColWidths(f, sheet, []float64{22, 12, 12, 14, 14, 9, 10, 12, 12, 12, 10, 13, 10})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write partywise excel: %w", err)
	}
	return buf.Bytes(), nil
}

// LotReportXLSX 批次登记导出为Excel
func LotReportXLSX(rows []entity.LotReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Lot Register"
	f.SetSheetName("Sheet1", sheet)

	writeHeaderRow(f, sheet, LotReportCSVHeaders, headerStyle(f))
	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.LotDate)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.LotNo)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.PartyName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.DesignNo)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Quality)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.GroundColorName)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.TotalPieces)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.BillNo)
		if r.ActualPieces != nil {
			f.SetCellValue(sheet, fmt.Sprintf("I%d", row), *r.ActualPieces)
		}
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), r.DeliveryDate)
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("L%d", row), string(r.Badge))
	}

	setColWidths(f, sheet, []float64{12, 12, 22, 12, 14, 14, 12, 12, 13, 13, 12, 10})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write lot register excel: %w", err)
	}
	return buf.Bytes(), nil
}

func exportName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102"), ext)
}
