package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/doeshing/gpa/internal/domain"
)

const sheetName = "Results"

var columnWidths = map[string]float64{
	"A": 28, // filename
	"B": 80, // summary
	"C": 40, // key entities
	"D": 48, // action items
	"E": 36, // keywords
	"F": 30, // error
}

func writeExcel(path string, results []domain.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if index, err := f.GetSheetIndex(sheetName); err == nil {
		f.SetActiveSheet(index)
	}

	for i, h := range domain.ExportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	for rowIdx, r := range results {
		for colIdx, v := range r.Row() {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}
	for col, width := range columnWidths {
		_ = f.SetColWidth(sheetName, col, col, width)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.SaveAs(path)
}
