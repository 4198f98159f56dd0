package reports

import (
	"fmt"
	"io"

	"bitbucket.org/mmdatafocus/balances_backend/workflow"
	"github.com/xuri/excelize/v2"
)

// ExportDashboardExcel writes the year dashboard as a two-sheet workbook:
// the firm-wide stage counts and the per-auditor breakdown.
func ExportDashboardExcel(dashboard *BalanceDashboard, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Stages"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Stage")
	f.SetCellValue(sheetName, "B1", "Cases")
	row := 2
	for _, stage := range workflow.AllStages() {
		f.SetCellValue(sheetName, "A"+fmt.Sprint(row), workflow.StageLabel(stage))
		f.SetCellValue(sheetName, "B"+fmt.Sprint(row), dashboard.ByStage[stage])
		row++
	}
	f.SetCellValue(sheetName, "A"+fmt.Sprint(row), "Total")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(row), dashboard.TotalCases)

	auditorSheet := "Auditors"
	if _, err := f.NewSheet(auditorSheet); err != nil {
		return err
	}

	f.SetCellValue(auditorSheet, "A1", "Auditor")
	col := 'B'
	for _, stage := range workflow.AllStages() {
		f.SetCellValue(auditorSheet, string(col)+"1", workflow.StageLabel(stage))
		col++
	}
	f.SetCellValue(auditorSheet, string(col)+"1", "Total")

	for i, summary := range dashboard.ByAuditor {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(auditorSheet, "A"+rowNo, summary.AuditorName)
		col := 'B'
		for _, stage := range workflow.AllStages() {
			f.SetCellValue(auditorSheet, string(col)+rowNo, summary.ByStage[stage])
			col++
		}
		f.SetCellValue(auditorSheet, string(col)+rowNo, summary.Total)
	}

	return f.Write(w)
}
