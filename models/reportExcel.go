package models

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportMaterialWiseReportExcel renders the material-wise report as an xlsx
// workbook. The caller owns the returned file and must Close it.
func ExportMaterialWiseReportExcel(ctx context.Context, materialId *int, fromDate *time.Time, toDate *time.Time) (*excelize.File, error) {

	reports, err := MaterialWiseReportQuery(ctx, materialId, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Material Report"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Material", "Unit", "Total Added", "Total Distributed", "Remaining", "Site", "Site Qty", "Site Amount"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, report := range reports {
		writeRow := func(values []interface{}) error {
			for i, value := range values {
				cell, err := excelize.CoordinatesToCellName(i+1, row)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return err
				}
			}
			row++
			return nil
		}

		base := []interface{}{
			report.MaterialName,
			report.Unit,
			report.TotalAdded.String(),
			report.TotalDistributed.String(),
			report.Remaining.String(),
		}
		if len(report.Sites) == 0 {
			if err := writeRow(base); err != nil {
				return nil, err
			}
			continue
		}
		for i, site := range report.Sites {
			values := base
			if i > 0 {
				values = []interface{}{"", "", "", "", ""}
			}
			values = append(values, site.SiteName, site.Qty.String(), site.Amount.String())
			if err := writeRow(values); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// ExcelReportFileName builds a dated attachment name for the export.
func ExcelReportFileName(now time.Time) string {
	return fmt.Sprintf("material-report-%s.xlsx", now.Format("2006-01-02"))
}
