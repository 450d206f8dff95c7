package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"billscan/internal/pipeline"
	"billscan/internal/validator"
)

const (
	summarySheet   = "Summary"
	fieldsSheet    = "Fields"
	lineItemsSheet = "Line Items"
)

// BuildWorkbook renders one analysis result as an XLSX workbook with a
// summary sheet, a per-field sheet, and the extracted line items. The caller
// owns closing the returned file.
func BuildWorkbook(result *pipeline.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSummary(f, result); err != nil {
		return nil, err
	}
	if err := writeFields(f, result); err != nil {
		return nil, err
	}
	if err := writeLineItems(f, result); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if idx, err := f.GetSheetIndex(summarySheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

func writeSummary(f *excelize.File, result *pipeline.Result) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Run ID", result.RunID.String()},
		{"Vendor", result.Fields.VendorName},
		{"Document Type", result.Fields.DocumentType},
		{"Payment Status", result.Fields.PaymentStatus},
		{"Extraction Quality", string(result.Fields.ExtractionQuality)},
		{"Total Amount", result.Fields.TotalAmount.String()},
		{"Currency", result.Fields.Currency},
		{},
		{"Fields Checked", result.ValidationSummary.Total},
		{"Fields Valid", result.ValidationSummary.Valid},
		{"Errors", result.ValidationSummary.Errors},
		{"Warnings", result.ValidationSummary.Warnings},
		{"All Valid", result.ValidationSummary.AllValid},
	}

	if result.Scores != nil && result.Scores.Overall != nil {
		rows = append(rows,
			[]interface{}{},
			[]interface{}{"Overall Confidence", result.Scores.Overall.Confidence},
			[]interface{}{"Confidence Band", string(result.Scores.Overall.Band)},
		)
	}
	if result.Scoring != nil && !result.Scoring.Succeeded {
		rows = append(rows,
			[]interface{}{},
			[]interface{}{"Scoring Skipped", string(result.Scoring.ErrorKind)},
		)
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Total Cost (USD)", result.Usage.TotalCost},
	)

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", 24)
}

func writeFields(f *excelize.File, result *pipeline.Result) error {
	if _, err := f.NewSheet(fieldsSheet); err != nil {
		return err
	}

	header := []interface{}{"Field", "Value", "Valid", "Error", "Warning", "Confidence", "Band", "Reasoning"}
	if err := f.SetSheetRow(fieldsSheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, field := range validator.CanonicalFields {
		res, ok := result.Validation[field]
		if !ok {
			continue
		}
		cells := []interface{}{field, res.Value, res.Valid, res.Error, res.Warning, "", "", ""}
		if result.Scores != nil {
			if fs := result.Scores.Get(field); fs != nil {
				cells[5] = fs.Confidence
				cells[6] = string(fs.Band)
				cells[7] = fs.Reasoning
			}
		}
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(fieldsSheet, cell, &cells); err != nil {
			return err
		}
		row++
	}
	return f.SetColWidth(fieldsSheet, "A", "H", 22)
}

func writeLineItems(f *excelize.File, result *pipeline.Result) error {
	if _, err := f.NewSheet(lineItemsSheet); err != nil {
		return err
	}

	header := []interface{}{"Description", "Quantity", "Unit Price", "Amount"}
	if err := f.SetSheetRow(lineItemsSheet, "A1", &header); err != nil {
		return err
	}

	for i, item := range result.Fields.LineItems {
		cells := []interface{}{
			item.Description,
			item.Quantity.String(),
			item.UnitPrice.String(),
			item.Amount.String(),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(lineItemsSheet, cell, &cells); err != nil {
			return err
		}
	}
	return f.SetColWidth(lineItemsSheet, "A", "D", 22)
}
