package statement

import (
	"bytes"
	"encoding/csv"

	"github.com/xuri/excelize/v2"

	"github.com/spendwise/backend/internal/model"
)

func readCSV(text []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, model.NewError(model.ErrMalformedInput, op, "statement is not valid CSV", err)
	}
	return rows, nil
}

// readXLSX returns the rows of the first sheet.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, model.NewError(model.ErrMalformedInput, op, "statement is not a valid spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, model.Errorf(model.ErrMalformedInput, op, "spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, model.NewError(model.ErrMalformedInput, op, "spreadsheet could not be read", err)
	}
	return rows, nil
}
