// Package statement turns uploaded bank statements into raw line records.
package statement

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/spendwise/backend/internal/model"
)

const op = "statement.Parse"

// Header aliases, compared after normalizeHeader.
var (
	dateHeaders        = []string{"trans date", "transaction date", "date", "posting date", "post date"}
	descriptionHeaders = []string{"description", "details", "merchant"}
	amountHeaders      = []string{"amount", "transaction amount"}
)

var zipMagic = []byte("PK\x03\x04")

// Parse decodes a CSV or XLSX statement. The format is chosen from the
// filename extension, falling back to content sniffing. Rows keep their
// input order; blank rows are skipped.
func Parse(data []byte, filename string) ([]model.RawLine, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, model.Errorf(model.ErrMalformedInput, op, "statement is empty")
	}

	var (
		rows [][]string
		err  error
	)
	if isSpreadsheet(data, filename) {
		rows, err = readXLSX(data)
	} else {
		var text []byte
		text, err = decodeText(data)
		if err == nil {
			rows, err = readCSV(text)
		}
	}
	if err != nil {
		return nil, err
	}

	return linesFromRows(rows)
}

func isSpreadsheet(data []byte, filename string) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return true
	}
	return bytes.HasPrefix(data, zipMagic)
}

// decodeText returns UTF-8 text with any byte order mark removed. UTF-16
// input carrying a BOM is transcoded; anything else must already be UTF-8.
func decodeText(data []byte) ([]byte, error) {
	utf16BOM := bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
	if !utf16BOM && !utf8.Valid(data) {
		return nil, model.Errorf(model.ErrMalformedInput, op, "statement is not valid UTF-8 text")
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, model.NewError(model.ErrMalformedInput, op, "statement could not be decoded", err)
	}
	return out, nil
}

type columns struct {
	date, description, amount int
}

func findColumns(header []string) (columns, error) {
	cols := columns{date: -1, description: -1, amount: -1}
	for i, h := range header {
		name := normalizeHeader(h)
		switch {
		case cols.date < 0 && contains(dateHeaders, name):
			cols.date = i
		case cols.description < 0 && contains(descriptionHeaders, name):
			cols.description = i
		case cols.amount < 0 && contains(amountHeaders, name):
			cols.amount = i
		}
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "transaction date")
	}
	if cols.description < 0 {
		missing = append(missing, "description")
	}
	if cols.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return cols, model.Errorf(model.ErrMalformedInput, op, "missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func linesFromRows(rows [][]string) ([]model.RawLine, error) {
	headerIdx := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, model.Errorf(model.ErrMalformedInput, op, "statement has no header row")
	}

	cols, err := findColumns(rows[headerIdx])
	if err != nil {
		return nil, err
	}

	var lines []model.RawLine
	for i, row := range rows[headerIdx+1:] {
		if blankRow(row) {
			continue
		}
		rowNum := headerIdx + i + 2 // 1-based, counting the header

		date := strings.TrimSpace(cell(row, cols.date))
		if date == "" {
			return nil, model.Errorf(model.ErrMalformedInput, op, "row %d: missing transaction date", rowNum)
		}
		amount, err := ParseAmount(cell(row, cols.amount))
		if err != nil {
			return nil, model.NewError(model.ErrMalformedInput, op, fmt.Sprintf("row %d: invalid amount", rowNum), err)
		}

		lines = append(lines, model.RawLine{
			Date:        date,
			Description: strings.Join(strings.Fields(cell(row, cols.description)), " "),
			Amount:      amount,
		})
	}

	if len(lines) == 0 {
		return nil, model.Errorf(model.ErrMalformedInput, op, "statement contains no transactions")
	}
	return lines, nil
}

// ParseAmount accepts plain decimals plus currency symbols, thousands
// separators and accounting-style parentheses for negatives.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "").Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
