package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spendwise/backend/internal/model"
)

func TestParseCSV(t *testing.T) {
	data := []byte("Trans. Date,Post Date,Description,Amount\n" +
		"2024-01-05,2024-01-06,STARBUCKS #123,-5.75\n" +
		"\n" +
		"2024-01-06,2024-01-07,SALARY   DEPOSIT,\"2,000.00\"\n")

	lines, err := Parse(data, "statement.csv")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "2024-01-05", lines[0].Date)
	assert.Equal(t, "STARBUCKS #123", lines[0].Description)
	assert.Equal(t, "-5.75", lines[0].Amount.String())

	assert.Equal(t, "2024-01-06", lines[1].Date)
	assert.Equal(t, "SALARY DEPOSIT", lines[1].Description)
	assert.Equal(t, "2000", lines[1].Amount.String())
}

func TestParseCSVWithBOMAndAliases(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Transaction Date,Details,Amount\n01/15/2024,COSTCO,($120.10)\n")...)

	lines, err := Parse(data, "export.csv")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "01/15/2024", lines[0].Date)
	assert.Equal(t, "COSTCO", lines[0].Description)
	assert.Equal(t, "-120.1", lines[0].Amount.String())
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		errContains string
	}{
		{"empty", []byte("   \n"), "empty"},
		{"missing amount column", []byte("Date,Description\n2024-01-01,COFFEE\n"), "amount"},
		{"missing all columns", []byte("foo,bar\n1,2\n"), "transaction date, description, amount"},
		{"header only", []byte("Date,Description,Amount\n"), "no transactions"},
		{"bad amount", []byte("Date,Description,Amount\n2024-01-01,COFFEE,abc\n"), "row 2"},
		{"missing date", []byte("Date,Description,Amount\n,COFFEE,1.00\n"), "missing transaction date"},
		{"not utf8", []byte{'D', 'a', 't', 'e', 0xff, 0xfe, 0xfd, '\n'}, "UTF-8"},
		{"bad quoting", []byte("Date,Description,Amount\n2024-01-01,\"COFFEE,1.00\n"), "CSV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Parse(tt.data, "s.csv")
			require.Error(t, err)
			assert.Nil(t, lines)
			assert.True(t, model.IsKind(err, model.ErrMalformedInput))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Trans. Date", "Description", "Amount"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2024-01-05", "STARBUCKS #123", "-5.75"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2024-01-06", "SALARY DEPOSIT", "2000.00"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	// Content sniffing picks the spreadsheet reader even without the extension.
	lines, err := Parse(buf.Bytes(), "upload")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "STARBUCKS #123", lines[0].Description)
	assert.Equal(t, "2000", lines[1].Amount.String())
}

func TestParseXLSXCorrupt(t *testing.T) {
	_, err := Parse([]byte("PK\x03\x04not really a zip"), "statement.xlsx")
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrMalformedInput))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"-5.75", "-5.75", false},
		{"$1,234.50", "1234.5", false},
		{"(12.00)", "-12", false},
		{" 42 ", "42", false},
		{"", "", true},
		{"twelve", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
