package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ExportHeader is the header of a POS export before columns are renamed.
var ExportHeader = []string{"Fecha", "Hora", "Importe", "Usuario", "Forma de Pago"}

// Banner is the title cell the POS writes above the header row.
const Banner = "Listado de Caja - tres60 Kiosco"

// Workbook builds an .xlsx export: banner on row 1, header on row 2, data
// from row 3.
func Workbook(t testing.TB, header []string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Listado"
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	require.NoError(t, f.SetCellValue(sheet, "A1", Banner))

	require.NoError(t, f.SetSheetRow(sheet, "A2", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// CSV joins header and rows with sep, one record per line.
func CSV(sep string, header []string, rows ...[]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, sep))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, sep))
		b.WriteByte('\n')
	}
	return b.String()
}
