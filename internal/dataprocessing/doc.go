// Package dataprocessing turns an uploaded point-of-sale export into a
// domain.TransactionTable.
//
// # Formats
//
// The declared file extension selects the reader:
//
//	.xlsx, .xlsm  excelize, first sheet, header on the second physical row
//	.xls          legacy BIFF workbook, same row layout as .xlsx
//	.csv          delimited text, header on the first row (, ; or tab)
//
// # Normalization
//
// Two columns are renamed by exact, case-sensitive match ("Importe" becomes
// "Total", "Usuario" becomes "Empleado"). The columns Fecha, Hora, Total,
// Empleado and Forma de Pago must then be present.
//
// Fecha must parse for every row or the whole load fails with a ParseError.
// Hora is permissive: a value that does not parse leaves the row without an
// hour instead of failing. Each row also gets its day of month and its
// Spanish weekday label.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(dataprocessing.DefaultLoadOptions(), logger)
//	table, err := loader.Load(ctx, file, "Listado_Caja.xlsx")
//	if err != nil {
//	    var perr *dataprocessing.ParseError
//	    if errors.As(err, &perr) { ... }
//	}
package dataprocessing
