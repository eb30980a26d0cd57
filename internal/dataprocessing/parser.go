package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"salesdash/pkg/contracts/domain"
)

// Canonical column names after renaming.
const (
	ColumnDate     = "Fecha"
	ColumnTime     = "Hora"
	ColumnTotal    = "Total"
	ColumnEmployee = "Empleado"
	ColumnPayment  = "Forma de Pago"
)

// columnRenames is matched exactly and case-sensitively against header cells.
var columnRenames = map[string]string{
	"Importe": ColumnTotal,
	"Usuario": ColumnEmployee,
}

var requiredColumns = []string{ColumnDate, ColumnTime, ColumnTotal, ColumnEmployee, ColumnPayment}

// productColumnNames are compared case-insensitively.
var productColumnNames = []string{"producto", "descripción"}

// LoadOptions controls value coercion.
type LoadOptions struct {
	DateLayouts []string
	TimeLayouts []string
}

// DefaultLoadOptions returns day-first date handling.
func DefaultLoadOptions() LoadOptions {
	return NewLoadOptions(true)
}

// NewLoadOptions builds the layout lists for dd/mm (dayFirst) or mm/dd input.
func NewLoadOptions(dayFirst bool) LoadOptions {
	return LoadOptions{
		DateLayouts: DateLayouts(dayFirst),
		TimeLayouts: TimeLayouts(dayFirst),
	}
}

// Loader parses uploads into transaction tables.
type Loader struct {
	opts   LoadOptions
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(opts LoadOptions, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.DateLayouts) == 0 || len(opts.TimeLayouts) == 0 {
		def := DefaultLoadOptions()
		if len(opts.DateLayouts) == 0 {
			opts.DateLayouts = def.DateLayouts
		}
		if len(opts.TimeLayouts) == 0 {
			opts.TimeLayouts = def.TimeLayouts
		}
	}
	return &Loader{
		opts:   opts,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// DetectFormat maps a filename extension to a source format.
func DetectFormat(filename string) (domain.SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return domain.FormatXLSX, nil
	case ".xls":
		return domain.FormatXLS, nil
	case ".csv":
		return domain.FormatCSV, nil
	default:
		return "", &FormatError{Filename: filename, Reason: ErrUnsupportedFormat}
	}
}

// sheet is the raw grid read from a source before coercion.
type sheet struct {
	header []string
	rows   [][]string
	// firstRow is the 1-based physical row number of rows[0].
	firstRow int
	// spreadsheet cells may hold Excel serial numbers for dates and times.
	spreadsheet bool
}

// Load reads r according to the extension of filename and returns the
// normalized table.
func (l *Loader) Load(ctx context.Context, r io.Reader, filename string) (*domain.TransactionTable, error) {
	start := time.Now()

	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	l.logger.InfoContext(ctx, "loading sales export",
		slog.String("filename", filename),
		slog.String("format", string(format)),
		slog.Int("bytes", len(data)))

	var raw *sheet
	switch format {
	case domain.FormatXLSX:
		raw, err = readXLSX(data)
	case domain.FormatXLS:
		raw, err = readXLS(data)
	default:
		raw, err = readCSV(data)
	}
	if err != nil {
		var ferr *FormatError
		if errors.As(err, &ferr) {
			ferr.Filename = filename
			return nil, ferr
		}
		return nil, &FormatError{Filename: filename, Reason: ErrUnreadable, Cause: err}
	}

	table, err := l.buildTable(ctx, raw)
	if err != nil {
		var ferr *FormatError
		if errors.As(err, &ferr) {
			ferr.Filename = filename
		}
		l.logger.WarnContext(ctx, "sales export rejected",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return nil, err
	}
	table.SourceName = filename
	table.Format = format
	table.LoadedAt = time.Now()

	l.logger.InfoContext(ctx, "sales export loaded",
		slog.String("filename", filename),
		slog.Int("rows", table.Len()),
		slog.Int("unknown_hours", table.UnknownHours),
		slog.String("product_column", table.ProductColumn),
		slog.Duration("duration", time.Since(start)))

	return table, nil
}

func (l *Loader) buildTable(ctx context.Context, raw *sheet) (*domain.TransactionTable, error) {
	columns := normalizeHeader(raw.header)
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatError{Reason: ErrMissingColumns, Missing: missing}
	}

	table := &domain.TransactionTable{
		Columns:       columns,
		ProductColumn: findProductColumn(columns),
	}
	productIdx := -1
	if table.ProductColumn != "" {
		productIdx = index[table.ProductColumn]
	}

	for i, row := range raw.rows {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if blankRow(row) {
			continue
		}
		physical := raw.firstRow + i

		dateRaw := cell(row, index[ColumnDate])
		date, err := parseDate(dateRaw, raw.spreadsheet, l.opts.DateLayouts)
		if err != nil {
			return nil, &ParseError{Row: physical, Column: ColumnDate, Value: dateRaw, Err: err}
		}

		amountRaw := cell(row, index[ColumnTotal])
		amount, err := parseAmount(amountRaw)
		if err != nil {
			return nil, &ParseError{Row: physical, Column: ColumnTotal, Value: amountRaw, Err: err}
		}

		weekday, err := WeekdayLabel(date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", physical, err)
		}

		tx := domain.Transaction{
			Row:           physical,
			Date:          date,
			DayOfMonth:    date.Day(),
			Weekday:       weekday,
			Amount:        amount,
			Employee:      strings.TrimSpace(cell(row, index[ColumnEmployee])),
			PaymentMethod: strings.TrimSpace(cell(row, index[ColumnPayment])),
		}
		if productIdx >= 0 {
			tx.Product = strings.TrimSpace(cell(row, productIdx))
		}

		timeRaw := cell(row, index[ColumnTime])
		if hour, ok := parseHour(timeRaw, raw.spreadsheet, l.opts.TimeLayouts); ok {
			tx.Hour = &hour
		} else {
			table.UnknownHours++
			l.logger.DebugContext(ctx, "unknown hour",
				slog.Int("row", physical),
				slog.String("value", timeRaw))
		}

		table.Transactions = append(table.Transactions, tx)
	}

	if table.Len() == 0 {
		return nil, &FormatError{Reason: ErrNoRows}
	}
	return table, nil
}

// normalizeHeader trims header cells and applies the exact rename table.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if renamed, ok := columnRenames[name]; ok {
			name = renamed
		}
		columns[i] = name
	}
	return columns
}

// findProductColumn returns the first column named producto or descripción,
// ignoring case.
func findProductColumn(columns []string) string {
	for _, c := range columns {
		for _, candidate := range productColumnNames {
			if strings.EqualFold(c, candidate) {
				return c
			}
		}
	}
	return ""
}

func readXLSX(data []byte) (*sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Reason: ErrNoRows}
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return spreadsheetGrid(rows)
}

func readXLS(data []byte) (raw *sheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw, err = nil, fmt.Errorf("malformed legacy workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
	}
	// OpenReader returns a nil workbook for containers without a Workbook stream.
	if wb == nil {
		return nil, &FormatError{Reason: ErrUnreadable}
	}
	if wb.NumSheets() == 0 {
		return nil, &FormatError{Reason: ErrNoRows}
	}
	first := wb.GetSheet(0)
	if first == nil || first.MaxRow == 0 {
		return nil, &FormatError{Reason: ErrNoRows}
	}

	generalFormats(wb)
	return spreadsheetGrid(wb.ReadAllCells(int(first.MaxRow) + 1))
}

// generalFormats resets every cell style to the General number format. The
// reader renders date and custom styled numbers as truncated text, so with
// General they come back as the stored serials and amounts.
func generalFormats(wb *xls.WorkBook) {
	for _, xf := range wb.Xfs {
		switch style := xf.(type) {
		case *xls.Xf8:
			style.Format = 0
		case *xls.Xf5:
			style.Format = 0
		}
	}
}

// spreadsheetGrid drops the banner row and uses the second row as header.
func spreadsheetGrid(rows [][]string) (*sheet, error) {
	if len(rows) < 2 {
		return nil, &FormatError{Reason: ErrNoRows}
	}
	return &sheet{
		header:      rows[1],
		rows:        rows[2:],
		firstRow:    3,
		spreadsheet: true,
	}, nil
}

func readCSV(data []byte) (*sheet, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited text: %w", err)
	}
	if len(records) == 0 {
		return nil, &FormatError{Reason: ErrNoRows}
	}
	return &sheet{
		header:   records[0],
		rows:     records[1:],
		firstRow: 2,
	}, nil
}

// sniffDelimiter picks the most frequent of , ; and tab on the header line.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte(","))
	for _, candidate := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
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
