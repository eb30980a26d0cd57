package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceFormat identifies how an uploaded point-of-sale export was parsed.
type SourceFormat string

const (
	FormatCSV  SourceFormat = "csv"
	FormatXLSX SourceFormat = "xlsx"
	FormatXLS  SourceFormat = "xls"
)

// Transaction is one sale line of a point-of-sale export after column
// normalization. Hour is nil when the time cell could not be parsed.
type Transaction struct {
	Row           int             `json:"row"`
	Date          time.Time       `json:"date"`
	Hour          *int            `json:"hour"`
	DayOfMonth    int             `json:"day_of_month"`
	Weekday       string          `json:"weekday"`
	Amount        decimal.Decimal `json:"amount"`
	Employee      string          `json:"employee"`
	PaymentMethod string          `json:"payment_method"`
	Product       string          `json:"product,omitempty"`
}

// HasHour reports whether the transaction carries a known hour of day.
func (t Transaction) HasHour() bool {
	return t.Hour != nil
}

// TransactionTable is the in-memory table built from a single upload.
// It is never mutated after the loader returns it.
type TransactionTable struct {
	SourceName    string        `json:"source_name"`
	Format        SourceFormat  `json:"format"`
	Columns       []string      `json:"columns"`
	ProductColumn string        `json:"product_column,omitempty"`
	Transactions  []Transaction `json:"transactions"`
	UnknownHours  int           `json:"unknown_hours"`
	LoadedAt      time.Time     `json:"loaded_at"`
}

// HasProductColumn reports whether a product or description column was found.
func (t *TransactionTable) HasProductColumn() bool {
	return t.ProductColumn != ""
}

// Len returns the number of transactions in the table.
func (t *TransactionTable) Len() int {
	return len(t.Transactions)
}

// Total sums Amount over every transaction.
func (t *TransactionTable) Total() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range t.Transactions {
		total = total.Add(tx.Amount)
	}
	return total
}
