package insider

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// csvHeader lists the nine output columns in the order downstream
// processing expects them.
var csvHeader = []string{
	"issuerCik",
	"issuerName",
	"issuerTradingSymbol",
	"securityTitle",
	"transactionDate",
	"transactionShares",
	"transactionPricePerShare",
	"directOrIndirectOwnership",
	"derivative_type",
}

// ResultTable accumulates transaction records across all entities and
// filings of one crawl run. The orchestrator owns the table; workers hand
// back batches that are merged under a single append point, so Append is
// the only concurrency-safe mutation needed.
type ResultTable struct {
	mu      sync.Mutex
	records []TransactionRecord
}

func NewResultTable() *ResultTable {
	return &ResultTable{}
}

// Append merges a batch of records into the table.
func (t *ResultTable) Append(batch ...TransactionRecord) {
	if len(batch) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, batch...)
}

// Records returns a copy of the accumulated rows in processing order.
func (t *ResultTable) Records() []TransactionRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TransactionRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of accumulated rows.
func (t *ResultTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// WriteCSV writes the table with a header row. Nil numeric fields become
// empty cells.
func (t *ResultTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range t.Records() {
		row := []string{
			r.IssuerCIK,
			r.IssuerName,
			r.IssuerTradingSymbol,
			r.SecurityTitle,
			r.TransactionDate,
			formatFloat(r.TransactionShares),
			formatFloat(r.TransactionPricePerShare),
			r.DirectOrIndirectOwnership,
			r.DerivativeType,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
