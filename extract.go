package insider

import "strings"

// TableKind selects which transaction table of an ownership document to
// extract from.
type TableKind string

const (
	TableDerivative    TableKind = "derivativeTable"
	TableNonDerivative TableKind = "nonDerivativeTable"
)

// Tag returns the derivative-type label recorded on extracted rows.
func (k TableKind) Tag() string {
	if k == TableDerivative {
		return "derivative"
	}
	return "non-derivative"
}

// TransactionRecord is one flattened output row of the crawl.
type TransactionRecord struct {
	IssuerCIK                 string   `json:"issuerCik"`
	IssuerName                string   `json:"issuerName"`
	IssuerTradingSymbol       string   `json:"issuerTradingSymbol"`
	SecurityTitle             string   `json:"securityTitle"`
	TransactionDate           string   `json:"transactionDate"`
	TransactionShares         *float64 `json:"transactionShares"`
	TransactionPricePerShare  *float64 `json:"transactionPricePerShare"` // nil when absent or malformed
	DirectOrIndirectOwnership string   `json:"directOrIndirectOwnership"`
	DerivativeType            string   `json:"derivative_type"` // "derivative" or "non-derivative"
}

// ExtractTransactions flattens one table of an ownership document into
// records. A document without the requested table, or a table without
// transactions, yields no records and no error.
//
// Only entries for the tracked security make it through: the security title
// must contain "Common Stock" and the filing's issuer trading symbol must
// equal entityKey exactly. Price per share degrades to nil when the source
// field is missing or unparseable, never to a fabricated value.
func ExtractTransactions(doc *OwnershipDocument, kind TableKind, entityKey string) []TransactionRecord {
	var txns []Transaction
	switch kind {
	case TableDerivative:
		if doc.DerivativeTable == nil {
			return nil
		}
		txns = doc.DerivativeTable.Transactions
	case TableNonDerivative:
		if doc.NonDerivativeTable == nil {
			return nil
		}
		txns = doc.NonDerivativeTable.Transactions
	default:
		return nil
	}

	var records []TransactionRecord
	for _, txn := range txns {
		if !strings.Contains(txn.SecurityTitle, "Common Stock") {
			continue
		}
		if doc.Issuer.TradingSymbol != entityKey {
			continue
		}

		records = append(records, TransactionRecord{
			IssuerCIK:                 doc.Issuer.CIK,
			IssuerName:                doc.Issuer.Name,
			IssuerTradingSymbol:       doc.Issuer.TradingSymbol,
			SecurityTitle:             txn.SecurityTitle,
			TransactionDate:           txn.TransactionDate,
			TransactionShares:         floatOrNil(txn.Amounts.Shares),
			TransactionPricePerShare:  floatOrNil(txn.Amounts.PricePerShare),
			DirectOrIndirectOwnership: txn.OwnershipNature.DirectOrIndirect,
			DerivativeType:            kind.Tag(),
		})
	}
	return records
}

// ExtractAll runs extraction for both table kinds and concatenates the
// results, derivative entries first.
func ExtractAll(doc *OwnershipDocument, entityKey string) []TransactionRecord {
	records := ExtractTransactions(doc, TableDerivative, entityKey)
	return append(records, ExtractTransactions(doc, TableNonDerivative, entityKey)...)
}

func floatOrNil(v Value) *float64 {
	f, err := v.Float64()
	if err != nil {
		return nil
	}
	return &f
}
