package insider

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// OwnershipDocument is a parsed Form 4 ownership-report XML filing.
//
// Some filings carry a single transaction element where others carry many;
// decoding both tables into slices normalizes that variability at the
// boundary, so extraction only ever deals with sequences.
type OwnershipDocument struct {
	XMLName            xml.Name            `xml:"ownershipDocument"`
	SchemaVersion      string              `xml:"schemaVersion"`
	DocumentType       string              `xml:"documentType"`
	PeriodOfReport     string              `xml:"periodOfReport"`
	Issuer             Issuer              `xml:"issuer"`
	NonDerivativeTable *NonDerivativeTable `xml:"nonDerivativeTable"`
	DerivativeTable    *DerivativeTable    `xml:"derivativeTable"`
}

// Issuer represents the company whose stock is being traded
type Issuer struct {
	CIK           string `xml:"issuerCik"`
	Name          string `xml:"issuerName"`
	TradingSymbol string `xml:"issuerTradingSymbol"`
}

// NonDerivativeTable contains direct equity transactions
type NonDerivativeTable struct {
	Transactions []Transaction `xml:"nonDerivativeTransaction"`
}

// DerivativeTable contains option-like transactions
type DerivativeTable struct {
	Transactions []Transaction `xml:"derivativeTransaction"`
}

// Transaction is one entry of either table. The two table schemas are
// structurally parallel for every field this crawler consumes, so a single
// type covers both; derivative-only elements are simply not decoded.
type Transaction struct {
	SecurityTitle   string             `xml:"securityTitle>value"`
	TransactionDate string             `xml:"transactionDate>value"`
	Amounts         TransactionAmounts `xml:"transactionAmounts"`
	OwnershipNature OwnershipNature    `xml:"ownershipNature"`
}

type TransactionAmounts struct {
	Shares           Value  `xml:"transactionShares"`
	PricePerShare    Value  `xml:"transactionPricePerShare"`
	AcquiredDisposed string `xml:"transactionAcquiredDisposedCode>value"`
}

type OwnershipNature struct {
	DirectOrIndirect  string `xml:"directOrIndirectOwnership>value"`
	NatureOfOwnership string `xml:"natureOfOwnership>value"`
}

type Value struct {
	Value      string     `xml:"value"`
	FootnoteID FootnoteID `xml:"footnoteId"`
}

type FootnoteID struct {
	ID string `xml:"id,attr"`
}

// Float64 returns the value as float64, handling empty values and footnote refs
func (v Value) Float64() (float64, error) {
	if v.Value == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(v.Value, 64)
}

// ParseOwnership unmarshals Form 4 XML into an OwnershipDocument
func ParseOwnership(data []byte) (*OwnershipDocument, error) {
	var doc OwnershipDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ownership document: %w", err)
	}
	return &doc, nil
}
