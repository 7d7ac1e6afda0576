package insider_test

import (
	"strings"
	"sync"
	"testing"

	insider "github.com/RxDataLab/go-insider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultTable_WriteCSV(t *testing.T) {
	table := insider.NewResultTable()
	table.Append(
		insider.TransactionRecord{
			IssuerCIK:                 "0000123456",
			IssuerName:                "ABC Corp",
			IssuerTradingSymbol:       "ABC",
			SecurityTitle:             "Common Stock",
			TransactionDate:           "2023-05-01",
			TransactionShares:         fptr(100),
			TransactionPricePerShare:  fptr(12.50),
			DirectOrIndirectOwnership: "D",
			DerivativeType:            "non-derivative",
		},
		insider.TransactionRecord{
			IssuerCIK:                 "0000123456",
			IssuerName:                "ABC Corp",
			IssuerTradingSymbol:       "ABC",
			SecurityTitle:             "Restricted Common Stock Units",
			TransactionDate:           "2023-05-04",
			TransactionShares:         fptr(75),
			TransactionPricePerShare:  nil,
			DirectOrIndirectOwnership: "I",
			DerivativeType:            "derivative",
		},
	)

	var buf strings.Builder
	require.NoError(t, table.WriteCSV(&buf))

	want := "issuerCik,issuerName,issuerTradingSymbol,securityTitle,transactionDate,transactionShares,transactionPricePerShare,directOrIndirectOwnership,derivative_type\n" +
		"0000123456,ABC Corp,ABC,Common Stock,2023-05-01,100,12.5,D,non-derivative\n" +
		"0000123456,ABC Corp,ABC,Restricted Common Stock Units,2023-05-04,75,,I,derivative\n"
	assert.Equal(t, want, buf.String())
}

func TestResultTable_EmptyCSVHasHeader(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, insider.NewResultTable().WriteCSV(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "issuerCik,"))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestResultTable_RecordsReturnsCopy(t *testing.T) {
	table := insider.NewResultTable()
	table.Append(insider.TransactionRecord{IssuerTradingSymbol: "ABC"})

	records := table.Records()
	records[0].IssuerTradingSymbol = "mutated"

	assert.Equal(t, "ABC", table.Records()[0].IssuerTradingSymbol)
}

func TestResultTable_ConcurrentAppend(t *testing.T) {
	table := insider.NewResultTable()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table.Append(insider.TransactionRecord{DerivativeType: "non-derivative"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, table.Len())
}
