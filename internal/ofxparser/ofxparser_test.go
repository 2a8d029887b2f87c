package ofxparser

import (
	"testing"
	"time"

	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatement = `OFXHEADER:100
DATA:OFXSGML

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>POS
<DTPOSTED>20240110103000[-5:EST]
<TRNAMT>-4.50
<FITID>tx-1
<NAME>Coffee Shop
</STMTTRN>
<STMTTRN>
<TRNTYPE>DIRECTDEP
<DTPOSTED>20240125
<TRNAMT>2500.00
<FITID>tx-2
<NAME>ACME Corp
<MEMO>January payroll
</STMTTRN>
</BANKTRANLIST>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestParse(t *testing.T) {
	adapter := NewAdapter(&logging.MockLogger{})
	entries, issues, err := adapter.Parse([]byte(sampleStatement), nil)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, "tx-1", first.ExternalID)
	assert.Equal(t, "Coffee Shop", first.Description)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("-4.5")))
	assert.Equal(t, models.TypeExpense, first.DetectedType)
	assert.Equal(t, "card", first.DetectedSource)
	assert.Equal(t, time.Date(2024, 1, 10, 10, 30, 0, 0, time.UTC), first.Date)

	second := entries[1]
	assert.Equal(t, 2, second.Line)
	assert.Equal(t, "ACME Corp January payroll", second.Description)
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("2500")))
	assert.Equal(t, models.TypeIncome, second.DetectedType)
	assert.Empty(t, second.DetectedSource)
	assert.Equal(t, time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC), second.Date)
}

func TestParseNoBlocks(t *testing.T) {
	adapter := NewAdapter(&logging.MockLogger{})
	_, _, err := adapter.Parse([]byte("OFXHEADER:100\n<OFX>\n</OFX>\n"), nil)
	require.Error(t, err)

	var parseErr *parsererror.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseMalformedBlock(t *testing.T) {
	data := []byte(`<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>not-a-date
<TRNAMT>-10.00
<FITID>bad-1
<NAME>Broken
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240111
<TRNAMT>-10.00
<FITID>ok-1
<NAME>Fine
</STMTTRN>
`)

	adapter := NewAdapter(&logging.MockLogger{})
	entries, issues, err := adapter.Parse(data, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, issues, 1)

	assert.Equal(t, 1, issues[0].Line)
	assert.Equal(t, "bad-1", issues[0].ExternalID)
	assert.Equal(t, models.IssueParsing, issues[0].Kind)
	assert.Contains(t, issues[0].Message, "DTPOSTED")

	assert.Equal(t, 2, entries[0].Line)
	assert.Equal(t, "ok-1", entries[0].ExternalID)
}

func TestParseUnclosedFinalBlock(t *testing.T) {
	data := []byte(`<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240112
<TRNAMT>-42.00
<FITID>chk-9
<NAME>Rent
`)

	entries, issues, err := NewAdapter(&logging.MockLogger{}).Parse(data, nil)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, entries, 1)
	assert.Equal(t, "check", entries[0].DetectedSource)
}

func TestParseUnknownTrnType(t *testing.T) {
	data := []byte(`<STMTTRN>
<TRNTYPE>OTHER
<DTPOSTED>20240113
<TRNAMT>7.25
<FITID>oth-1
<NAME>Mystery
</STMTTRN>
`)

	entries, _, err := NewAdapter(&logging.MockLogger{}).Parse(data, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].DetectedType)
	assert.Empty(t, entries[0].DetectedSource)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"20240105", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"20240105103000", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
		{"20240105103000.500", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
		{"20240105103000[-5:EST]", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		parsed, err := parseDate(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, parsed, "input %q", tt.input)
	}

	_, err := parseDate("2024-01-05")
	assert.Error(t, err)
}
