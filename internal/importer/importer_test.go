package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"
	"ledgerline/bankimport/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statementCSV = []byte(`date,desc,amount
2024-01-10,Coffee Shop,-4.50
2024-01-10,Salary,2500.00
invalid-date,Bad Row,10.00
`)

func csvProfile(mutate func(*config.ImportProfile)) *config.ImportProfile {
	profile := &config.ImportProfile{
		Format: string(models.FormatCSV),
		CSV: &config.CSVOptions{
			Columns: config.ColumnMapping{
				Date:        "date",
				Description: "desc",
				Amount:      "amount",
			},
			DatePatterns: []string{"yyyy-MM-dd"},
		},
		Defaults: config.Defaults{CategoryID: "cat-42"},
	}
	if mutate != nil {
		mutate(profile)
	}
	return profile
}

func newTestImporter(memStore *store.MemoryStore) *Importer {
	return New(memStore, &logging.MockLogger{})
}

func TestImport(t *testing.T) {
	memStore := store.NewMemoryStore()
	result, err := newTestImporter(memStore).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.csv",
		Data:     statementCSV,
		Profile:  csvProfile(nil),
	})
	require.NoError(t, err)

	assert.False(t, result.DryRun)
	assert.Equal(t, 3, result.TotalEntries)
	assert.Equal(t, 2, result.ProcessedEntries)
	assert.Equal(t, 1, result.IgnoredEntries)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Equal(t, 0, result.DuplicateCount)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, 3, result.Issues[0].Line)
	assert.Equal(t, models.IssueParsing, result.Issues[0].Kind)
	assert.Contains(t, result.Issues[0].Message, "date")

	require.Len(t, result.Created, 2)
	coffee := result.Created[0]
	assert.Equal(t, "user-1", coffee.UserID)
	assert.Equal(t, "Coffee Shop", coffee.Description)
	assert.Equal(t, models.TypeExpense, coffee.Type)
	assert.True(t, coffee.Amount.Equal(decimal.RequireFromString("4.5")))
	assert.Equal(t, "cat-42", coffee.CategoryID)
	assert.NotEmpty(t, coffee.ID)

	salary := result.Created[1]
	assert.Equal(t, models.TypeIncome, salary.Type)
	assert.True(t, salary.Amount.Equal(decimal.RequireFromString("2500")))

	assert.Len(t, memStore.Transactions, 2)
}

func TestImportDryRun(t *testing.T) {
	memStore := store.NewMemoryStore()
	result, err := newTestImporter(memStore).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.csv",
		Data:     statementCSV,
		Profile: csvProfile(func(p *config.ImportProfile) {
			p.DryRun = true
		}),
	})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	// Counts mirror a real run, but nothing is persisted or returned.
	assert.Equal(t, 2, result.CreatedCount)
	assert.Empty(t, result.Created)
	assert.Empty(t, memStore.Transactions)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 3, result.Issues[0].Line)
}

func TestImportIgnoredDescriptions(t *testing.T) {
	memStore := store.NewMemoryStore()
	result, err := newTestImporter(memStore).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.csv",
		Data:     statementCSV,
		Profile: csvProfile(func(p *config.ImportProfile) {
			p.IgnoredDescriptions = []string{"  COFFEE SHOP "}
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalEntries)
	assert.Equal(t, 1, result.ProcessedEntries)
	assert.Equal(t, 2, result.IgnoredEntries)
	assert.Equal(t, 1, result.CreatedCount)

	require.Len(t, result.Issues, 2)
	assert.Equal(t, models.IssueRejected, result.Issues[0].Kind)
	assert.Contains(t, result.Issues[0].Message, "Coffee Shop")
}

func TestImportDuplicateSkip(t *testing.T) {
	memStore := store.NewMemoryStore(models.Transaction{
		UserID:      "user-1",
		Date:        time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC),
		Description: "Coffee Shop",
		Amount:      decimal.RequireFromString("4.50"),
		Type:        models.TypeExpense,
		CategoryID:  "cat-42",
	})

	result, err := newTestImporter(memStore).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.csv",
		Data:     statementCSV,
		Profile:  csvProfile(nil),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.DuplicateCount)
	assert.Equal(t, 1, result.CreatedCount)
	assert.Len(t, memStore.Transactions, 2)

	require.Len(t, result.Issues, 2)
	assert.Equal(t, 1, result.Issues[0].Line)
	assert.Equal(t, models.IssueDuplicate, result.Issues[0].Kind)
}

func TestImportDuplicateAllow(t *testing.T) {
	memStore := store.NewMemoryStore(models.Transaction{
		UserID:      "user-1",
		Date:        time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC),
		Description: "Coffee Shop",
		Amount:      decimal.RequireFromString("4.50"),
		Type:        models.TypeExpense,
		CategoryID:  "cat-42",
	})

	result, err := newTestImporter(memStore).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.csv",
		Data:     statementCSV,
		Profile: csvProfile(func(p *config.ImportProfile) {
			p.DuplicatePolicy = string(models.DuplicateAllow)
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.DuplicateCount)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Len(t, memStore.Transactions, 3)
}

func TestImportClassificationFailureIsPerRecord(t *testing.T) {
	memStore := store.NewMemoryStore()
	result, err := newTestImporter(memStore).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.csv",
		Data: []byte(`date,desc,amount,category
2024-01-10,Coffee Shop,-4.50,Eating Out
2024-01-10,Mystery,-1.00,Unknown
`),
		Profile: csvProfile(func(p *config.ImportProfile) {
			p.CSV.Columns.Category = "category"
			p.Defaults.CategoryID = ""
			p.Mappings.Category = map[string]string{"Eating Out": "cat-7"}
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ProcessedEntries)
	assert.Equal(t, 1, result.CreatedCount)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 2, result.Issues[0].Line)
	assert.Equal(t, models.IssueParsing, result.Issues[0].Kind)
	assert.Contains(t, result.Issues[0].Message, "category")
}

func TestImportPersistenceFailureIsPerRecord(t *testing.T) {
	memStore := store.NewMemoryStore()
	memStore.CreateError = errors.New("disk full")

	result, err := newTestImporter(memStore).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.csv",
		Data:     statementCSV,
		Profile:  csvProfile(nil),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ProcessedEntries)
	assert.Equal(t, 0, result.CreatedCount)
	// One parse failure plus two persistence failures.
	assert.Len(t, result.Issues, 3)
}

func TestImportUnresolvableFormatIsFatal(t *testing.T) {
	_, err := newTestImporter(store.NewMemoryStore()).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.pdf",
		Data:     statementCSV,
		Profile: csvProfile(func(p *config.ImportProfile) {
			p.Format = ""
		}),
	})
	require.Error(t, err)

	var configErr *parsererror.ConfigError
	assert.ErrorAs(t, err, &configErr)
}

func TestImportInvalidProfileIsFatal(t *testing.T) {
	_, err := newTestImporter(store.NewMemoryStore()).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.csv",
		Data:     statementCSV,
		Profile: csvProfile(func(p *config.ImportProfile) {
			p.Defaults.CategoryID = ""
		}),
	})
	require.Error(t, err)

	var configErr *parsererror.ConfigError
	assert.ErrorAs(t, err, &configErr)
}

func TestImportOFX(t *testing.T) {
	data := []byte(`<OFX>
<STMTTRN>
<TRNTYPE>POS
<DTPOSTED>20240110
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
</STMTTRN>
</OFX>
`)

	memStore := store.NewMemoryStore()
	result, err := newTestImporter(memStore).Import(context.Background(), Request{
		UserID:   "user-1",
		FileName: "statement.ofx",
		Data:     data,
		Profile: &config.ImportProfile{
			Defaults: config.Defaults{CategoryID: "cat-42"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalEntries)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Empty(t, result.Issues)

	require.Len(t, result.Created, 2)
	assert.Equal(t, models.TypeExpense, result.Created[0].Type)
	assert.Equal(t, "card", result.Created[0].Source)
	assert.Equal(t, "tx-1", result.Created[0].ExternalID)
	assert.Equal(t, models.TypeIncome, result.Created[1].Type)
}

func TestImportReimportSkipsEverything(t *testing.T) {
	memStore := store.NewMemoryStore()
	imp := newTestImporter(memStore)
	req := Request{
		UserID:   "user-1",
		FileName: "statement.csv",
		Data:     statementCSV,
		Profile:  csvProfile(nil),
	}

	first, err := imp.Import(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 2, first.CreatedCount)

	second, err := imp.Import(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.CreatedCount)
	assert.Equal(t, 2, second.DuplicateCount)
	assert.Len(t, memStore.Transactions, 2)
}
