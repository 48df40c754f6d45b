package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const transactionsCSV = ` CIF ;TRX_DATE; Category_By_System ;subheader;detail_information;notes;amount;debit_credit
123456;2024-01-05;2;STARBUCKS;card payment;coffee;50000;D
123456;2024-02-10;1;INDOMARET;card payment;groceries;30000;D
789;2024-03-01;1;ALFAMART;cash;snacks;15000;D
`

func newTestSource(t *testing.T, transactions, profiles string) *CSVSource {
	t.Helper()
	return NewCSVSource(
		writeFile(t, "transactions.csv", transactions),
		writeFile(t, "profiles.csv", profiles),
		zap.NewNop(),
	)
}

func TestTransactionsNormalizesHeaders(t *testing.T) {
	source := newTestSource(t, transactionsCSV, "")

	led, err := source.Transactions(context.Background())
	if err != nil {
		t.Fatalf("Transactions returned error: %v", err)
	}

	if len(led.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(led.Rows))
	}
	for _, column := range []string{ColumnCIF, ColumnDate, ColumnCategory, ColumnSubheader} {
		if !led.Has(column) {
			t.Errorf("column %q not detected after normalization", column)
		}
	}

	first := led.Rows[0]
	if first.CIF != "123456" || first.CategoryID != 2 || first.Subheader != "STARBUCKS" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if !first.Amount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Amount = %s, want 50000", first.Amount)
	}
	if first.Date.Format("2006-01-02") != "2024-01-05" {
		t.Errorf("Date = %v, want 2024-01-05", first.Date)
	}
}

func TestTransactionsMissingDateColumnTolerated(t *testing.T) {
	source := newTestSource(t, `cif;subheader;notes;amount;category_by_system;debit_credit
123456;SHOP;note;100;1;D
`, "")

	led, err := source.Transactions(context.Background())
	if err != nil {
		t.Fatalf("Transactions returned error: %v", err)
	}
	if led.Has(ColumnDate) {
		t.Error("date column reported present")
	}
	if !led.Rows[0].Date.IsZero() {
		t.Errorf("Date = %v, want zero when the column is absent", led.Rows[0].Date)
	}
}

func TestTransactionsLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad date value", "cif;trx_date;amount\n1;not-a-date;100\n"},
		{"bad amount value", "cif;trx_date;amount\n1;2024-01-01;lots\n"},
		{"bad category value", "cif;trx_date;category_by_system\n1;2024-01-01;two\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newTestSource(t, tt.content, "")
			_, err := source.Transactions(context.Background())

			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Errorf("error = %v, want a *LoadError", err)
			}
		})
	}
}

func TestTransactionsUnreadableFile(t *testing.T) {
	source := NewCSVSource("does/not/exist.csv", "", zap.NewNop())

	_, err := source.Transactions(context.Background())

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("error = %v, want a *LoadError", err)
	}
}

func TestFilterByCustomer(t *testing.T) {
	source := newTestSource(t, transactionsCSV, "")
	led, err := source.Transactions(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	mine := led.FilterByCustomer("123456")
	if len(mine.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(mine.Rows))
	}

	// A numeric-looking CIF still matches as text.
	other := led.FilterByCustomer("789")
	if len(other.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(other.Rows))
	}

	// No match is a valid empty result, not an error.
	none := led.FilterByCustomer("000000")
	if len(none.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(none.Rows))
	}
}

func TestCategoryIDs(t *testing.T) {
	source := newTestSource(t, transactionsCSV, "")
	led, err := source.Transactions(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ids := led.CategoryIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("CategoryIDs = %v, want [1 2]", ids)
	}
}

func TestProfileLookup(t *testing.T) {
	profiles := `cif;customer_name;preferences
123456;Budi Santoso;"{""language"": ""id""}"
222;Jane Doe;"{""language"": ""not a tag!""}"
333;Empty Prefs;
`

	tests := []struct {
		name         string
		cif          string
		wantName     string
		wantLanguage string
	}{
		{"found with language", "123456", "Budi Santoso", "id"},
		{"malformed language falls back", "222", "Jane Doe", "en"},
		{"empty preferences falls back", "333", "Empty Prefs", "en"},
		{"missing CIF uses defaults", "999", "Valued Customer", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newTestSource(t, transactionsCSV, profiles)
			profile, err := source.Profile(context.Background(), tt.cif)
			if err != nil {
				t.Fatalf("Profile returned error: %v", err)
			}
			if profile.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", profile.Name, tt.wantName)
			}
			if profile.Language != tt.wantLanguage {
				t.Errorf("Language = %q, want %q", profile.Language, tt.wantLanguage)
			}
		})
	}
}

func TestProfileUnreadableSourceUsesDefaults(t *testing.T) {
	source := NewCSVSource("", "missing.csv", zap.NewNop())

	profile, err := source.Profile(context.Background(), "1")
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if profile.Name != "Valued Customer" || profile.Language != "en" {
		t.Errorf("profile = %+v, want defaults", profile)
	}
}
