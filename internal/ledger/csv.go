package ledger

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/sashasgithome/finance-bot-test/internal/models"
)

const (
	defaultCustomerName = "Valued Customer"
	defaultLanguage     = "en"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// CSVSource reads transactions and customer profiles from semicolon
// delimited files. Files are read once per call; callers are expected to
// load at session start and keep the result.
type CSVSource struct {
	transactionsPath string
	profilesPath     string
	logger           *zap.Logger
}

func NewCSVSource(transactionsPath, profilesPath string, logger *zap.Logger) *CSVSource {
	return &CSVSource{
		transactionsPath: transactionsPath,
		profilesPath:     profilesPath,
		logger:           logger,
	}
}

// Transactions reads the whole transaction file. Header names are trimmed
// and lowercased before matching. A missing trx_date column is tolerated
// by leaving dates unparsed; an unreadable file or a malformed amount,
// category or date value fails the load.
func (s *CSVSource) Transactions(ctx context.Context) (*Ledger, error) {
	records, err := readDelimited(s.transactionsPath)
	if err != nil {
		return nil, &LoadError{Source: s.transactionsPath, Err: err}
	}
	if len(records) == 0 {
		return nil, &LoadError{Source: s.transactionsPath, Err: fmt.Errorf("no header row")}
	}

	index := headerIndex(records[0])
	columns := make(map[string]bool, len(index))
	for name := range index {
		columns[name] = true
	}
	if !columns[ColumnDate] {
		s.logger.Warn("transaction source has no date column, dates left unparsed",
			zap.String("path", s.transactionsPath))
	}

	led := &Ledger{Columns: columns}
	for i, record := range records[1:] {
		row, err := parseRow(record, index)
		if err != nil {
			return nil, &LoadError{Source: s.transactionsPath, Err: fmt.Errorf("row %d: %w", i+2, err)}
		}
		led.Rows = append(led.Rows, row)
	}
	return led, nil
}

// Profile looks up a customer's display name and language preference. A
// missing CIF or a malformed preferences blob is not an error: defaults
// are substituted so verification can still succeed.
func (s *CSVSource) Profile(ctx context.Context, cif string) (models.CustomerProfile, error) {
	profile := models.CustomerProfile{CIF: cif, Name: defaultCustomerName, Language: defaultLanguage}

	records, err := readDelimited(s.profilesPath)
	if err != nil {
		s.logger.Warn("profile source unreadable, using defaults",
			zap.Error(err), zap.String("cif", cif))
		return profile, nil
	}
	if len(records) == 0 {
		return profile, nil
	}

	index := headerIndex(records[0])
	for _, record := range records[1:] {
		if field(record, index, ColumnCIF) != cif {
			continue
		}
		if name := field(record, index, "customer_name"); name != "" {
			profile.Name = name
		}
		profile.Language = parseLanguage(field(record, index, "preferences"))
		return profile, nil
	}
	return profile, nil
}

func (s *CSVSource) Close() error { return nil }

func readDelimited(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			index[name] = i
		}
	}
	return index
}

func field(record []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRow(record []string, index map[string]int) (models.Transaction, error) {
	row := models.Transaction{
		CIF:               field(record, index, ColumnCIF),
		Subheader:         field(record, index, ColumnSubheader),
		DetailInformation: field(record, index, ColumnDetailInformation),
		Notes:             field(record, index, ColumnNotes),
		DebitCredit:       field(record, index, ColumnDebitCredit),
	}

	if raw := field(record, index, ColumnDate); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return row, fmt.Errorf("parsing %s %q: %w", ColumnDate, raw, err)
		}
		row.Date = date
	}

	if raw := field(record, index, ColumnCategory); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return row, fmt.Errorf("parsing %s %q: %w", ColumnCategory, raw, err)
		}
		row.CategoryID = id
	}

	if raw := field(record, index, ColumnAmount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return row, fmt.Errorf("parsing %s %q: %w", ColumnAmount, raw, err)
		}
		row.Amount = amount
	}
	return row, nil
}

func parseDate(raw string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// parseLanguage extracts the language tag from a JSON preferences blob.
// Anything absent or malformed falls back to "en".
func parseLanguage(preferences string) string {
	if preferences == "" {
		return defaultLanguage
	}
	var prefs struct {
		Language string `json:"language"`
	}
	if err := json.Unmarshal([]byte(preferences), &prefs); err != nil || prefs.Language == "" {
		return defaultLanguage
	}
	tag, err := language.Parse(prefs.Language)
	if err != nil {
		return defaultLanguage
	}
	base, _ := tag.Base()
	return base.String()
}
