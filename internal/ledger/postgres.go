package ledger

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresSource serves the same Source contract as CSVSource from a
// transactions and customer_profiles table.
type PostgresSource struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresSource(config DatabaseConfig, logger *zap.Logger) (*PostgresSource, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	source := &PostgresSource{db: db, logger: logger}
	if err := source.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}
	return source, nil
}

func (s *PostgresSource) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}
	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresSource) Transactions(ctx context.Context) (*Ledger, error) {
	query := `
		SELECT cif, trx_date, category_by_system, subheader, detail_information, notes, amount, debit_credit
		FROM transactions`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &LoadError{Source: "postgres", Err: err}
	}
	defer rows.Close()

	led := &Ledger{Columns: map[string]bool{
		ColumnCIF:               true,
		ColumnDate:              true,
		ColumnCategory:          true,
		ColumnSubheader:         true,
		ColumnDetailInformation: true,
		ColumnNotes:             true,
		ColumnAmount:            true,
		ColumnDebitCredit:       true,
	}}

	for rows.Next() {
		var (
			row    models.Transaction
			date   time.Time
			amount string
		)
		if err := rows.Scan(&row.CIF, &date, &row.CategoryID, &row.Subheader,
			&row.DetailInformation, &row.Notes, &amount, &row.DebitCredit); err != nil {
			return nil, &LoadError{Source: "postgres", Err: err}
		}
		row.Date = date
		row.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, &LoadError{Source: "postgres", Err: fmt.Errorf("parsing amount %q: %w", amount, err)}
		}
		led.Rows = append(led.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Source: "postgres", Err: err}
	}
	return led, nil
}

func (s *PostgresSource) Profile(ctx context.Context, cif string) (models.CustomerProfile, error) {
	profile := models.CustomerProfile{CIF: cif, Name: defaultCustomerName, Language: defaultLanguage}

	query := `SELECT customer_name, preferences FROM customer_profiles WHERE cif = $1`
	var name, preferences string
	err := s.db.QueryRowContext(ctx, query, cif).Scan(&name, &preferences)
	if err == sql.ErrNoRows {
		return profile, nil
	}
	if err != nil {
		s.logger.Warn("profile lookup failed, using defaults",
			zap.Error(err), zap.String("cif", cif))
		return profile, nil
	}

	if name != "" {
		profile.Name = name
	}
	profile.Language = parseLanguage(preferences)
	return profile, nil
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}
