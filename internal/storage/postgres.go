package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"unlockpro/internal/config"
)

const (
	KindUnlock    = "unlock"
	KindIMEICheck = "imei_check"
	KindContact   = "contact"
	KindReview    = "review"
)

type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Lead is one journaled submission of any of the site's forms.
type Lead struct {
	ID        int64     `db:"id"`
	Kind      string    `db:"kind"`
	FlowID    string    `db:"flow_id"`
	OrderID   string    `db:"order_id"`
	Model     string    `db:"model"`
	Service   string    `db:"service"`
	IMEI      string    `db:"imei"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Subject   string    `db:"subject"`
	Message   string    `db:"message"`
	Rating    int       `db:"rating"`
	Price     int       `db:"price"`
	Channel   string    `db:"channel"`
	CreatedAt time.Time `db:"created_at"`
}

type LeadStatistics struct {
	Total      int
	Today      int
	Week       int
	KindCounts map[string]int
}

func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", DSN(cfg))
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return NewWithDB(db, logger), nil
}

func NewWithDB(db *sqlx.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PostgresStorage) DB() *sqlx.DB {
	return s.db
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStorage) SaveLead(ctx context.Context, lead Lead) (int64, error) {
	const operation = "storage.SaveLead"

	const query = `
        INSERT INTO leads (
            kind, flow_id, order_id, model, service, imei, email, name,
            subject, message, rating, price, channel, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id
    `

	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRowxContext(ctx, query,
		lead.Kind,
		lead.FlowID,
		lead.OrderID,
		lead.Model,
		lead.Service,
		lead.IMEI,
		lead.Email,
		lead.Name,
		lead.Subject,
		lead.Message,
		lead.Rating,
		lead.Price,
		lead.Channel,
		lead.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to save lead: %w", operation, err)
	}

	return id, nil
}

// ListLeads returns the newest leads first. A zero limit means no limit.
func (s *PostgresStorage) ListLeads(ctx context.Context, limit int) ([]Lead, error) {
	const operation = "storage.ListLeads"

	query := `
        SELECT id, kind, flow_id, order_id, model, service, imei, email, name,
               subject, message, rating, price, channel, created_at
        FROM leads
        ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var leads []Lead
	if err := s.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to fetch leads: %w", operation, err)
	}
	return leads, nil
}

func (s *PostgresStorage) GetLeadStatistics(ctx context.Context) (*LeadStatistics, error) {
	const operation = "storage.GetLeadStatistics"

	stats := &LeadStatistics{
		KindCounts: make(map[string]int),
	}

	err := s.db.QueryRowxContext(ctx, `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE),
            COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE - INTERVAL '7 days')
        FROM leads
    `).Scan(&stats.Total, &stats.Today, &stats.Week)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count leads: %w", operation, err)
	}

	rows, err := s.db.QueryxContext(ctx, `SELECT kind, COUNT(*) FROM leads GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get kind counts: %w", operation, err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("%s: failed to scan kind count: %w", operation, err)
		}
		stats.KindCounts[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to read kind counts: %w", operation, err)
	}

	return stats, nil
}

// EXCEL EXPORT

const leadsSheet = "Leads"

var leadHeaders = []string{
	"ID", "Kind", "Created At", "Channel", "Flow ID", "Order ID", "Model", "Service",
	"Price", "IMEI", "Email", "Name", "Subject", "Message", "Rating",
}

// ExportLeadsToExcel renders leads as an xlsx workbook in memory.
func ExportLeadsToExcel(leads []Lead) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), leadsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	for col, header := range leadHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(leadsSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, lead := range leads {
		data := []any{
			lead.ID,
			lead.Kind,
			lead.CreatedAt.UTC().Format("2006-01-02 15:04"),
			lead.Channel,
			lead.FlowID,
			lead.OrderID,
			lead.Model,
			lead.Service,
			lead.Price,
			lead.IMEI,
			lead.Email,
			lead.Name,
			lead.Subject,
			lead.Message,
			lead.Rating,
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(leadsSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(leadHeaders), 1)
		_ = f.SetCellStyle(leadsSheet, "A1", last, style)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
