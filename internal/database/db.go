package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"

	"github.com/Nixiestone/smcbot/internal/ml"
	"github.com/Nixiestone/smcbot/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection, retrying the initial ping
// with exponential backoff so a slow database start does not kill the
// process.
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(db.Ping, policy); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			signal_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			stop_loss DOUBLE PRECISION NOT NULL,
			take_profit DOUBLE PRECISION NOT NULL,
			sl_pips DOUBLE PRECISION NOT NULL,
			tp_pips DOUBLE PRECISION NOT NULL,
			risk_reward DOUBLE PRECISION NOT NULL,
			setup_type TEXT NOT NULL,
			signal_strength TEXT NOT NULL,
			ml_confidence DOUBLE PRECISION NOT NULL,
			features JSONB,
			created_at TIMESTAMP NOT NULL,
			status TEXT NOT NULL,
			outcome TEXT,
			pips_result DOUBLE PRECISION,
			close_time TIMESTAMP,
			close_reason TEXT,
			order_id TEXT
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS subscribers (
			chat_id BIGINT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)
	`)
	return err
}

// InsertSignal appends a new signal to the ledger
func (db *DB) InsertSignal(ctx context.Context, sig *models.Signal) error {
	features, err := json.Marshal(sig.Features)
	if err != nil {
		return fmt.Errorf("encoding features: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO signals (
			signal_id, symbol, direction, entry_type, entry_price,
			stop_loss, take_profit, sl_pips, tp_pips, risk_reward,
			setup_type, signal_strength, ml_confidence, features,
			created_at, status, order_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (signal_id) DO NOTHING
	`,
		sig.SignalID, sig.Symbol, sig.Direction, sig.EntryType, sig.EntryPrice,
		sig.StopLoss, sig.TakeProfit, sig.SLPips, sig.TPPips, sig.RiskReward,
		sig.SetupType, sig.SignalStrength, sig.MLConfidence, features,
		sig.Timestamp, sig.Status, nullString(sig.OrderID))

	return err
}

// CloseSignal records the outcome of a finished signal
func (db *DB) CloseSignal(ctx context.Context, sig *models.Signal) error {
	_, err := db.ExecContext(ctx, `
		UPDATE signals
		SET status = $1, outcome = $2, pips_result = $3, close_time = $4, close_reason = $5
		WHERE signal_id = $6
	`, sig.Status, sig.Outcome, sig.PipsResult, sig.CloseTime, sig.CloseReason, sig.SignalID)

	return err
}

// GetWinRate aggregates the closed-trade ledger
func (db *DB) GetWinRate(ctx context.Context) (models.WinRateStats, error) {
	var stats models.WinRateStats
	var grossWin, grossLoss sql.NullFloat64

	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE outcome = 'WIN'),
			COUNT(*) FILTER (WHERE outcome = 'LOSS'),
			COALESCE(SUM(pips_result) FILTER (WHERE outcome = 'WIN'), 0),
			COALESCE(SUM(-pips_result) FILTER (WHERE outcome = 'LOSS'), 0)
		FROM signals
		WHERE status = 'CLOSED'
	`).Scan(&stats.Wins, &stats.Losses, &grossWin, &grossLoss)
	if err != nil {
		return stats, err
	}

	stats.Total = stats.Wins + stats.Losses
	if stats.Total > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.Total) * 100
	}
	if grossLoss.Valid && grossLoss.Float64 > 0 && grossWin.Valid {
		stats.ProfitFactor = grossWin.Float64 / grossLoss.Float64
	}

	return stats, nil
}

// TrainingSamples loads the closed signals that carry a feature vector,
// oldest first, for model retraining.
func (db *DB) TrainingSamples(ctx context.Context) ([]ml.Sample, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT features, outcome
		FROM signals
		WHERE status = 'CLOSED' AND outcome IS NOT NULL AND features IS NOT NULL
		ORDER BY close_time ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []ml.Sample
	for rows.Next() {
		var raw []byte
		var outcome string
		if err := rows.Scan(&raw, &outcome); err != nil {
			return nil, err
		}

		var features []float64
		if err := json.Unmarshal(raw, &features); err != nil {
			continue // Skip rows with malformed feature payloads
		}
		if len(features) == 0 {
			continue
		}

		samples = append(samples, ml.Sample{
			Features: features,
			Won:      outcome == string(models.OutcomeWin),
		})
	}

	return samples, rows.Err()
}

// AddSubscriber registers a chat for signal delivery
func (db *DB) AddSubscriber(ctx context.Context, chatID int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO subscribers (chat_id, created_at, active)
		VALUES ($1, NOW(), TRUE)
		ON CONFLICT (chat_id) DO UPDATE SET active = TRUE
	`, chatID)

	return err
}

// RemoveSubscriber deactivates a chat
func (db *DB) RemoveSubscriber(ctx context.Context, chatID int64) error {
	_, err := db.ExecContext(ctx, `
		UPDATE subscribers SET active = FALSE WHERE chat_id = $1
	`, chatID)

	return err
}

// Subscribers returns all active chat IDs
func (db *DB) Subscribers(ctx context.Context) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT chat_id FROM subscribers WHERE active = TRUE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// IsSubscribed reports whether a chat is currently active
func (db *DB) IsSubscribed(ctx context.Context, chatID int64) (bool, error) {
	var active bool
	err := db.QueryRowContext(ctx, `
		SELECT active FROM subscribers WHERE chat_id = $1
	`, chatID).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return active, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
