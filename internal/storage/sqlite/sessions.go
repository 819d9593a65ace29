package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rfweber/qsotrainer/internal/qso"
	"github.com/rfweber/qsotrainer/internal/scoring"
	"github.com/rfweber/qsotrainer/internal/session"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

// SessionStorage handles storage of completed session records. It
// implements session.Archiver.
type SessionStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// SessionRow is the list view of a stored session.
type SessionRow struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	ExchangeCount  int       `json:"exchange_count"`
	Verbosity      string    `json:"verbosity"`
	TotalElements  int       `json:"total_elements"`
	TotalScore     float64   `json:"total_score"`
	AveragePercent float64   `json:"average_percent"`
}

// StoredExchange is one exchange of a stored session together with its
// scored result.
type StoredExchange struct {
	Index    int                 `json:"index"`
	Exchange qso.Exchange        `json:"exchange"`
	Result   scoring.ScoreResult `json:"result"`
}

// NewSessionStorage creates the storage and its tables.
func NewSessionStorage(db *sql.DB, log *logger.Logger) (*SessionStorage, error) {
	storage := &SessionStorage{
		db:     db,
		logger: log.Named("sqlite-sessions"),
	}
	if err := storage.initDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize session storage: %w", err)
	}
	return storage, nil
}

func (s *SessionStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			exchange_count INTEGER NOT NULL,
			verbosity TEXT NOT NULL,
			fuzzy_threshold REAL NOT NULL,
			partial_credit INTEGER NOT NULL,
			case_sensitive INTEGER NOT NULL,
			total_elements INTEGER NOT NULL,
			total_score REAL NOT NULL,
			average_percent REAL NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS session_exchanges (
			session_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			exchange TEXT NOT NULL,
			result TEXT NOT NULL,
			PRIMARY KEY (session_id, idx),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create session_exchanges table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create session index: %w", err)
	}
	return nil
}

// SaveSession stores a completed session and its per-exchange results.
func (s *SessionStorage) SaveSession(ctx context.Context, rec session.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions
		(id, created_at, exchange_count, verbosity, fuzzy_threshold, partial_credit, case_sensitive, total_elements, total_score, average_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CreatedAt.Format(time.RFC3339),
		len(rec.Exchanges),
		string(rec.Config.Verbosity),
		rec.Config.FuzzyThreshold,
		boolToInt(rec.Config.PartialCredit),
		boolToInt(rec.Config.CaseSensitive),
		rec.Summary.TotalElements,
		rec.Summary.TotalScore,
		rec.Summary.AveragePercent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for i, exchange := range rec.Exchanges {
		exchangeJSON, err := json.Marshal(exchange)
		if err != nil {
			return fmt.Errorf("failed to marshal exchange %d: %w", i, err)
		}
		var result scoring.ScoreResult
		if i < len(rec.Summary.Results) {
			result = rec.Summary.Results[i]
		}
		resultJSON, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO session_exchanges (session_id, idx, exchange, result) VALUES (?, ?, ?, ?)`,
			rec.ID, i, string(exchangeJSON), string(resultJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert exchange %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	s.logger.Debug("Session archived",
		logger.String("session_id", rec.ID),
		logger.Int("exchanges", len(rec.Exchanges)),
	)
	return nil
}

// ListSessions returns recent sessions, newest first.
func (s *SessionStorage) ListSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, exchange_count, verbosity, total_elements, total_score, average_percent
		FROM sessions
		ORDER BY created_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		var row SessionRow
		var createdAt string
		if err := rows.Scan(
			&row.ID,
			&createdAt,
			&row.ExchangeCount,
			&row.Verbosity,
			&row.TotalElements,
			&row.TotalScore,
			&row.AveragePercent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		row.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		sessions = append(sessions, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// GetSessionExchanges returns the stored exchanges and results for one
// session, in playback order.
func (s *SessionStorage) GetSessionExchanges(ctx context.Context, sessionID string) ([]StoredExchange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, exchange, result
		FROM session_exchanges
		WHERE session_id = ?
		ORDER BY idx ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []StoredExchange
	for rows.Next() {
		var stored StoredExchange
		var exchangeJSON, resultJSON string
		if err := rows.Scan(&stored.Index, &exchangeJSON, &resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan session exchange: %w", err)
		}
		if err := json.Unmarshal([]byte(exchangeJSON), &stored.Exchange); err != nil {
			return nil, fmt.Errorf("failed to unmarshal exchange: %w", err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &stored.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		exchanges = append(exchanges, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session exchanges: %w", err)
	}
	return exchanges, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
