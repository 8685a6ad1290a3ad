package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS approvals (
			approval_id TEXT PRIMARY KEY,
			transaction_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			summary TEXT NOT NULL,
			details TEXT,
			alternatives TEXT,
			status TEXT NOT NULL,
			approved_by TEXT,
			approved_at DATETIME,
			selected_alternative INTEGER,
			comments TEXT,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_approvals_agent ON approvals(agent_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS ledger (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			transaction_id TEXT NOT NULL,
			consumer_agent_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			status TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			result TEXT,
			settlement TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_tx ON ledger(transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_consumer ON ledger(consumer_agent_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateApproval inserts a new approval record.
func (s *SQLiteStore) CreateApproval(ctx context.Context, approval *domain.Approval) error {
	details := nullString(approval.Details)
	alternatives := nullString(approval.Alternatives)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO approvals (approval_id, transaction_id, agent_id, summary, details, alternatives, status, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		approval.ApprovalID, approval.TransactionID, approval.AgentID, approval.Summary,
		details, alternatives, approval.Status, approval.CreatedAt, approval.ExpiresAt)
	return err
}

// GetApproval retrieves an approval by ID.
func (s *SQLiteStore) GetApproval(ctx context.Context, approvalID string) (*domain.Approval, error) {
	var approval domain.Approval
	var details, alternatives, approvedBy, comments sql.NullString
	var approvedAt sql.NullTime
	var selectedAlternative sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT approval_id, transaction_id, agent_id, summary, details, alternatives, status,
		        approved_by, approved_at, selected_alternative, comments, created_at, expires_at
		 FROM approvals WHERE approval_id = ?`,
		approvalID).Scan(&approval.ApprovalID, &approval.TransactionID, &approval.AgentID,
		&approval.Summary, &details, &alternatives, &approval.Status,
		&approvedBy, &approvedAt, &selectedAlternative, &comments,
		&approval.CreatedAt, &approval.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if details.Valid {
		approval.Details = json.RawMessage(details.String)
	}
	if alternatives.Valid {
		approval.Alternatives = json.RawMessage(alternatives.String)
	}
	if approvedBy.Valid {
		approval.ApprovedBy = approvedBy.String
	}
	if approvedAt.Valid {
		approval.ApprovedAt = &approvedAt.Time
	}
	if selectedAlternative.Valid {
		v := int(selectedAlternative.Int64)
		approval.SelectedAlternative = &v
	}
	if comments.Valid {
		approval.Comments = comments.String
	}
	return &approval, nil
}

// UpdateApprovalDecision records a human decision on a pending approval.
// The status guard makes the transition atomic: a decision only lands on a
// still-pending row, and the caller learns via the bool whether it did.
func (s *SQLiteStore) UpdateApprovalDecision(ctx context.Context, approvalID string, status domain.ApprovalStatus, approvedBy string, approvedAt time.Time, selectedAlternative *int, comments string) (bool, error) {
	var selected sql.NullInt64
	if selectedAlternative != nil {
		selected = sql.NullInt64{Int64: int64(*selectedAlternative), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE approvals SET status = ?, approved_by = ?, approved_at = ?, selected_alternative = ?, comments = ? WHERE approval_id = ? AND status = ?`,
		status, approvedBy, approvedAt, selected, comments, approvalID, domain.ApprovalStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// MarkApprovalExpired lazily transitions a pending approval to expired.
func (s *SQLiteStore) MarkApprovalExpired(ctx context.Context, approvalID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE approvals SET status = ? WHERE approval_id = ? AND status = ?`,
		domain.ApprovalStatusExpired, approvalID, domain.ApprovalStatusPending)
	return err
}

// AppendLedgerEntry appends one audit record.
func (s *SQLiteStore) AppendLedgerEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	result := nullString(entry.Result)
	var settlement sql.NullString
	if entry.Settlement != nil {
		data, err := json.Marshal(entry.Settlement)
		if err != nil {
			return fmt.Errorf("failed to marshal settlement: %w", err)
		}
		settlement = sql.NullString{String: string(data), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger (transaction_id, consumer_agent_id, service_id, status, timestamp, result, settlement)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.TransactionID, entry.ConsumerAgentID, entry.ServiceID, entry.Status,
		entry.Timestamp, result, settlement)
	return err
}

// GetLedgerEntry retrieves the most recent ledger entry for a transaction.
func (s *SQLiteStore) GetLedgerEntry(ctx context.Context, transactionID string) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	var result, settlement sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT transaction_id, consumer_agent_id, service_id, status, timestamp, result, settlement
		 FROM ledger WHERE transaction_id = ? ORDER BY id DESC LIMIT 1`,
		transactionID).Scan(&entry.TransactionID, &entry.ConsumerAgentID, &entry.ServiceID,
		&entry.Status, &entry.Timestamp, &result, &settlement)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if result.Valid {
		entry.Result = json.RawMessage(result.String)
	}
	if settlement.Valid {
		var s domain.Settlement
		if err := json.Unmarshal([]byte(settlement.String), &s); err == nil {
			entry.Settlement = &s
		}
	}
	return &entry, nil
}

func nullString(raw json.RawMessage) sql.NullString {
	if raw == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
