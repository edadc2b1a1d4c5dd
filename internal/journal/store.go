package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	agenterr "github.com/restakehq/restake-agent/internal/errors"
)

// Entry is one recorded reply. ShareAmount and WithdrawalRoot are set only
// for queued withdrawals; Complete consults them later.
type Entry struct {
	ID             string
	RoomID         string
	UserID         string
	Action         string
	Status         string
	TxHash         string
	WithdrawalRoot string
	ShareAmount    string
	Text           string
	CreatedAt      time.Time
}

const (
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusSimulated = "simulated"
)

// Store is the conversation transcript: one row per terminal reply.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal lock directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal sqlite: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS replies (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			status TEXT NOT NULL,
			tx_hash TEXT NOT NULL DEFAULT '',
			withdrawal_root TEXT NOT NULL DEFAULT '',
			share_amount TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_replies_room_created ON replies(room_id, created_at DESC);",
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init journal schema: %w", err)
		}
	}
	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Append(entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	locked, err := s.lock.TryLockContext(context.Background(), 5*time.Second)
	if err != nil {
		return fmt.Errorf("lock journal: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock journal: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	_, err = s.db.Exec(`
		INSERT INTO replies (id, room_id, user_id, action, status, tx_hash, withdrawal_root, share_amount, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.RoomID, entry.UserID, entry.Action, entry.Status,
		entry.TxHash, entry.WithdrawalRoot, entry.ShareAmount, entry.Text, entry.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

func (s *Store) Recent(roomID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	var (
		rows *sql.Rows
		err  error
	)
	if roomID == "" {
		rows, err = s.db.Query(`
			SELECT id, room_id, user_id, action, status, tx_hash, withdrawal_root, share_amount, text, created_at
			FROM replies ORDER BY created_at DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(`
			SELECT id, room_id, user_id, action, status, tx_hash, withdrawal_root, share_amount, text, created_at
			FROM replies WHERE room_id = ? ORDER BY created_at DESC LIMIT ?`, roomID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return entries, nil
}

// LatestQueuedWithdrawal returns the most recent confirmed queue-withdrawal
// entry for the room that still carries a root.
func (s *Store) LatestQueuedWithdrawal(roomID string) (Entry, error) {
	row := s.db.QueryRow(`
		SELECT id, room_id, user_id, action, status, tx_hash, withdrawal_root, share_amount, text, created_at
		FROM replies
		WHERE room_id = ? AND action = 'queue-withdrawal' AND status = ? AND withdrawal_root != ''
		ORDER BY created_at DESC LIMIT 1`, roomID, StatusConfirmed)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, agenterr.New(agenterr.CodeNotFound, "no queued withdrawal recorded for this conversation")
		}
		return Entry{}, err
	}
	return entry, nil
}

// QueuedWithdrawalByRoot returns the recorded queue-withdrawal entry
// carrying the given root, regardless of room.
func (s *Store) QueuedWithdrawalByRoot(root string) (Entry, error) {
	row := s.db.QueryRow(`
		SELECT id, room_id, user_id, action, status, tx_hash, withdrawal_root, share_amount, text, created_at
		FROM replies
		WHERE action = 'queue-withdrawal' AND withdrawal_root = ?
		ORDER BY created_at DESC LIMIT 1`, root)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, agenterr.New(agenterr.CodeNotFound, "no queued withdrawal recorded with that root")
		}
		return Entry{}, err
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var entry Entry
	var createdUnix int64
	err := row.Scan(&entry.ID, &entry.RoomID, &entry.UserID, &entry.Action, &entry.Status,
		&entry.TxHash, &entry.WithdrawalRoot, &entry.ShareAmount, &entry.Text, &createdUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan journal row: %w", err)
	}
	entry.CreatedAt = time.Unix(createdUnix, 0).UTC()
	return entry, nil
}
