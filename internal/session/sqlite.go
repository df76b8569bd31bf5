package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore 基于 SQLite 的会话存储，进程重启后可恢复历史
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 打开（或创建）dbPath 处的数据库并执行建表
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// SQLite 单写者，限制连接数避免 database is locked
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session_messages (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role       TEXT NOT NULL,
			author     TEXT NOT NULL DEFAULT '',
			text       TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_session_messages_session ON session_messages(session_id, id);
		CREATE TABLE IF NOT EXISTS session_state (
			session_id TEXT PRIMARY KEY,
			state      TEXT NOT NULL DEFAULT '{}',
			updated_at TEXT NOT NULL
		)
	`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, msg StoredMessage) error {
	return insertMessage(ctx, s.db, sessionID, msg)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMessage(ctx context.Context, db execer, sessionID string, msg StoredMessage) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO session_messages (session_id, role, author, text, created_at) VALUES (?, ?, ?, ?, ?)",
		sessionID, msg.Role, msg.Author, msg.Text, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session message: %w", err)
	}
	return nil
}

// ReplaceMessages 用 msgs 整体替换会话历史，摘要压缩后调用
func (s *SQLiteStore) ReplaceMessages(ctx context.Context, sessionID string, msgs []StoredMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session_messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("delete session messages: %w", err)
	}
	for _, m := range msgs {
		if err := insertMessage(ctx, tx, sessionID, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Messages(ctx context.Context, sessionID string) ([]StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, author, text, created_at FROM session_messages WHERE session_id = ? ORDER BY id", sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query session messages: %w", err)
	}
	defer rows.Close()

	var msgs []StoredMessage
	for rows.Next() {
		var (
			m         StoredMessage
			createdAt string
		)
		if err := rows.Scan(&m.Role, &m.Author, &m.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session message: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *SQLiteStore) SaveState(ctx context.Context, sessionID string, state map[string]any) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_state (session_id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		sessionID, string(body), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}

// LoadState 读取会话状态，不存在时返回空 map
func (s *SQLiteStore) LoadState(ctx context.Context, sessionID string) (map[string]any, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT state FROM session_state WHERE session_id = ?", sessionID).Scan(&body)
	if err == sql.ErrNoRows {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session state: %w", err)
	}

	state := map[string]any{}
	if err := json.Unmarshal([]byte(body), &state); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	return state, nil
}
