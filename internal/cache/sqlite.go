package cache

import (
	"context"
	"database/sql"
)

// SQLite persists annotation results across process restarts, sharing the
// application database. Schema is owned by the db package (cache_entries).
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(ctx context.Context, text, targetLang string) (Entry, bool, error) {
	var e Entry
	err := s.db.QueryRowContext(ctx,
		"SELECT translation, pos FROM cache_entries WHERE key = ?",
		Key(text, targetLang),
	).Scan(&e.Translation, &e.POS)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (s *SQLite) Put(ctx context.Context, text, targetLang string, entry Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, translation, pos) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET translation = ?, pos = ?`,
		Key(text, targetLang), entry.Translation, entry.POS,
		entry.Translation, entry.POS,
	)
	return err
}
