package db

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lyri-learn/backend/internal/auth"
	"github.com/lyri-learn/backend/internal/db/models"
	"github.com/lyri-learn/backend/internal/document"
)

type Database struct {
	db *sql.DB
}

func NewSQLite(path string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	d := &Database{db: sqlDB}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'viewer',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS songs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		source_lang TEXT NOT NULL DEFAULT 'auto',
		target_lang TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		translation TEXT NOT NULL,
		pos TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS documents (
		song_id TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		payload TEXT NOT NULL,
		built_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (song_id, target_lang)
	);
	`
	_, err := d.db.Exec(schema)
	return err
}

func (d *Database) EnsureAdmin(username, password string) error {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		"INSERT INTO users (username, password, role) VALUES (?, ?, 'admin')",
		username, hash,
	)
	return err
}

func (d *Database) GetUserByUsername(username string) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *Database) GetUserByID(id int64) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateSong registers a song. Songs are immutable after creation.
func (d *Database) CreateSong(s document.Song) error {
	_, err := d.db.Exec(
		"INSERT INTO songs (id, title, artist, source_lang, target_lang) VALUES (?, ?, ?, ?, ?)",
		s.ID, s.Title, s.Artist, s.SourceLang, s.TargetLang,
	)
	return err
}

func (d *Database) GetSong(id string) (*document.Song, error) {
	s := &document.Song{}
	err := d.db.QueryRow(
		"SELECT id, title, artist, source_lang, target_lang FROM songs WHERE id = ?",
		id,
	).Scan(&s.ID, &s.Title, &s.Artist, &s.SourceLang, &s.TargetLang)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Database) ListSongs() ([]document.Song, error) {
	rows, err := d.db.Query("SELECT id, title, artist, source_lang, target_lang FROM songs ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := []document.Song{}
	for rows.Next() {
		var s document.Song
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist, &s.SourceLang, &s.TargetLang); err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// GetDocument loads a built document for (song, lang), or nil when no build
// is stored yet.
func (d *Database) GetDocument(songID, targetLang string) (*document.TimedDocument, error) {
	var payload string
	err := d.db.QueryRow(
		"SELECT payload FROM documents WHERE song_id = ? AND target_lang = ?",
		songID, targetLang,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	doc := &document.TimedDocument{}
	if err := json.Unmarshal([]byte(payload), doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// PutDocument stores a built document, replacing any previous build for the
// same (song, lang) pair.
func (d *Database) PutDocument(doc *document.TimedDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	now := time.Now()
	_, err = d.db.Exec(`
		INSERT INTO documents (song_id, target_lang, payload, built_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(song_id, target_lang) DO UPDATE SET payload = ?, built_at = ?`,
		doc.Song.ID, doc.TargetLang, string(payload), now,
		string(payload), now,
	)
	return err
}

// DeleteDocuments drops all stored builds for a song, across target
// languages. Used by the rebuild endpoint.
func (d *Database) DeleteDocuments(songID string) error {
	_, err := d.db.Exec("DELETE FROM documents WHERE song_id = ?", songID)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for use by other packages.
func (d *Database) DB() *sql.DB {
	return d.db
}
