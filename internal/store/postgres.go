package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/models"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

const schema = `
CREATE TABLE IF NOT EXISTS assistants (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	instructions TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	threads JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS honeycombs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	files JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// PostgresStore keeps each collection in a table, with the nested thread
// and file records in jsonb columns. Same last-writer-wins contract as the
// JSON documents, just with row-level granularity.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(config DatabaseConfig, logger *zap.Logger) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

func (s *PostgresStore) LoadAssistants() ([]*models.Assistant, error) {
	rows, err := s.db.Query(`
		SELECT id, name, instructions, model, threads
		FROM assistants
		ORDER BY created_at`)
	if err != nil {
		return nil, &PersistenceError{Op: "query assistants", Err: err}
	}
	defer rows.Close()

	var assistants []*models.Assistant
	for rows.Next() {
		a := &models.Assistant{}
		var threads []byte
		if err := rows.Scan(&a.ID, &a.Name, &a.Instructions, &a.Model, &threads); err != nil {
			return nil, &PersistenceError{Op: "scan assistant", Err: err}
		}
		if err := json.Unmarshal(threads, &a.Threads); err != nil {
			return nil, &PersistenceError{Op: "decode threads for " + a.ID, Err: err}
		}
		assistants = append(assistants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate assistants", Err: err}
	}
	return assistants, nil
}

func (s *PostgresStore) PutAssistant(a *models.Assistant) error {
	threads, err := json.Marshal(a.Threads)
	if err != nil {
		return &PersistenceError{Op: "encode threads for " + a.ID, Err: err}
	}
	if a.Threads == nil {
		threads = []byte("{}")
	}

	_, err = s.db.Exec(`
		INSERT INTO assistants (id, name, instructions, model, threads)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, instructions = $3, model = $4, threads = $5`,
		a.ID, a.Name, a.Instructions, a.Model, threads)
	if err != nil {
		return &PersistenceError{Op: "upsert assistant " + a.ID, Err: err}
	}
	return nil
}

func (s *PostgresStore) DeleteAssistant(id string) error {
	if _, err := s.db.Exec(`DELETE FROM assistants WHERE id = $1`, id); err != nil {
		return &PersistenceError{Op: "delete assistant " + id, Err: err}
	}
	return nil
}

func (s *PostgresStore) LoadHoneycombs() ([]*models.Honeycomb, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, files, created_at
		FROM honeycombs
		ORDER BY created_at`)
	if err != nil {
		return nil, &PersistenceError{Op: "query honeycombs", Err: err}
	}
	defer rows.Close()

	var honeycombs []*models.Honeycomb
	for rows.Next() {
		h := &models.Honeycomb{}
		var files []byte
		if err := rows.Scan(&h.ID, &h.Name, &h.Description, &files, &h.CreatedAt); err != nil {
			return nil, &PersistenceError{Op: "scan honeycomb", Err: err}
		}
		if err := json.Unmarshal(files, &h.Files); err != nil {
			return nil, &PersistenceError{Op: "decode files for " + h.ID, Err: err}
		}
		honeycombs = append(honeycombs, h)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate honeycombs", Err: err}
	}
	return honeycombs, nil
}

func (s *PostgresStore) PutHoneycomb(h *models.Honeycomb) error {
	files, err := json.Marshal(h.Files)
	if err != nil {
		return &PersistenceError{Op: "encode files for " + h.ID, Err: err}
	}
	if h.Files == nil {
		files = []byte("[]")
	}

	_, err = s.db.Exec(`
		INSERT INTO honeycombs (id, name, description, files, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, description = $3, files = $4`,
		h.ID, h.Name, h.Description, files, h.CreatedAt)
	if err != nil {
		return &PersistenceError{Op: "upsert honeycomb " + h.ID, Err: err}
	}
	return nil
}

func (s *PostgresStore) DeleteHoneycomb(id string) error {
	if _, err := s.db.Exec(`DELETE FROM honeycombs WHERE id = $1`, id); err != nil {
		return &PersistenceError{Op: "delete honeycomb " + id, Err: err}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
