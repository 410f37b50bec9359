package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/avanth/docuquery/pkg/logger_i"
)

const schemaTemplate = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS documents (
	id             TEXT PRIMARY KEY,
	owner_id       TEXT NOT NULL,
	name           TEXT NOT NULL,
	storage_path   TEXT NOT NULL,
	content_type   TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	extracted_text TEXT,
	uploaded_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	processed_at   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS chunks (
	id          BIGSERIAL PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index INT NOT NULL,
	chunk_text  TEXT NOT NULL,
	embedding   vector(%d),
	UNIQUE (document_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
`

// Open connects to Postgres and creates the schema if missing. The chunk
// embedding column is sized to the active embedding provider, so switching
// providers needs a fresh database or a manual migration.
func Open(databaseURL string, embeddingDim int) (*sql.DB, error) {
	logger := logger_i.NewLogger("pgstore")

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(schemaTemplate, embeddingDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	logger.Info("Postgres schema ready", "embedding dimension", embeddingDim)
	return db, nil
}
