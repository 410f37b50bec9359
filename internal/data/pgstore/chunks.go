package pgstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/pkg/logger_i"
)

type VectorIndex struct {
	db     *sql.DB
	logger *logger_i.Logger
}

func NewVectorIndex(db *sql.DB) *VectorIndex {
	return &VectorIndex{
		db:     db,
		logger: logger_i.NewLogger("pg_vector_index"),
	}
}

// ReplaceChunks swaps a document's chunk set inside one transaction so
// concurrent readers never see a mix of old and new chunks.
func (v *VectorIndex) ReplaceChunks(ctx context.Context, documentId string, chunks []docModel.Chunk) error {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk replacement: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentId); err != nil {
		return fmt.Errorf("deleting old chunks for %s: %w", documentId, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (document_id, chunk_index, chunk_text, embedding) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		var embedding any
		if chunk.Embedding != nil {
			embedding = pgvector.NewVector(chunk.Embedding)
		}
		if _, err := stmt.ExecContext(ctx, documentId, chunk.Index, chunk.Text, embedding); err != nil {
			return fmt.Errorf("inserting chunk %d for %s: %w", chunk.Index, documentId, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunk replacement: %w", err)
	}
	v.logger.Debug("chunks replaced", "documentId", documentId, "count", len(chunks))
	return nil
}

// CandidatesByOwner pulls embedded chunks for all of the owner's documents.
// The limit bounds the brute-force similarity scan on the caller's side.
func (v *VectorIndex) CandidatesByOwner(ctx context.Context, ownerId string, limit int) ([]docModel.ChunkCandidate, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT c.document_id, d.name, c.chunk_index, c.chunk_text, c.embedding
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE d.owner_id = $1 AND c.embedding IS NOT NULL
		 ORDER BY c.document_id, c.chunk_index
		 LIMIT $2`,
		ownerId, limit)
	if err != nil {
		return nil, fmt.Errorf("querying candidates for owner %s: %w", ownerId, err)
	}
	defer rows.Close()

	var candidates []docModel.ChunkCandidate
	for rows.Next() {
		var cand docModel.ChunkCandidate
		var embedding pgvector.Vector
		if err := rows.Scan(&cand.DocumentId, &cand.DocumentName, &cand.ChunkIndex, &cand.Text, &embedding); err != nil {
			return nil, fmt.Errorf("scanning candidate row: %w", err)
		}
		cand.Embedding = embedding.Slice()
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidate rows: %w", err)
	}
	return candidates, nil
}

var _ docModel.VectorIndex = (*VectorIndex)(nil)
var _ docModel.DocumentStore = (*DocumentStore)(nil)
