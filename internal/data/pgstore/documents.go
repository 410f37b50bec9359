package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/pkg/logger_i"
)

type DocumentStore struct {
	db     *sql.DB
	logger *logger_i.Logger
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{
		db:     db,
		logger: logger_i.NewLogger("pg_document_store"),
	}
}

const documentColumns = `id, owner_id, name, storage_path, content_type, status, extracted_text, uploaded_at, processed_at`

func (s *DocumentStore) CreateDocument(ctx context.Context, doc docModel.Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, name, storage_path, content_type, status, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.Id, doc.OwnerId, doc.Name, doc.StoragePath, string(doc.ContentType), string(doc.Status), doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.Id, err)
	}
	return nil
}

func (s *DocumentStore) GetDocument(ctx context.Context, id string) (docModel.Document, bool) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("Error reading document", "id", id, "error", err)
		}
		return docModel.Document{}, false
	}
	return doc, true
}

// ClaimForProcessing is the compare-and-swap guarding against two jobs
// working the same document. Only one caller can flip the status to
// processing; the loser gets ErrAlreadyProcessing.
func (s *DocumentStore) ClaimForProcessing(ctx context.Context, id string) (docModel.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE documents SET status = $1
		 WHERE id = $2 AND status <> $1
		 RETURNING `+documentColumns,
		string(docModel.StatusProcessing), id)

	doc, err := scanDocument(row)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return docModel.Document{}, fmt.Errorf("claiming document %s: %w", id, err)
	}

	// No row updated: either the document is missing or already claimed.
	if _, ok := s.GetDocument(ctx, id); ok {
		return docModel.Document{}, docModel.ErrAlreadyProcessing
	}
	return docModel.Document{}, docModel.ErrDocumentNotFound
}

func (s *DocumentStore) ResetToPending(ctx context.Context, id string) error {
	return s.updateStatus(ctx, id,
		`UPDATE documents SET status = 'pending', extracted_text = NULL, processed_at = NULL WHERE id = $1`)
}

func (s *DocumentStore) MarkCompleted(ctx context.Context, id string, extractedText string) error {
	return s.updateStatus(ctx, id,
		`UPDATE documents SET status = 'completed', extracted_text = $2, processed_at = now() WHERE id = $1`,
		extractedText)
}

func (s *DocumentStore) MarkFailed(ctx context.Context, id string, cause string) error {
	return s.updateStatus(ctx, id,
		`UPDATE documents SET status = 'failed', extracted_text = $2, processed_at = now() WHERE id = $1`,
		cause)
}

func (s *DocumentStore) updateStatus(ctx context.Context, id string, query string, extraArgs ...any) error {
	args := append([]any{id}, extraArgs...)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating document %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return docModel.ErrDocumentNotFound
	}
	return nil
}

func scanDocument(row *sql.Row) (docModel.Document, error) {
	var doc docModel.Document
	var contentType, status string
	var extractedText sql.NullString
	var processedAt sql.NullTime

	err := row.Scan(&doc.Id, &doc.OwnerId, &doc.Name, &doc.StoragePath,
		&contentType, &status, &extractedText, &doc.UploadedAt, &processedAt)
	if err != nil {
		return docModel.Document{}, err
	}

	doc.ContentType = docModel.DocType(contentType)
	doc.Status = docModel.ProcessingStatus(status)
	doc.ExtractedText = extractedText.String
	if processedAt.Valid {
		doc.ProcessedAt = &processedAt.Time
	}
	return doc, nil
}
