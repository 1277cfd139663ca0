package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BerylCAtieno/document-compliance-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	AttachDocument(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, created_at, updated_at)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.CreatedAt.UTC(),
		session.UpdatedAt.UTC(),
	)

	return err
}

// GetByID returns nil, nil when the session does not exist.
func (r *repository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session

	query := `
		SELECT id, filename, content_type, file_size, content_hash, storage_key,
		       document_text, created_at, updated_at, document_uploaded_at
		FROM sessions
		WHERE id = ?
	`

	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// AttachDocument replaces the session's document and its extracted text.
func (r *repository) AttachDocument(ctx context.Context, session *models.Session) error {
	query := `
		UPDATE sessions
		SET filename = ?, content_type = ?, file_size = ?, content_hash = ?, storage_key = ?,
		    document_text = ?, document_uploaded_at = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()
	uploadedAt := now
	if session.DocumentUploadedAt != nil {
		uploadedAt = session.DocumentUploadedAt.UTC()
	}

	res, err := r.db.ExecContext(ctx, query,
		session.Filename,
		session.ContentType,
		session.FileSize,
		session.ContentHash,
		session.StorageKey,
		session.DocumentText,
		uploadedAt,
		now,
		session.ID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete reports whether a session was removed.
func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
