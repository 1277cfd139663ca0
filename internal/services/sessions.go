package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/BerylCAtieno/document-compliance-api/internal/completion"
	"github.com/BerylCAtieno/document-compliance-api/internal/criteria"
	"github.com/BerylCAtieno/document-compliance-api/internal/extractor"
	"github.com/BerylCAtieno/document-compliance-api/internal/models"
	"github.com/BerylCAtieno/document-compliance-api/internal/repository"
	"github.com/BerylCAtieno/document-compliance-api/internal/review"
	"github.com/BerylCAtieno/document-compliance-api/internal/storage"
	"github.com/BerylCAtieno/document-compliance-api/internal/utils"
)

type ReviewService interface {
	CreateSession(ctx context.Context) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	EndSession(ctx context.Context, id string) error
	UploadDocument(ctx context.Context, sessionID string, req *models.UploadRequest) (*models.UploadResponse, error)
	DownloadDocument(ctx context.Context, sessionID string) ([]byte, *models.Session, error)
	Criteria() []criteria.Criterion
	// PrepareAnalysis validates the session and the selection before any
	// output is produced, so callers can report input errors up front.
	PrepareAnalysis(ctx context.Context, sessionID string, req *models.AnalysisRequest) (*review.Request, error)
	Analyze(ctx context.Context, req *review.Request, sink review.Sink) (*review.Report, error)
}

type Dependencies struct {
	Repo         repository.Repository
	Storage      storage.Storage // optional
	Extractor    extractor.Extractor
	Orchestrator *review.Orchestrator
	Catalog      *criteria.Catalog
	DefaultMode  review.Mode
}

type reviewService struct {
	repo         repository.Repository
	storage      storage.Storage
	extractor    extractor.Extractor
	orchestrator *review.Orchestrator
	catalog      *criteria.Catalog
	defaultMode  review.Mode
	logger       *utils.Logger
}

func NewService(deps Dependencies, logger *utils.Logger) ReviewService {
	mode := deps.DefaultMode
	if mode == "" {
		mode = review.ModePerCriterion
	}
	return &reviewService{
		repo:         deps.Repo,
		storage:      deps.Storage,
		extractor:    deps.Extractor,
		orchestrator: deps.Orchestrator,
		catalog:      deps.Catalog,
		defaultMode:  mode,
		logger:       logger,
	}
}

func (s *reviewService) CreateSession(ctx context.Context) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		ID:        utils.GenerateID(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to create session", "error", err)
		return nil, utils.NewInternalError("Failed to create session")
	}

	s.logger.Info("Session created", "session_id", session.ID)
	return session, nil
}

func (s *reviewService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get session", "error", err, "session_id", id)
		return nil, utils.NewInternalError("Failed to retrieve session")
	}
	if session == nil {
		return nil, utils.NewNotFoundError("Session not found")
	}
	return session, nil
}

func (s *reviewService) EndSession(ctx context.Context, id string) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete session", "error", err, "session_id", id)
		return utils.NewInternalError("Failed to end session")
	}
	s.removeArchived(ctx, session.StorageKey)

	s.logger.Info("Session ended", "session_id", id)
	return nil
}

// UploadDocument extracts the document and attaches it to the session,
// replacing any previous document. Re-uploading identical bytes under the
// same filename reuses the text already extracted for the session.
func (s *reviewService) UploadDocument(ctx context.Context, sessionID string, req *models.UploadRequest) (*models.UploadResponse, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(req.Filename)
	if !s.extractor.Supports(filename) {
		s.logger.Warn("Unsupported document format", "filename", filename, "content_type", req.ContentType)
		return nil, utils.NewBadRequestError(fmt.Sprintf("Unsupported file type for '%s'", filename))
	}

	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = s.extractor.ContentType(filename)
	}

	sum := sha256.Sum256(req.File)
	hash := hex.EncodeToString(sum[:])

	if session.HasDocument() && session.ContentHash == hash && session.Filename == filename {
		s.logger.Info("Document unchanged, reusing extracted text", "session_id", sessionID, "filename", filename)
		return uploadResponse(session, true), nil
	}

	text, err := s.extractor.Extract(req.File, filename)
	if err != nil {
		s.logger.Error("Failed to extract text", "error", err, "filename", filename, "session_id", sessionID)
		if errors.Is(err, extractor.ErrNoText) {
			return nil, utils.NewBadRequestError("No text could be extracted from the document. The file may be empty or corrupted")
		}
		return nil, utils.NewUnprocessableError("Failed to extract text from document", err)
	}

	previousKey := session.StorageKey
	key := ""
	if s.storage != nil {
		key = storage.SessionKey(sessionID, filename)
		if err := s.storage.Upload(ctx, key, req.File, contentType); err != nil {
			s.logger.Error("Failed to upload to S3", "error", err, "storage_key", key)
			return nil, utils.NewInternalError("Failed to store document")
		}
	}

	now := time.Now().UTC()
	session.Filename = filename
	session.ContentType = contentType
	session.FileSize = int64(len(req.File))
	session.ContentHash = hash
	session.StorageKey = key
	session.DocumentText = text
	session.DocumentUploadedAt = &now

	if err := s.repo.AttachDocument(ctx, session); err != nil {
		s.logger.Error("Failed to save document to session", "error", err, "session_id", sessionID)
		if key != "" {
			_ = s.storage.Delete(ctx, key)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Session not found")
		}
		return nil, utils.NewInternalError("Failed to save document")
	}

	if previousKey != "" && previousKey != key {
		s.removeArchived(ctx, previousKey)
	}

	s.logger.Info("Document uploaded successfully",
		"session_id", sessionID,
		"filename", filename,
		"content_type", contentType,
		"text_length", len(text))

	return uploadResponse(session, false), nil
}

func (s *reviewService) DownloadDocument(ctx context.Context, sessionID string) ([]byte, *models.Session, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !session.HasDocument() || session.StorageKey == "" || s.storage == nil {
		return nil, nil, utils.NewNotFoundError("No stored document for this session")
	}

	data, err := s.storage.Download(ctx, session.StorageKey)
	if err != nil {
		s.logger.Error("Failed to download from S3", "error", err, "storage_key", session.StorageKey)
		return nil, nil, utils.NewBadGatewayError("Failed to retrieve document", err)
	}
	return data, session, nil
}

func (s *reviewService) Criteria() []criteria.Criterion {
	return s.catalog.All()
}

func (s *reviewService) PrepareAnalysis(ctx context.Context, sessionID string, req *models.AnalysisRequest) (*review.Request, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	mode := s.defaultMode
	if req.Mode != "" {
		if mode, err = review.ParseMode(req.Mode); err != nil {
			return nil, utils.NewBadRequestError(err.Error())
		}
	}

	selected, err := s.catalog.Select(req.Checks, req.CustomCheck)
	if err != nil {
		return nil, utils.NewBadRequestError(err.Error())
	}

	if !session.HasDocument() || len(selected) == 0 {
		return nil, utils.NewUnprocessableError("Please upload a document and select at least one check", review.ErrMissingInput)
	}

	return &review.Request{
		DocumentText: session.DocumentText,
		Criteria:     selected,
		Mode:         mode,
	}, nil
}

func (s *reviewService) Analyze(ctx context.Context, req *review.Request, sink review.Sink) (*review.Report, error) {
	s.logger.Info("Starting analysis",
		"mode", req.Mode,
		"criteria", len(req.Criteria),
		"text_length", len(req.DocumentText))

	report, err := s.orchestrator.Run(ctx, *req, sink)
	if err != nil {
		if errors.Is(err, review.ErrMissingInput) {
			return nil, utils.NewUnprocessableError("Please upload a document and select at least one check", err)
		}
		return report, err
	}

	for _, failed := range report.Failed() {
		if errors.Is(failed.Err, completion.ErrQuotaExceeded) {
			s.logger.Warn("Model quota exceeded", "criteria", failed.Criteria)
		}
	}
	return report, nil
}

func (s *reviewService) removeArchived(ctx context.Context, key string) {
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to remove archived document", "error", err, "storage_key", key)
	}
}

func uploadResponse(session *models.Session, reused bool) *models.UploadResponse {
	return &models.UploadResponse{
		SessionID:   session.ID,
		Filename:    session.Filename,
		FileSize:    session.FileSize,
		ContentType: session.ContentType,
		TextLength:  len(session.DocumentText),
		Reused:      reused,
		UploadedAt:  *session.DocumentUploadedAt,
		Message:     "Document extracted. Use /sessions/{id}/analyze to run the review.",
	}
}
