package docs

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrcore/internal/domain/audit"
	"hrcore/internal/platform/blob"
)

// Download URLs are short-lived on purpose: the link is handed to exactly one
// caller and should not be shareable beyond the moment.
const downloadURLExpiry = 60 * time.Second

var (
	ErrNotFound   = errors.New("document not found")
	ErrValidation = errors.New("validation failed")
)

type Document struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	FileName     string    `json:"fileName"`
	DocumentType string    `json:"documentType,omitempty"`
	UploadedBy   string    `json:"uploadedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) insertTx(ctx context.Context, tx pgx.Tx, orgID, employeeID, fileName, storagePath, documentType, uploadedBy string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO employee_documents (org_id, employee_id, file_name, storage_path, document_type, uploaded_by)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, orgID, employeeID, fileName, storagePath, nullIfEmpty(documentType), nullIfEmpty(uploadedBy)).Scan(&id)
	return id, err
}

func (s *Store) List(ctx context.Context, orgID, employeeID string) ([]Document, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, file_name, COALESCE(document_type, ''), COALESCE(uploaded_by::text, ''), created_at
    FROM employee_documents
    WHERE org_id = $1 AND employee_id = $2 AND deleted_at IS NULL
    ORDER BY created_at DESC
  `, orgID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.EmployeeID, &doc.FileName, &doc.DocumentType, &doc.UploadedBy, &doc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// getOwned fetches the document only when it belongs to the given employee.
// A document under a different employee is indistinguishable from a missing
// one.
func (s *Store) getOwned(ctx context.Context, orgID, employeeID, documentID string) (storagePath string, err error) {
	err = s.DB.QueryRow(ctx, `
    SELECT storage_path
    FROM employee_documents
    WHERE org_id = $1 AND employee_id = $2 AND id = $3 AND deleted_at IS NULL
  `, orgID, employeeID, documentID).Scan(&storagePath)
	return storagePath, err
}

type Service struct {
	Store *Store
	Blobs blob.Store
	Audit *audit.Service
}

func NewService(store *Store, blobs blob.Store, auditSvc *audit.Service) *Service {
	return &Service{Store: store, Blobs: blobs, Audit: auditSvc}
}

// Upload writes the object first, then the metadata row. If the metadata
// insert fails the object is orphaned in the bucket, never the other way
// around: a row without an object would produce dead download links.
func (s *Service) Upload(ctx context.Context, orgID, actorUserID, employeeID, fileName, documentType string, content io.Reader, size int64, contentType string) (string, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" || employeeID == "" {
		return "", ErrValidation
	}

	key := blob.ObjectKey(orgID, employeeID, uuid.NewString()+"-"+fileName)
	if err := s.Blobs.Put(ctx, key, content, size, contentType); err != nil {
		return "", err
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.insertTx(ctx, tx, orgID, employeeID, fileName, key, documentType, actorUserID)
	if err != nil {
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "document.upload", "employee_document", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) List(ctx context.Context, orgID, employeeID string) ([]Document, error) {
	return s.Store.List(ctx, orgID, employeeID)
}

// DownloadURL returns a presigned URL for the document, valid for one minute.
// The employee in the path must own the document.
func (s *Service) DownloadURL(ctx context.Context, orgID, employeeID, documentID string) (string, error) {
	key, err := s.Store.getOwned(ctx, orgID, employeeID, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return s.Blobs.SignedURL(ctx, key, downloadURLExpiry)
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
