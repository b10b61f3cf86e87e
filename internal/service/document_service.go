package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/config"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

// DocumentWithURL is a document plus a short-lived download link.
type DocumentWithURL struct {
	domain.Document
	DownloadURL string `json:"download_url"`
}

// DocumentService defines the document upload and management contract.
type DocumentService interface {
	Upload(ctx context.Context, caller Caller, orderID uuid.UUID, files []*multipart.FileHeader) ([]domain.Document, error)
	ListByOrder(ctx context.Context, caller Caller, orderID uuid.UUID) ([]domain.Document, error)
	Get(ctx context.Context, caller Caller, docID uuid.UUID) (*DocumentWithURL, error)
	Delete(ctx context.Context, caller Caller, docID uuid.UUID) error
}

type documentService struct {
	docRepo   port.DocumentRepository
	orderRepo port.OrderRepository
	auditRepo port.OrderAuditRepository
	storage   port.ObjectStorage
	cfg       *config.S3Config
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	orderRepo port.OrderRepository,
	auditRepo port.OrderAuditRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		orderRepo: orderRepo,
		auditRepo: auditRepo,
		storage:   storage,
		cfg:       cfg,
	}
}

// validatedFile is an upload that passed type and size checks.
type validatedFile struct {
	name     string
	ext      string
	fileType domain.FileType
	data     []byte
	hash     string
}

func uploadAllowed(status domain.OrderStatus) bool {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusPaid, domain.OrderStatusUploaded:
		return true
	}
	return false
}

func (s *documentService) Upload(ctx context.Context, caller Caller, orderID uuid.UUID, files []*multipart.FileHeader) ([]domain.Document, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}
	order, err := loadOrder(ctx, s.orderRepo, caller, orderID, false)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, domain.ErrOrderCancelled
	}
	if !uploadAllowed(order.Status) {
		return nil, domain.ErrOrderNotEditable
	}

	// Validate every file before anything is stored.
	valid := make([]validatedFile, 0, len(files))
	for _, fh := range files {
		vf, err := s.validate(fh)
		if err != nil {
			return nil, err
		}
		valid = append(valid, *vf)
	}

	docs := make([]domain.Document, 0, len(valid))
	uploaded := 0
	for i := range valid {
		doc, err := s.store(ctx, order, &valid[i])
		if err != nil {
			return nil, err
		}
		if doc.Status == domain.FileStatusUploaded {
			uploaded++
		}
		docs = append(docs, *doc)
	}
	if uploaded == 0 {
		return docs, domain.ErrUploadFailed
	}

	if order.Status == domain.OrderStatusPaid {
		if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusUploaded); err != nil {
			log.Error().Err(err).Str("order_id", order.ID.String()).
				Msg("service.documentService.Upload: failed to move order to uploaded")
		}
	}

	names := make([]string, 0, len(docs))
	for i := range docs {
		names = append(names, docs[i].OriginalName)
	}
	recordAudit(ctx, s.auditRepo, order.ID, &caller.UserID, domain.AuditDocumentsUploaded, map[string]interface{}{
		"files": names, "uploaded": uploaded, "failed": len(docs) - uploaded,
	})
	return docs, nil
}

func (s *documentService) validate(fh *multipart.FileHeader) (*validatedFile, error) {
	name := filepath.Base(fh.Filename)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if fh.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", name, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if !contentMatches(fileType, mimetype.Detect(data)) {
		return nil, domain.ErrUnsupportedFileType
	}

	sum := sha256.Sum256(data)
	return &validatedFile{
		name:     name,
		ext:      ext,
		fileType: fileType,
		data:     data,
		hash:     hex.EncodeToString(sum[:]),
	}, nil
}

// contentMatches checks the sniffed type against the extension's type,
// walking up the detected type's parents.
func contentMatches(fileType domain.FileType, detected *mimetype.MIME) bool {
	switch fileType {
	case domain.FileTypeTXT, domain.FileTypeCSV:
		return strings.HasPrefix(detected.String(), "text/")
	case domain.FileTypeDOC, domain.FileTypeXLS, domain.FileTypePPT:
		for m := detected; m != nil; m = m.Parent() {
			if m.Is("application/x-ole-storage") {
				return true
			}
		}
	}
	expected := domain.AllowedFileTypes[fileType]
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(expected) {
			return true
		}
	}
	return false
}

// store persists the metadata as pending, uploads to S3, then records the outcome.
func (s *documentService) store(ctx context.Context, order *domain.Order, vf *validatedFile) (*domain.Document, error) {
	docID := uuid.New()
	s3Key := fmt.Sprintf("users/%s/orders/%s/%s/%s", order.UserID, order.ID, docID, vf.name)
	contentType := domain.AllowedFileTypes[vf.fileType]

	doc := &domain.Document{
		ID:           docID,
		OrderID:      order.ID,
		UserID:       order.UserID,
		FileName:     docID.String() + "." + vf.ext,
		OriginalName: vf.name,
		FileType:     vf.fileType,
		FileSize:     int64(len(vf.data)),
		ContentType:  contentType,
		ContentHash:  vf.hash,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		Status:       domain.FileStatusPending,
	}

	log.Info().Str("order_id", order.ID.String()).Str("file", vf.name).Int64("size", doc.FileSize).
		Msg("service.documentService.store: uploading document")

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document metadata: %w", err)
	}

	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        bytes.NewReader(vf.data),
		ContentType: contentType,
		Size:        doc.FileSize,
	})
	if err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).
			Msg("service.documentService.store: S3 upload failed")
		_ = s.docRepo.UpdateStatus(ctx, doc.ID, domain.FileStatusFailed)
		doc.Status = domain.FileStatusFailed
		return doc, nil
	}

	if err := s.docRepo.UpdateStatus(ctx, doc.ID, domain.FileStatusUploaded); err != nil {
		return nil, fmt.Errorf("updating document status: %w", err)
	}
	doc.Status = domain.FileStatusUploaded
	return doc, nil
}

func (s *documentService) ListByOrder(ctx context.Context, caller Caller, orderID uuid.UUID) ([]domain.Document, error) {
	if _, err := loadOrder(ctx, s.orderRepo, caller, orderID, true); err != nil {
		return nil, err
	}
	return s.docRepo.ListByOrder(ctx, orderID)
}

func (s *documentService) Get(ctx context.Context, caller Caller, docID uuid.UUID) (*DocumentWithURL, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if _, err := loadOrder(ctx, s.orderRepo, caller, doc.OrderID, true); err != nil {
		return nil, err
	}

	out := &DocumentWithURL{Document: *doc}
	if doc.Status == domain.FileStatusUploaded {
		url, err := s.storage.GetPresignedURL(ctx, doc.S3Bucket, doc.S3Key, s.cfg.PresignExpiry)
		if err != nil {
			return nil, fmt.Errorf("presigning download: %w", err)
		}
		out.DownloadURL = url
	}
	return out, nil
}

func (s *documentService) Delete(ctx context.Context, caller Caller, docID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	order, err := loadOrder(ctx, s.orderRepo, caller, doc.OrderID, false)
	if err != nil {
		return err
	}
	if order.Status == domain.OrderStatusProcessing || order.Status == domain.OrderStatusCompleted {
		return domain.ErrOrderNotEditable
	}

	if err := s.storage.Delete(ctx, doc.S3Bucket, doc.S3Key); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).
			Msg("service.documentService.Delete: failed to delete from S3")
		return fmt.Errorf("deleting from storage: %w", err)
	}
	if err := s.docRepo.Delete(ctx, doc.ID); err != nil {
		return err
	}

	if order.Status == domain.OrderStatusUploaded {
		remaining, err := s.docRepo.CountUploaded(ctx, order.ID)
		if err == nil && remaining == 0 {
			if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusPaid); err != nil {
				log.Error().Err(err).Str("order_id", order.ID.String()).
					Msg("service.documentService.Delete: failed to move order back to paid")
			}
		}
	}

	recordAudit(ctx, s.auditRepo, order.ID, &caller.UserID, domain.AuditDocumentDeleted, map[string]interface{}{
		"document_id": doc.ID, "file": doc.OriginalName,
	})
	return nil
}
