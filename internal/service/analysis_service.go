package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/export"
	"docanalyzer/internal/port"
)

const (
	defaultAnalysisTimeout = 5 * time.Minute
	// persistTimeout bounds the status writes that close out a run.
	persistTimeout = 30 * time.Second
)

// AnalysisConfig holds pipeline settings.
type AnalysisConfig struct {
	// MaxRetries is the number of attempts allowed before a rate-limited
	// analysis is failed.
	MaxRetries int
	Timeout    time.Duration
	CacheTTL   time.Duration
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AnalysisService runs document analyses and exposes their results.
type AnalysisService interface {
	RequestAnalysis(ctx context.Context, caller Caller, orderID uuid.UUID) ([]domain.Analysis, error)
	// RunAnalysis executes the pipeline for one analysis already in processing
	// status. It is called by background runs and by the queue worker.
	RunAnalysis(ctx context.Context, analysis *domain.Analysis)
	ListByOrder(ctx context.Context, caller Caller, orderID uuid.UUID) ([]domain.Analysis, error)
	GetByID(ctx context.Context, caller Caller, analysisID uuid.UUID) (*domain.Analysis, error)
	Retry(ctx context.Context, caller Caller, analysisID uuid.UUID) (*domain.Analysis, error)
	Export(ctx context.Context, caller Caller, orderID uuid.UUID, format export.Format) (*ExportFile, error)
	// Wait blocks until background analyses have finished.
	Wait()
}

type analysisService struct {
	orderRepo    port.OrderRepository
	docRepo      port.DocumentRepository
	analysisRepo port.AnalysisRepository
	auditRepo    port.OrderAuditRepository
	userRepo     port.UserRepository
	storage      port.ObjectStorage
	extractor    port.TextExtractor
	analyzer     port.DocumentAnalyzer
	cache        port.Cache
	emailSender  port.EmailSender
	cfg          AnalysisConfig
	wg           sync.WaitGroup
}

// NewAnalysisService creates a new AnalysisService. docAnalyzer may be nil
// when no provider is configured; requests then fail with ErrAnalyzerUnavailable.
func NewAnalysisService(
	orderRepo port.OrderRepository,
	docRepo port.DocumentRepository,
	analysisRepo port.AnalysisRepository,
	auditRepo port.OrderAuditRepository,
	userRepo port.UserRepository,
	storage port.ObjectStorage,
	extractor port.TextExtractor,
	docAnalyzer port.DocumentAnalyzer,
	cache port.Cache,
	emailSender port.EmailSender,
	cfg AnalysisConfig,
) AnalysisService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAnalysisTimeout
	}
	return &analysisService{
		orderRepo:    orderRepo,
		docRepo:      docRepo,
		analysisRepo: analysisRepo,
		auditRepo:    auditRepo,
		userRepo:     userRepo,
		storage:      storage,
		extractor:    extractor,
		analyzer:     docAnalyzer,
		cache:        cache,
		emailSender:  emailSender,
		cfg:          cfg,
	}
}

// CacheKey identifies a result by document content, analysis type and language.
func CacheKey(contentHash string, analysisType domain.AnalysisType, lang string) string {
	return "analysis:" + contentHash + ":" + string(analysisType) + ":" + lang
}

// cachedAnalysis is what the result cache stores per key.
type cachedAnalysis struct {
	Result          json.RawMessage `json:"result"`
	FieldProvenance json.RawMessage `json:"field_provenance,omitempty"`
	RawResponse     string          `json:"raw_response"`
	ModelUsed       string          `json:"model_used"`
	PromptUsed      string          `json:"prompt_used"`
	Confidence      float64         `json:"confidence"`
}

func (s *analysisService) RequestAnalysis(ctx context.Context, caller Caller, orderID uuid.UUID) ([]domain.Analysis, error) {
	if s.analyzer == nil {
		return nil, domain.ErrAnalyzerUnavailable
	}
	order, err := loadOrder(ctx, s.orderRepo, caller, orderID, false)
	if err != nil {
		return nil, err
	}
	switch {
	case order.Status == domain.OrderStatusCancelled:
		return nil, domain.ErrOrderCancelled
	case !order.IsPaid():
		return nil, domain.ErrOrderNotPaid
	case order.Status == domain.OrderStatusProcessing:
		return nil, domain.ErrAnalysisInProgress
	}

	docs, err := s.docRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	var ready []domain.Document
	for i := range docs {
		if docs[i].Status == domain.FileStatusUploaded {
			ready = append(ready, docs[i])
		}
	}
	if len(ready) == 0 {
		return nil, domain.ErrNoDocuments
	}

	if err := s.orderRepo.StartProcessing(ctx, order.ID); err != nil {
		return nil, err
	}

	created := make([]domain.Analysis, 0, len(ready))
	for i := range ready {
		a := domain.Analysis{
			ID:           uuid.New(),
			OrderID:      order.ID,
			DocumentID:   ready[i].ID,
			UserID:       order.UserID,
			AnalysisType: order.AnalysisType,
			Language:     order.Language,
			Status:       domain.AnalysisStatusProcessing,
		}
		if err := s.analysisRepo.Create(ctx, &a); err != nil {
			log.Error().Err(err).Str("document_id", ready[i].ID.String()).
				Msg("service.analysisService.RequestAnalysis: failed to create analysis")
			continue
		}
		created = append(created, a)
	}
	if len(created) == 0 {
		if err := s.orderRepo.Complete(ctx, order.ID, domain.OrderStatusFailed); err != nil {
			log.Error().Err(err).Str("order_id", order.ID.String()).
				Msg("service.analysisService.RequestAnalysis: failed to mark order failed")
		}
		return nil, fmt.Errorf("no analyses could be created for order %s", order.ID)
	}

	recordAudit(ctx, s.auditRepo, order.ID, &caller.UserID, domain.AuditAnalysisRequested, map[string]interface{}{
		"documents": len(created), "analysis_type": order.AnalysisType, "language": order.Language,
	})

	for i := range created {
		s.runInBackground(created[i])
	}

	log.Info().Str("order_id", order.ID.String()).Int("documents", len(created)).
		Msg("service.analysisService.RequestAnalysis: analysis started")
	return created, nil
}

// runInBackground takes its own copy of the analysis and a context detached
// from the request.
func (s *analysisService) runInBackground(a domain.Analysis) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		s.RunAnalysis(ctx, &a)
	}()
}

func (s *analysisService) Wait() {
	s.wg.Wait()
}

func (s *analysisService) RunAnalysis(ctx context.Context, a *domain.Analysis) {
	a.Attempts++
	start := time.Now()

	if s.analyzer == nil {
		s.fail(ctx, a, domain.ErrAnalyzerUnavailable.Error())
		return
	}

	doc, err := s.docRepo.GetByID(ctx, a.DocumentID)
	if err != nil {
		s.fail(ctx, a, fmt.Sprintf("loading document: %v", err))
		return
	}

	data, err := s.storage.Download(ctx, doc.S3Bucket, doc.S3Key)
	if err != nil {
		s.fail(ctx, a, fmt.Sprintf("downloading file: %v", err))
		return
	}

	hash := doc.ContentHash
	if hash == "" {
		sum := sha256.Sum256(data)
		hash = hex.EncodeToString(sum[:])
	}
	key := CacheKey(hash, a.AnalysisType, a.Language)
	if entry, ok := s.lookupCache(ctx, key); ok {
		s.complete(ctx, a, entry, true, start)
		return
	}

	extracted, err := s.extractor.Extract(ctx, port.ExtractInput{
		Data:        data,
		ContentType: doc.ContentType,
		Filename:    doc.OriginalName,
	})
	if err != nil {
		s.fail(ctx, a, fmt.Sprintf("extracting text: %v", err))
		return
	}

	input := port.AnalyzeInput{AnalysisType: a.AnalysisType, Language: a.Language}
	switch {
	case extracted.NeedsVision:
		input.FileBytes = data
		input.ContentType = doc.ContentType
	case strings.TrimSpace(extracted.Text) == "":
		s.fail(ctx, a, "document contains no text")
		return
	default:
		input.Text = extracted.Text
	}

	out, err := s.analyzer.Analyze(ctx, input)
	if err != nil {
		s.handleError(ctx, a, err)
		return
	}

	entry, err := newCachedAnalysis(out)
	if err != nil {
		s.fail(ctx, a, fmt.Sprintf("encoding result: %v", err))
		return
	}
	s.storeCache(ctx, key, entry)
	s.complete(ctx, a, entry, false, start)
}

// persistContext returns a context for terminal writes that survives the
// expiry of the run's own deadline.
func persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

func newCachedAnalysis(out *port.AnalyzeOutput) (*cachedAnalysis, error) {
	if out == nil || out.Result == nil {
		return nil, errors.New("analyzer returned no result")
	}
	result, err := analyzer.MarshalResult(out.Result)
	if err != nil {
		return nil, err
	}
	entry := &cachedAnalysis{
		Result:      result,
		RawResponse: out.RawResponse,
		ModelUsed:   out.ModelUsed,
		PromptUsed:  out.PromptUsed,
		Confidence:  out.Result.Confidence,
	}
	if out.SecondaryModel != "" {
		entry.ModelUsed = out.ModelUsed + "+" + out.SecondaryModel
	}
	if len(out.FieldProvenance) > 0 {
		if b, err := json.Marshal(out.FieldProvenance); err == nil {
			entry.FieldProvenance = b
		}
	}
	return entry, nil
}

func (s *analysisService) lookupCache(ctx context.Context, key string) (*cachedAnalysis, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, port.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("service.analysisService.lookupCache: cache read failed")
		}
		return nil, false
	}
	var entry cachedAnalysis
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("service.analysisService.lookupCache: corrupt cache entry")
		return nil, false
	}
	return &entry, true
}

func (s *analysisService) storeCache(ctx context.Context, key string, entry *cachedAnalysis) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("service.analysisService.storeCache: cache write failed")
	}
}

func (s *analysisService) complete(ctx context.Context, a *domain.Analysis, entry *cachedAnalysis, cacheHit bool, start time.Time) {
	ctx, cancel := persistContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	a.Status = domain.AnalysisStatusCompleted
	a.Result = entry.Result
	a.RawResponse = entry.RawResponse
	a.ModelUsed = entry.ModelUsed
	a.PromptUsed = entry.PromptUsed
	a.FieldProvenance = entry.FieldProvenance
	a.Confidence = entry.Confidence
	a.CacheHit = cacheHit
	a.ProcessingTimeMs = time.Since(start).Milliseconds()
	a.ErrorMessage = ""
	a.RetryAfter = nil
	a.CompletedAt = &now

	if err := s.analysisRepo.UpdateResult(ctx, a); err != nil {
		log.Error().Err(err).Str("analysis_id", a.ID.String()).
			Msg("service.analysisService.complete: failed to save result")
		return
	}

	recordAudit(ctx, s.auditRepo, a.OrderID, nil, domain.AuditAnalysisCompleted, map[string]interface{}{
		"analysis_id": a.ID, "document_id": a.DocumentID, "model": a.ModelUsed, "cache_hit": cacheHit,
		"attempt": a.Attempts,
	})
	log.Info().Str("analysis_id", a.ID.String()).Str("model", a.ModelUsed).Bool("cache_hit", cacheHit).
		Int64("ms", a.ProcessingTimeMs).Msg("service.analysisService.complete: analysis completed")

	s.finalizeOrder(ctx, a.OrderID)
}

// handleError queues rate-limited analyses for the worker while attempts
// remain. Anything else fails the analysis.
func (s *analysisService) handleError(ctx context.Context, a *domain.Analysis, analyzeErr error) {
	ctx, cancel := persistContext(ctx)
	defer cancel()

	var rlErr *analyzer.RateLimitError
	if errors.As(analyzeErr, &rlErr) && a.Attempts < s.cfg.MaxRetries {
		retryAt := time.Now().Add(rlErr.RetryAfter).UTC()
		a.Status = domain.AnalysisStatusQueued
		a.ErrorMessage = fmt.Sprintf("rate limited by %s, queued for retry", rlErr.Provider)
		a.RetryAfter = &retryAt
		if err := s.analysisRepo.UpdateResult(ctx, a); err != nil {
			log.Error().Err(err).Str("analysis_id", a.ID.String()).
				Msg("service.analysisService.handleError: failed to queue analysis")
			return
		}
		recordAudit(ctx, s.auditRepo, a.OrderID, nil, domain.AuditAnalysisRateLimited, map[string]interface{}{
			"analysis_id": a.ID, "retry_after": retryAt.Format(time.RFC3339), "attempt": a.Attempts,
		})
		log.Warn().Str("analysis_id", a.ID.String()).Time("retry_after", retryAt).
			Msg("service.analysisService.handleError: analysis queued for retry")
		return
	}
	s.fail(ctx, a, fmt.Sprintf("analyzing document: %v", analyzeErr))
}

func (s *analysisService) fail(ctx context.Context, a *domain.Analysis, errMsg string) {
	ctx, cancel := persistContext(ctx)
	defer cancel()

	log.Error().Str("analysis_id", a.ID.String()).Str("error", errMsg).
		Msg("service.analysisService.fail: analysis failed")
	now := time.Now().UTC()
	a.Status = domain.AnalysisStatusFailed
	a.ErrorMessage = errMsg
	a.RetryAfter = nil
	a.CompletedAt = &now
	if err := s.analysisRepo.UpdateResult(ctx, a); err != nil {
		log.Error().Err(err).Str("analysis_id", a.ID.String()).
			Msg("service.analysisService.fail: failed to update status")
	}
	recordAudit(ctx, s.auditRepo, a.OrderID, nil, domain.AuditAnalysisFailed, map[string]interface{}{
		"analysis_id": a.ID, "error": errMsg, "attempt": a.Attempts,
	})
	s.finalizeOrder(ctx, a.OrderID)
}

// finalizeOrder recomputes the order status once no analysis is pending:
// completed if any succeeded, failed otherwise.
func (s *analysisService) finalizeOrder(ctx context.Context, orderID uuid.UUID) {
	counts, err := s.analysisRepo.CountByStatus(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID.String()).
			Msg("service.analysisService.finalizeOrder: counting analyses failed")
		return
	}
	if counts[domain.AnalysisStatusQueued]+counts[domain.AnalysisStatusProcessing] > 0 {
		return
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID.String()).
			Msg("service.analysisService.finalizeOrder: loading order failed")
		return
	}
	if order.Status != domain.OrderStatusProcessing {
		return
	}

	status := domain.OrderStatusFailed
	if counts[domain.AnalysisStatusCompleted] > 0 {
		status = domain.OrderStatusCompleted
	}
	if err := s.orderRepo.Complete(ctx, orderID, status); err != nil {
		log.Error().Err(err).Str("order_id", orderID.String()).
			Msg("service.analysisService.finalizeOrder: updating order failed")
		return
	}
	log.Info().Str("order_id", orderID.String()).Str("status", string(status)).
		Int("completed", counts[domain.AnalysisStatusCompleted]).Int("failed", counts[domain.AnalysisStatusFailed]).
		Msg("service.analysisService.finalizeOrder: order finished")

	if status == domain.OrderStatusCompleted {
		s.notifyCompleted(ctx, order, counts)
	}
}

func (s *analysisService) notifyCompleted(ctx context.Context, order *domain.Order, counts map[domain.AnalysisStatus]int) {
	if s.emailSender == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		log.Warn().Err(err).Str("order_id", order.ID.String()).
			Msg("service.analysisService.notifyCompleted: loading user failed")
		return
	}
	err = s.emailSender.SendAnalysisCompletedEmail(ctx, port.AnalysisCompletedEmail{
		ToEmail:    user.Email,
		ToName:     user.FullName(),
		Language:   user.PreferredLanguage,
		OrderID:    order.ID.String(),
		OrderTitle: order.Title,
		Succeeded:  counts[domain.AnalysisStatusCompleted],
		Failed:     counts[domain.AnalysisStatusFailed],
	})
	if err != nil {
		log.Warn().Err(err).Str("order_id", order.ID.String()).
			Msg("service.analysisService.notifyCompleted: sending email failed")
	}
}

func (s *analysisService) ListByOrder(ctx context.Context, caller Caller, orderID uuid.UUID) ([]domain.Analysis, error) {
	if _, err := loadOrder(ctx, s.orderRepo, caller, orderID, true); err != nil {
		return nil, err
	}
	return s.analysisRepo.ListByOrder(ctx, orderID)
}

func (s *analysisService) GetByID(ctx context.Context, caller Caller, analysisID uuid.UUID) (*domain.Analysis, error) {
	a, err := s.analysisRepo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if _, err := loadOrder(ctx, s.orderRepo, caller, a.OrderID, true); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *analysisService) Retry(ctx context.Context, caller Caller, analysisID uuid.UUID) (*domain.Analysis, error) {
	a, err := s.analysisRepo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	order, err := loadOrder(ctx, s.orderRepo, caller, a.OrderID, false)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AnalysisStatusFailed {
		return nil, domain.ErrAnalysisNotRetryable
	}
	if s.analyzer == nil {
		return nil, domain.ErrAnalyzerUnavailable
	}

	a.Status = domain.AnalysisStatusProcessing
	a.ErrorMessage = ""
	a.Attempts = 0
	a.RetryAfter = nil
	a.CompletedAt = nil
	if err := s.analysisRepo.UpdateResult(ctx, a); err != nil {
		return nil, fmt.Errorf("resetting analysis for retry: %w", err)
	}
	if order.Status != domain.OrderStatusProcessing {
		if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusProcessing); err != nil {
			return nil, fmt.Errorf("reopening order: %w", err)
		}
	}

	recordAudit(ctx, s.auditRepo, order.ID, &caller.UserID, domain.AuditAnalysisRetry, map[string]interface{}{
		"analysis_id": a.ID,
	})
	log.Info().Str("analysis_id", a.ID.String()).Msg("service.analysisService.Retry: retrying analysis")

	result := *a
	s.runInBackground(*a)
	return &result, nil
}

func (s *analysisService) Export(ctx context.Context, caller Caller, orderID uuid.UUID, format export.Format) (*ExportFile, error) {
	order, err := loadOrder(ctx, s.orderRepo, caller, orderID, true)
	if err != nil {
		return nil, err
	}
	analyses, err := s.analysisRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	docs, err := s.docRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	names := make(map[uuid.UUID]string, len(docs))
	for i := range docs {
		names[docs[i].ID] = docs[i].OriginalName
	}

	rows := export.Rows(analyses, names)
	var buf bytes.Buffer
	switch format {
	case export.FormatXLSX:
		err = export.WriteXLSX(&buf, rows)
	case export.FormatCSV:
		err = export.WriteCSV(&buf, rows)
	default:
		return nil, domain.ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("rendering export: %w", err)
	}

	return &ExportFile{
		Filename:    export.BuildFilename(order.Title, format, time.Now()),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}
