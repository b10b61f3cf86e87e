package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"docanalyzer/internal/port"
)

// QueueConfig holds settings for the analysis queue worker.
type QueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
	Timeout      time.Duration
}

// AnalysisQueueWorker polls for queued analyses and dispatches them.
type AnalysisQueueWorker struct {
	analysisRepo port.AnalysisRepository
	analysisSvc  AnalysisService
	cfg          QueueConfig
	wg           sync.WaitGroup
}

// NewAnalysisQueueWorker creates a new AnalysisQueueWorker.
func NewAnalysisQueueWorker(analysisRepo port.AnalysisRepository, analysisSvc AnalysisService, cfg QueueConfig) *AnalysisQueueWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAnalysisTimeout
	}
	return &AnalysisQueueWorker{
		analysisRepo: analysisRepo,
		analysisSvc:  analysisSvc,
		cfg:          cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight analyses have finished.
func (w *AnalysisQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Info().Dur("poll", w.cfg.PollInterval).Int("concurrency", w.cfg.Concurrency).
		Msg("service.AnalysisQueueWorker.Start: started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("service.AnalysisQueueWorker.Start: shutting down, waiting for in-flight analyses")
			w.wg.Wait()
			log.Info().Msg("service.AnalysisQueueWorker.Start: shutdown complete")
			return
		case <-ticker.C:
			w.poll(ctx, sem)
		}
	}
}

func (w *AnalysisQueueWorker) poll(ctx context.Context, sem chan struct{}) {
	available := w.cfg.Concurrency - len(sem)
	if available <= 0 {
		return
	}

	claimed, err := w.analysisRepo.ClaimQueued(ctx, available)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("service.AnalysisQueueWorker.poll: ClaimQueued failed")
		}
		return
	}

	for i := range claimed {
		a := claimed[i]

		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// In-flight analyses finish even while the worker shuts down.
			runCtx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout)
			defer cancel()

			log.Info().Str("analysis_id", a.ID.String()).Int("attempt", a.Attempts+1).
				Msg("service.AnalysisQueueWorker.poll: dispatching analysis")
			w.analysisSvc.RunAnalysis(runCtx, &a)
		}()
	}
}
