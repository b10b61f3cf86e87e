package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

type options struct {
	BatchSize int
	DryRun    bool
}

type result struct {
	Scanned   int
	Updated   int
	Unchanged int
	Skipped   int
}

// renormalize walks all completed analyses and rewrites Result and
// Confidence from RawResponse. Merged (dual-provider) results are skipped
// because their raw text holds two responses and the merge cannot be
// reproduced from it. progress is called once per scanned analysis.
func renormalize(ctx context.Context, repo port.AnalysisRepository, opts options, progress func()) (result, error) {
	var res result
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}

	for offset := 0; ; offset += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		batch, err := repo.ListCompleted(ctx, offset, opts.BatchSize)
		if err != nil {
			return res, fmt.Errorf("listing analyses at offset %d: %w", offset, err)
		}

		for i := range batch {
			a := &batch[i]
			res.Scanned++
			progress()

			if a.RawResponse == "" || isMerged(a) {
				res.Skipped++
				continue
			}

			normalized, err := analyzer.Normalize(a.RawResponse)
			if err != nil {
				log.Warn().Err(err).Str("analysis_id", a.ID.String()).Msg("backfill: skipping analysis")
				res.Skipped++
				continue
			}
			encoded, err := analyzer.MarshalResult(normalized)
			if err != nil {
				return res, err
			}
			if bytes.Equal(encoded, a.Result) {
				res.Unchanged++
				continue
			}

			res.Updated++
			if opts.DryRun {
				continue
			}
			a.Result = encoded
			a.Confidence = normalized.Confidence
			if err := repo.UpdateResult(ctx, a); err != nil {
				return res, fmt.Errorf("updating analysis %s: %w", a.ID, err)
			}
		}

		if len(batch) < opts.BatchSize {
			return res, nil
		}
	}
}

func isMerged(a *domain.Analysis) bool {
	return len(a.FieldProvenance) > 0 && string(a.FieldProvenance) != "null"
}
