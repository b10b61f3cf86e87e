package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/domain"
	"docanalyzer/mocks"
)

func completed(raw string, result json.RawMessage) domain.Analysis {
	return domain.Analysis{
		ID:          uuid.New(),
		Status:      domain.AnalysisStatusCompleted,
		RawResponse: raw,
		Result:      result,
	}
}

func TestRenormalize(t *testing.T) {
	repo := new(mocks.MockAnalysisRepo)

	current, err := analyzer.Normalize(`{"summary":"ok","confidence":0.9}`)
	require.NoError(t, err)
	currentJSON, err := analyzer.MarshalResult(current)
	require.NoError(t, err)

	stale := completed(`{"summary":"fresh","sentiment":"positive","confidence":0.8}`, json.RawMessage(`{"summary":"old"}`))
	same := completed(`{"summary":"ok","confidence":0.9}`, currentJSON)
	merged := completed(`{"summary":"a"}`, json.RawMessage(`{}`))
	merged.FieldProvenance = json.RawMessage(`{"summary":"primary"}`)
	empty := completed("", nil)

	repo.On("ListCompleted", mock.Anything, 0, 2).Return([]domain.Analysis{stale, same}, nil)
	repo.On("ListCompleted", mock.Anything, 2, 2).Return([]domain.Analysis{merged, empty}, nil)
	repo.On("ListCompleted", mock.Anything, 4, 2).Return([]domain.Analysis{}, nil)
	repo.On("UpdateResult", mock.Anything, mock.MatchedBy(func(a *domain.Analysis) bool {
		return a.ID == stale.ID && a.Confidence == 0.8
	})).Return(nil)

	calls := 0
	res, err := renormalize(context.Background(), repo, options{BatchSize: 2}, func() { calls++ })

	require.NoError(t, err)
	assert.Equal(t, result{Scanned: 4, Updated: 1, Unchanged: 1, Skipped: 2}, res)
	assert.Equal(t, 4, calls)
	repo.AssertExpectations(t)
}

func TestRenormalize_DryRun(t *testing.T) {
	repo := new(mocks.MockAnalysisRepo)
	stale := completed(`{"summary":"fresh"}`, json.RawMessage(`{"summary":"old"}`))
	repo.On("ListCompleted", mock.Anything, 0, 10).Return([]domain.Analysis{stale}, nil)

	res, err := renormalize(context.Background(), repo, options{BatchSize: 10, DryRun: true}, func() {})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	repo.AssertNotCalled(t, "UpdateResult", mock.Anything, mock.Anything)
}

func TestRenormalize_ListError(t *testing.T) {
	repo := new(mocks.MockAnalysisRepo)
	repo.On("ListCompleted", mock.Anything, 0, 100).Return(nil, errors.New("connection reset"))

	_, err := renormalize(context.Background(), repo, options{}, func() {})

	assert.ErrorContains(t, err, "connection reset")
}
