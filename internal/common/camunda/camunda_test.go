package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	apperrors "job-applier/internal/common/errors"
	"job-applier/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

type handlerFunc func(worker.JobClient, entities.Job) error

func (f handlerFunc) Handle(c worker.JobClient, j entities.Job) error { return f(c, j) }

func createTestJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: "test", Variables: variables, Retries: 3}}
}

// ==========================
// Retry Tests
// ==========================

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := executeWithRetry(context.Background(), fastRetry, func(context.Context) error {
		calls++
		if calls < 3 {
			return stderrors.New("rpc error: code = Unavailable")
		}
		return nil
	}, "publish")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	calls := 0
	err := executeWithRetry(context.Background(), fastRetry, func(context.Context) error {
		calls++
		return stderrors.New("deadline exceeded")
	}, "publish")

	assert.Equal(t, 3, calls)
	assert.Equal(t, apperrors.ErrCodeEngine, apperrors.CodeOf(err))
	assert.True(t, apperrors.AsStandard(err).Retryable)
}

func TestExecuteWithRetry_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	err := executeWithRetry(context.Background(), fastRetry, func(context.Context) error {
		calls++
		return stderrors.New("process definition not found")
	}, "create instance")

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMapZeebeError(t *testing.T) {
	assert.ErrorIs(t, mapZeebeError(stderrors.New("already exists"), "deploy", 0), apperrors.ErrConflict)

	err := mapZeebeError(stderrors.New("permission denied"), "deploy", 0)
	assert.Equal(t, apperrors.ErrCodeEngine, apperrors.CodeOf(err))
	assert.False(t, apperrors.AsStandard(err).Retryable)
}

// ==========================
// Worker Tests
// ==========================

func TestInstrument_CountsOutcomes(t *testing.T) {
	taskType := "instrument-test"
	ok := Instrument(taskType, handlerFunc(func(worker.JobClient, entities.Job) error { return nil }), nil)
	bad := Instrument(taskType, handlerFunc(func(worker.JobClient, entities.Job) error {
		return apperrors.NewValidationError("status", "bad")
	}), nil)

	ok(nil, createTestJob("{}"))
	ok(nil, createTestJob("{}"))
	bad(nil, createTestJob("{}"))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(taskType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(taskType, "VALIDATION_ERROR")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
}

func TestDecodeVariables(t *testing.T) {
	var v struct {
		JobID string `json:"jobId"`
	}
	require.NoError(t, DecodeVariables(createTestJob(`{"jobId":"abc"}`), &v))
	assert.Equal(t, "abc", v.JobID)

	err := DecodeVariables(createTestJob(`{`), &v)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
}
