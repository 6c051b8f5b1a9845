package ingestjobposting

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"job-applier/internal/common/config"
	apperrors "job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/ingest"
	"job-applier/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
// ==========================

type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Ingest(ctx context.Context, posting models.Posting) (*ingest.Result, error) {
	args := m.Called(ctx, posting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.Result), args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestInput() *Input {
	return &Input{
		URL:             "https://example.com/jobs/1",
		Company:         "Acme Corp",
		Title:           "Senior Engineer",
		Location:        "Remote",
		Description:     "Build systems",
		Source:          models.SourceLinkedIn,
		MatchedKeywords: []string{"go"},
	}
}

func createMockJob(variables interface{}) entities.Job {
	raw, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       1,
		Type:      TaskType,
		Retries:   3,
		Variables: string(raw),
	}}
}

func createTestHandler(t *testing.T, svc Ingester) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, svc, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_NewPosting(t *testing.T) {
	svc := new(MockIngester)
	svc.On("Ingest", mock.Anything, mock.MatchedBy(func(p models.Posting) bool {
		return p.URL == "https://example.com/jobs/1" &&
			models.Deref(p.Description) == "Build systems" &&
			p.RawContent == nil
	})).Return(&ingest.Result{JobID: "675e9b3bd1299775"}, nil)

	output, err := createTestHandler(t, svc).Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, "675e9b3bd1299775", output.JobID)
	assert.False(t, output.Duplicate)
	svc.AssertExpectations(t)
}

func TestHandler_Execute_Duplicate(t *testing.T) {
	svc := new(MockIngester)
	svc.On("Ingest", mock.Anything, mock.Anything).
		Return(&ingest.Result{JobID: "675e9b3bd1299775", Duplicate: true}, nil)

	output, err := createTestHandler(t, svc).Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.True(t, output.Duplicate)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_ServiceError(t *testing.T) {
	svc := new(MockIngester)
	svc.On("Ingest", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewDatabaseError("insert job", assert.AnError))

	_, err := createTestHandler(t, svc).Execute(context.Background(), createTestInput())

	assert.ErrorIs(t, err, apperrors.ErrDatabase)
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(createMockJob(createTestInput()))
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", input.Company)

	_, err = parseInput(createMockJob(map[string]interface{}{"url": "https://example.com", "company": "Acme"}))
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "source")
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 10*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 2500*time.Millisecond, LoadConfig(config.WorkerConfig{Timeout: 2500}).Timeout)
}
