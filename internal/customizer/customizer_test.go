package customizer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"job-applier/internal/catalog"
	apperrors "job-applier/internal/common/errors"
	"job-applier/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const testOutputDir = "/srv/output/resumes"

func createTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "resume_consultant.md", []byte("# Jane Doe\nConsultant"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "resume_data_engineer.md", []byte("# Jane Doe\nData"), 0o644))
	c, err := catalog.New(fs, catalog.DefaultTemplates(), logger.NewTestLogger(t))
	require.NoError(t, err)
	return c
}

func createTestCustomizer(t *testing.T, out afero.Fs, pub Publisher) *Customizer {
	t.Helper()
	c := New(createTestCatalog(t), out, testOutputDir, pub, logger.NewTestLogger(t))
	c.now = func() time.Time { return time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC) }
	return c
}

func createTestRequest() Request {
	return Request{
		TemplateKey:    "resume_consultant.md",
		JobTitle:       "Senior Consultant",
		JobDescription: "Client-facing strategy work",
		Company:        "Acme Corp",
	}
}

type recordingPublisher struct {
	records []*StagingRecord
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, rec *StagingRecord) error {
	p.records = append(p.records, rec)
	return p.err
}

// ==========================
// Core Functionality Tests
// ==========================

func TestCustomizer_Prepare(t *testing.T) {
	out := afero.NewMemMapFs()
	c := createTestCustomizer(t, out, nil)

	req := createTestRequest()
	req.CompanyInfo = map[string]interface{}{"industry": "consulting"}

	rec, err := c.Prepare(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "resume_consultant.md", rec.TemplateKey)
	assert.Equal(t, "Consultant resume", rec.TemplateName)
	assert.Equal(t, "# Jane Doe\nConsultant", rec.TemplateContent)
	assert.Equal(t, "Senior Consultant", rec.JobTitle)
	assert.Equal(t, "Client-facing strategy work", rec.JobDescription)
	assert.Equal(t, "Acme Corp", rec.Company)
	assert.Equal(t, "consulting", rec.CompanyInfo["industry"])
	assert.Equal(t, StatusReadyForAIProcessing, rec.Status)
	assert.Equal(t, filepath.Join(testOutputDir, "acme_corp", "senior_consultant_consultant.md"), rec.OutputPath)

	exists, err := afero.DirExists(out, filepath.Join(testOutputDir, "acme_corp"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCustomizer_Prepare_Idempotent(t *testing.T) {
	out := afero.NewMemMapFs()
	c := createTestCustomizer(t, out, nil)

	first, err := c.Prepare(context.Background(), createTestRequest())
	require.NoError(t, err)
	second, err := c.Prepare(context.Background(), createTestRequest())
	require.NoError(t, err)

	assert.Equal(t, first.OutputPath, second.OutputPath)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCustomizer_Prepare_NoCompanyInfo(t *testing.T) {
	c := createTestCustomizer(t, afero.NewMemMapFs(), nil)

	rec, err := c.Prepare(context.Background(), createTestRequest())
	require.NoError(t, err)
	assert.Nil(t, rec.CompanyInfo)
}

func TestCustomizer_Prepare_DryRun(t *testing.T) {
	out := afero.NewMemMapFs()
	pub := &recordingPublisher{}
	c := createTestCustomizer(t, out, pub)

	req := createTestRequest()
	req.DryRun = true
	req.ApplicationID = 12

	dry, err := c.Prepare(context.Background(), req)
	require.NoError(t, err)

	exists, err := afero.DirExists(out, filepath.Join(testOutputDir, "acme_corp"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, pub.records)

	req.DryRun = false
	live, err := c.Prepare(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, live.OutputPath, dry.OutputPath)
	assert.Equal(t, live.TemplateContent, dry.TemplateContent)
	assert.Equal(t, live.Status, dry.Status)
	assert.Len(t, pub.records, 1)
}

func TestCustomizer_Prepare_TemplateNotFound(t *testing.T) {
	c := createTestCustomizer(t, afero.NewMemMapFs(), nil)

	for _, key := range []string{"resume_fde.md", "resume_unknown.md"} {
		req := createTestRequest()
		req.TemplateKey = key
		_, err := c.Prepare(context.Background(), req)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound), key)
	}
}

func TestCustomizer_Prepare_IOFailure(t *testing.T) {
	c := createTestCustomizer(t, afero.NewReadOnlyFs(afero.NewMemMapFs()), nil)

	_, err := c.Prepare(context.Background(), createTestRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrIOFailure))
}

func TestCustomizer_Prepare_Validation(t *testing.T) {
	c := createTestCustomizer(t, afero.NewMemMapFs(), nil)

	for name, mutate := range map[string]func(*Request){
		"templateKey": func(r *Request) { r.TemplateKey = "" },
		"jobTitle":    func(r *Request) { r.JobTitle = " " },
		"company":     func(r *Request) { r.Company = "" },
	} {
		t.Run(name, func(t *testing.T) {
			req := createTestRequest()
			mutate(&req)
			_, err := c.Prepare(context.Background(), req)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestCustomizer_Prepare_PublishOnlyWithApplication(t *testing.T) {
	pub := &recordingPublisher{}
	c := createTestCustomizer(t, afero.NewMemMapFs(), pub)

	_, err := c.Prepare(context.Background(), createTestRequest())
	require.NoError(t, err)
	assert.Empty(t, pub.records)

	req := createTestRequest()
	req.ApplicationID = 7
	_, err = c.Prepare(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, pub.records, 1)
	assert.Equal(t, int64(7), pub.records[0].ApplicationID)
}

func TestCustomizer_Prepare_PublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: apperrors.NewCacheError("publish", errors.New("redis down"))}
	c := createTestCustomizer(t, afero.NewMemMapFs(), pub)

	req := createTestRequest()
	req.ApplicationID = 7
	_, err := c.Prepare(context.Background(), req)
	assert.Equal(t, apperrors.ErrCodeCache, apperrors.CodeOf(err))
}

// ==========================
// Staging Store Tests
// ==========================

func TestStagingStore_PublishAndGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stage := NewStagingStore(client, 0)
	c := createTestCustomizer(t, afero.NewMemMapFs(), stage)

	req := createTestRequest()
	req.ApplicationID = 42
	rec, err := c.Prepare(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, DefaultStagingTTL, mr.TTL("staging:42"))

	got, err := stage.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.OutputPath, got.OutputPath)
	assert.Equal(t, rec.TemplateContent, got.TemplateContent)
	assert.True(t, rec.PreparedAt.Equal(got.PreparedAt))

	_, err = stage.Get(context.Background(), 43)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
