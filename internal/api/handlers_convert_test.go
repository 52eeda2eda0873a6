// handlers_convert_test.go - Tests for conversion job handlers
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdf2deck/backend/internal/convert"
	"github.com/pdf2deck/backend/internal/testutil"
)

func newConvertFixture(t *testing.T) (*testutil.MockStorage, *convert.Manager, ConvertHandler) {
	t.Helper()
	store := testutil.NewMockStorage()
	store.OutputDir = t.TempDir()
	jobs := convert.NewManager(store, convert.NewConverter(convert.DefaultProfile()))
	return store, jobs, NewConvertHandler(store, jobs)
}

func seedUpload(t *testing.T, store *testutil.MockStorage, pageCount int) string {
	t.Helper()
	info, err := store.SaveBytes("report.pdf", []byte("%PDF-"))
	require.NoError(t, err)
	store.SetFilePath(info.ID, testutil.WriteMinimalPDF(t, t.TempDir(), pageCount))
	return info.ID
}

func awaitJob(t *testing.T, jobs *convert.Manager, id string) convert.Job {
	t.Helper()
	var job convert.Job
	require.Eventually(t, func() bool {
		snap, ok := jobs.Snapshot(id)
		if !ok {
			return false
		}
		job = snap
		return job.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond, "job did not reach a terminal state")
	return job
}

func postConvert(t *testing.T, handler ConvertHandler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, handler.HandleStartConvert(e.NewContext(req, rec))
}

func TestConvertHandler_HandleStartConvert(t *testing.T) {
	store, jobs, handler := newConvertFixture(t)
	fileID := seedUpload(t, store, 2)

	rec, err := postConvert(t, handler, `{"fileId":"`+fileID+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)

	job := awaitJob(t, jobs, resp.JobID)
	assert.Equal(t, convert.StatusComplete, job.Status)
	assert.Equal(t, "report.pptx", job.OutputName)
}

func TestConvertHandler_HandleStartConvert_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errCode string
	}{
		{name: "invalid json", body: `{not json`, errCode: "BAD_REQUEST"},
		{name: "missing fileId", body: `{}`, errCode: "VALIDATION_ERROR"},
		{name: "unknown file", body: `{"fileId":"nope"}`, errCode: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, handler := newConvertFixture(t)
			_, err := postConvert(t, handler, tt.body)
			require.Error(t, err)
			apiErr, ok := err.(*APIError)
			require.True(t, ok, "expected APIError, got %T", err)
			assert.Equal(t, tt.errCode, apiErr.Code)
		})
	}
}

func TestConvertHandler_HandleStartConvert_RejectsOutputs(t *testing.T) {
	store, _, handler := newConvertFixture(t)
	info, _, err := store.AllocateOutput("deck.pptx")
	require.NoError(t, err)

	_, err = postConvert(t, handler, `{"fileId":"`+info.ID+`"}`)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestConvertHandler_HandleJobStatus(t *testing.T) {
	store, jobs, handler := newConvertFixture(t)
	fileID := seedUpload(t, store, 1)
	started := jobs.StartJob(fileID, "report.pdf")
	awaitJob(t, jobs, started.ID)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/convert/:jobId/status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("jobId")
	c.SetParamValues(started.ID)

	require.NoError(t, handler.HandleJobStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var job convert.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, started.ID, job.ID)
	assert.Equal(t, convert.StatusComplete, job.Status)
	assert.Equal(t, float64(100), job.Progress)
}

func TestConvertHandler_HandleJobStatus_Unknown(t *testing.T) {
	_, _, handler := newConvertFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/convert/:jobId/status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("jobId")
	c.SetParamValues("missing")

	err := handler.HandleJobStatus(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestConvertHandler_HandleDownload(t *testing.T) {
	store, jobs, handler := newConvertFixture(t)
	fileID := seedUpload(t, store, 2)
	started := jobs.StartJob(fileID, "report.pdf")
	awaitJob(t, jobs, started.ID)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/convert/:jobId/download", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("jobId")
	c.SetParamValues(started.ID)

	require.NoError(t, handler.HandleDownload(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "report.pptx")
	// PPTX is a zip archive.
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "download should be a zip archive")
}

func TestConvertHandler_HandleDownload_NotReady(t *testing.T) {
	_, _, handler := newConvertFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/convert/:jobId/download", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("jobId")
	c.SetParamValues("missing")

	err := handler.HandleDownload(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestConvertHandler_HandleDownload_Failed(t *testing.T) {
	store, jobs, handler := newConvertFixture(t)
	// Missing backing path makes the job fail.
	info, err := store.SaveBytes("broken.pdf", []byte("%PDF-"))
	require.NoError(t, err)
	started := jobs.StartJob(info.ID, "broken.pdf")
	done := awaitJob(t, jobs, started.ID)
	require.Equal(t, convert.StatusError, done.Status)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/convert/:jobId/download", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("jobId")
	c.SetParamValues(started.ID)

	err = handler.HandleDownload(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "CONFLICT", apiErr.Code)
}
