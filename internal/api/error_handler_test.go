package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
)

func requestWithLogger(buf *bytes.Buffer) *http.Request {
	log := logger.New(logger.WithOutput(buf), logger.WithLevel(logger.DEBUG), logger.WithColors(false))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(logger.NewContext(req.Context(), log))
}

func TestHandleError_StoreErrorLogsCauseButHidesIt(t *testing.T) {
	var buf bytes.Buffer
	rec := httptest.NewRecorder()

	handleError(rec, requestWithLogger(&buf), errors.NewStoreError(stderrors.New("disk I/O error")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.ErrCodeStore, body.Error.Code)
	assert.NotContains(t, body.Error.Message, "disk")

	out := buf.String()
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "server error")
	assert.Contains(t, out, "code=STORE_ERROR")
	assert.Contains(t, out, "disk I/O error")
}

func TestHandleError_ClientErrorLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	rec := httptest.NewRecorder()

	handleError(rec, requestWithLogger(&buf), errors.NewNotFoundError("card", 7))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "code=NOT_FOUND")
	assert.Contains(t, out, "error=NOT_FOUND: card not found: 7")
}

func TestHandleError_PlainErrorBecomesInternal(t *testing.T) {
	var buf bytes.Buffer
	rec := httptest.NewRecorder()

	handleError(rec, requestWithLogger(&buf), stderrors.New("unexpected"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.ErrCodeInternal, body.Error.Code)
	assert.Contains(t, buf.String(), "unexpected")
}
