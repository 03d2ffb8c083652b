package api

import (
	"net/http"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, message string) map[string]errorPayload {
	return map[string]errorPayload{"error": {Code: code, Message: message}}
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	log = log.WithField("code", appErr.Code).WithError(appErr)
	if appErr.Status >= 500 {
		log.Error("server error")
	} else if appErr.Status >= 400 {
		log.Warn("client error")
	} else {
		log.Debug("error")
	}

	writeJSON(w, appErr.Status, errorBody(appErr.Code, appErr.Message))
}
