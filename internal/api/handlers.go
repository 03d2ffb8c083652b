package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/vytor/vocabflash/internal/db"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/services"
)

type Server struct {
	DB             *db.DB
	UserService    services.UserService
	CatalogService services.CatalogService
	SessionService services.SessionService
	StatsService   services.StatsService
	Sessions       *ActiveSessions
	Now            func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type upsertUserRequest struct {
	Name     string `json:"name" validate:"max=128"`
	Username string `json:"username" validate:"max=64"`
}

func (s *Server) handleUpsertUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req upsertUserRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user, err := s.UserService.GetOrCreate(r.Context(), externalIDParam(r), models.UserInfo{
		Name:     strings.TrimSpace(req.Name),
		Username: strings.TrimSpace(req.Username),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("user upserted: id=%d", user.ID)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	stats, err := s.StatsService.Summary(r.Context(), user.ID, s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
