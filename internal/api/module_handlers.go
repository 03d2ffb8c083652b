package api

import (
	"net/http"

	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/services"
)

type createModuleRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Fields      []string `json:"fields" validate:"max=10,dive,max=50"`
}

type cardRequest struct {
	Phrase     string            `json:"phrase" validate:"required,max=200"`
	Definition string            `json:"definition" validate:"required,max=500"`
	Hint       *string           `json:"hint" validate:"omitempty,max=200"`
	Fields     map[string]string `json:"fields" validate:"max=10,dive,max=500"`
}

func (c cardRequest) input() services.CardInput {
	return services.CardInput{
		Phrase:     c.Phrase,
		Definition: c.Definition,
		Hint:       c.Hint,
		Fields:     c.Fields,
	}
}

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	modules, err := s.CatalogService.ListModules(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

func (s *Server) handleCreateModule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req createModuleRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	module, err := s.CatalogService.CreateModule(r.Context(), user.ID, req.Name, req.Description, req.Fields)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("module created: id=%d", module.ID)
	writeJSON(w, http.StatusCreated, module)
}

func (s *Server) handleGetModule(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	moduleID, err := idParam(r, "moduleID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	module, err := s.CatalogService.GetModule(r.Context(), user.ID, moduleID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}

func (s *Server) handleDeleteModule(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	moduleID, err := idParam(r, "moduleID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.CatalogService.DeleteModule(r.Context(), user.ID, moduleID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	moduleID, err := idParam(r, "moduleID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.CatalogService.ListCards(r.Context(), user.ID, moduleID, page)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	moduleID, err := idParam(r, "moduleID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CatalogService.AddCard(r.Context(), user.ID, moduleID, req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	cardID, err := idParam(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CatalogService.GetCard(r.Context(), user.ID, cardID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	cardID, err := idParam(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CatalogService.UpdateCard(r.Context(), user.ID, cardID, req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	cardID, err := idParam(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.CatalogService.DeleteCard(r.Context(), user.ID, cardID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
