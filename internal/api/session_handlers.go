package api

import (
	"net/http"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/services"
)

type startSessionRequest struct {
	ModuleID int64 `json:"module_id" validate:"required,gt=0"`
}

type choiceRequest struct {
	Selection string `json:"selection" validate:"required"`
}

type textRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type difficultyRequest struct {
	Grade *int `json:"grade" validate:"required,min=0,max=5"`
}

type startSessionResponse struct {
	SessionID int64            `json:"session_id"`
	Total     int              `json:"total"`
	Next      *services.Render `json:"next"`
}

type answerResponse struct {
	*services.AnswerOutcome
	Next *services.Render `json:"next,omitempty"`
}

type gradeResponse struct {
	*services.GradeResult
	Next *services.Render `json:"next"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.SessionService.StartSession(r.Context(), user.ID, req.ModuleID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.Sessions.Set(user.ID, session.ID)

	next, err := s.askNext(r, user.ID, session.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("session %d started for module %d", session.ID, req.ModuleID)
	writeJSON(w, http.StatusCreated, startSessionResponse{
		SessionID: session.ID,
		Total:     len(session.Questions),
		Next:      next,
	})
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	sessionID, ok := s.Sessions.Get(user.ID)
	if !ok {
		handleError(w, r, errors.NewNotFoundError("active session for user", user.ExternalID))
		return
	}

	next, err := s.askNext(r, user.ID, sessionID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleSubmitChoice(w http.ResponseWriter, r *http.Request) {
	var req choiceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	s.submitAnswer(w, r, func(sessionID, questionID int64) (*services.AnswerOutcome, error) {
		return s.SessionService.SubmitChoice(r.Context(), sessionID, questionID, req.Selection)
	})
}

func (s *Server) handleSubmitText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	s.submitAnswer(w, r, func(sessionID, questionID int64) (*services.AnswerOutcome, error) {
		return s.SessionService.SubmitText(r.Context(), sessionID, questionID, req.Text)
	})
}

func (s *Server) handleSubmitDontKnow(w http.ResponseWriter, r *http.Request) {
	s.submitAnswer(w, r, func(sessionID, questionID int64) (*services.AnswerOutcome, error) {
		return s.SessionService.SubmitDontKnow(r.Context(), sessionID, questionID)
	})
}

func (s *Server) handleSubmitDifficulty(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req difficultyRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	sessionID, questionID, err := s.ownedQuestion(r, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.SessionService.SubmitDifficulty(r.Context(), sessionID, questionID, *req.Grade)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("question %d graded %d, next review in %d days", questionID, *req.Grade, result.IntervalDays)

	next, err := s.askNext(r, user.ID, sessionID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gradeResponse{GradeResult: result, Next: next})
}

// handleMessage treats a chat message as the answer to the active session's
// pending free text question.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	sessionID, ok := s.Sessions.Get(user.ID)
	if !ok {
		handleError(w, r, errors.NewValidationError("text", "no session is in progress"))
		return
	}

	outcome, err := s.SessionService.SubmitMessage(r.Context(), sessionID, req.Text)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.writeOutcome(w, r, user.ID, sessionID, outcome)
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request, submit func(sessionID, questionID int64) (*services.AnswerOutcome, error)) {
	user := userFromContext(r.Context())

	sessionID, questionID, err := s.ownedQuestion(r, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	outcome, err := submit(sessionID, questionID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.writeOutcome(w, r, user.ID, sessionID, outcome)
}

func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, userID, sessionID int64, outcome *services.AnswerOutcome) {
	resp := answerResponse{AnswerOutcome: outcome}
	if !outcome.NeedsDifficultyGrade {
		next, err := s.askNext(r, userID, sessionID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		resp.Next = next
	}
	writeJSON(w, http.StatusOK, resp)
}

// ownedQuestion reads the session and question ids from the URL and checks
// the session belongs to userID.
func (s *Server) ownedQuestion(r *http.Request, userID int64) (int64, int64, error) {
	sessionID, err := idParam(r, "sessionID")
	if err != nil {
		return 0, 0, err
	}
	questionID, err := idParam(r, "questionID")
	if err != nil {
		return 0, 0, err
	}
	if _, err := s.SessionService.GetSession(r.Context(), userID, sessionID); err != nil {
		return 0, 0, err
	}
	return sessionID, questionID, nil
}

// askNext renders the session's next step and forgets the session once it is complete.
func (s *Server) askNext(r *http.Request, userID, sessionID int64) (*services.Render, error) {
	next, err := s.SessionService.AskNext(r.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	if next.Kind == services.RenderComplete {
		s.Sessions.Clear(userID, sessionID)
	}
	return next, nil
}
