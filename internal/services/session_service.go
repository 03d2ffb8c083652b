package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
	"github.com/vytor/vocabflash/internal/srs"
	"github.com/vytor/vocabflash/internal/tasks"
)

// DefaultSessionSize is the number of questions in a session unless configured.
const DefaultSessionSize = 20

// RenderKind tags what the front end should show next.
type RenderKind string

const (
	RenderChoice   RenderKind = "choice"
	RenderPrompt   RenderKind = "prompt"
	RenderGrade    RenderKind = "grade"
	RenderComplete RenderKind = "complete"
)

// Render is the next thing to show in a session. Prompt is set for choice
// and prompt renders; the grade render lists the accepted difficulty grades.
type Render struct {
	Kind       RenderKind    `json:"kind"`
	SessionID  int64         `json:"session_id"`
	QuestionID int64         `json:"question_id,omitempty"`
	Number     int           `json:"number,omitempty"`
	Total      int           `json:"total"`
	Prompt     *tasks.Prompt `json:"prompt,omitempty"`
	Grades     []int         `json:"grades,omitempty"`
}

// AnswerOutcome is the result of answering a question.
type AnswerOutcome struct {
	Correct bool `json:"correct"`
	// CorrectAnswerText is set when the answer was wrong or skipped.
	CorrectAnswerText    *string `json:"correct_answer_text"`
	NeedsDifficultyGrade bool    `json:"needs_difficulty_grade"`
	// IntervalDays is the card's current review interval, 0 when a grade is pending.
	IntervalDays int `json:"interval_days"`
}

// GradeResult is the schedule produced by a difficulty grade.
type GradeResult struct {
	IntervalDays int       `json:"interval_days"`
	NextReview   time.Time `json:"next_review"`
}

// SessionService drives practice sessions: it picks the cards, asks the
// questions one by one, scores answers and updates card progress.
type SessionService interface {
	StartSession(ctx context.Context, userID, moduleID int64) (*models.Session, error)
	// GetSession returns the user's session; sessions of other users are NotFound.
	GetSession(ctx context.Context, userID, sessionID int64) (*models.Session, error)
	// AskNext renders the question the session waits on, or the next one.
	// It is idempotent while a question is pending.
	AskNext(ctx context.Context, sessionID int64) (*Render, error)
	SubmitChoice(ctx context.Context, sessionID, questionID int64, selection string) (*AnswerOutcome, error)
	SubmitText(ctx context.Context, sessionID, questionID int64, text string) (*AnswerOutcome, error)
	SubmitDontKnow(ctx context.Context, sessionID, questionID int64) (*AnswerOutcome, error)
	// SubmitMessage answers the pending free text question with a chat message.
	SubmitMessage(ctx context.Context, sessionID int64, text string) (*AnswerOutcome, error)
	SubmitDifficulty(ctx context.Context, sessionID, questionID int64, grade int) (*GradeResult, error)
}

// SessionOption configures a SessionService.
type SessionOption func(*sessionService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *sessionService) { s.now = now }
}

// WithShuffle replaces rand.Shuffle for ordering session cards.
func WithShuffle(shuffle func(n int, swap func(i, j int))) SessionOption {
	return func(s *sessionService) { s.shuffle = shuffle }
}

// WithSessionSize caps the number of questions per session.
func WithSessionSize(n int) SessionOption {
	return func(s *sessionService) {
		if n > 0 {
			s.size = n
		}
	}
}

type sessionService struct {
	store    repository.Store
	registry *tasks.Registry
	now      func() time.Time
	shuffle  func(n int, swap func(i, j int))
	size     int
}

// NewSessionService creates a new SessionService
func NewSessionService(store repository.Store, registry *tasks.Registry, opts ...SessionOption) SessionService {
	s := &sessionService{
		store:    store,
		registry: registry,
		now:      time.Now,
		shuffle:  rand.Shuffle,
		size:     DefaultSessionSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) clock() time.Time {
	return s.now().UTC()
}

func (s *sessionService) StartSession(ctx context.Context, userID, moduleID int64) (*models.Session, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"user_id": userID, "module_id": moduleID})
	log.Debug("starting session")

	if _, err := ownedModule(ctx, s.store, userID, moduleID); err != nil {
		return nil, err
	}

	count, err := s.store.Cards().CountByModule(ctx, moduleID)
	if err != nil {
		log.WithError(err).Error("failed to count cards")
		return nil, errors.NewStoreError(err)
	}
	if count == 0 {
		return nil, errors.NewNoCardsAvailableError(moduleID)
	}

	now := s.clock()
	session := &models.Session{
		UserID:    userID,
		ModuleID:  moduleID,
		State:     models.StateReady,
		StartedAt: now,
	}

	err = s.store.WithTx(ctx, func(st repository.Store) error {
		ids, err := st.Progress().DueCardIDs(ctx, userID, moduleID, now)
		if err != nil {
			return err
		}
		if len(ids) < s.size {
			fresh, err := st.Cards().UnreviewedIDs(ctx, userID, moduleID, s.size-len(ids))
			if err != nil {
				return err
			}
			ids = append(ids, fresh...)
		}
		if len(ids) > s.size {
			ids = ids[:s.size]
		}
		s.shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

		types := s.registry.Types()
		if len(types) == 0 {
			return errors.NewInternalError(fmt.Errorf("no task types registered"))
		}
		for i, id := range ids {
			session.Questions = append(session.Questions, models.Question{
				CardID: id,
				Type:   types[i%len(types)],
			})
		}
		return st.Sessions().Insert(ctx, session)
	})
	if err != nil {
		log.WithError(err).Error("failed to start session")
		return nil, wrapStoreError(err)
	}

	log.Info("session started: id=%d, questions=%d", session.ID, len(session.Questions))
	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, userID, sessionID int64) (*models.Session, error) {
	session, err := loadSession(ctx, s.store, sessionID)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if session.UserID != userID {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	return session, nil
}

func (s *sessionService) AskNext(ctx context.Context, sessionID int64) (*Render, error) {
	log := logger.FromContext(ctx).WithField("session_id", sessionID)

	var render *Render
	err := s.store.WithTx(ctx, func(st repository.Store) error {
		session, err := loadSession(ctx, st, sessionID)
		if err != nil {
			return err
		}
		total := len(session.Questions)

		if session.Completed {
			render = &Render{Kind: RenderComplete, SessionID: sessionID, Total: total}
			return nil
		}
		// Questions disappear with their cards, so the cursor follows the
		// pending question rather than the other way round.
		if session.PendingQuestionID != nil {
			if i := session.PendingIndex(); i >= 0 {
				session.Cursor = i
			} else {
				session.PendingQuestionID = nil
				session.State = models.StateReady
			}
		}
		if session.State == models.StateAwaitingGrade {
			render = gradeRender(session)
			return nil
		}

		// Asking again while a question is pending regenerates it.
		for session.Cursor < total {
			q := session.Questions[session.Cursor]
			task, prompt, err := s.generate(ctx, st, q)
			if err != nil {
				return err
			}
			if task == nil {
				session.Cursor++
				continue
			}

			session.PendingQuestionID = &q.ID
			session.State = models.StateAwaitingAnswer
			kind := RenderChoice
			if task.Input() == tasks.FreeText {
				session.State = models.StateAwaitingText
				kind = RenderPrompt
			}
			if err := st.Sessions().UpdateState(ctx, *session); err != nil {
				return err
			}
			render = &Render{
				Kind:       kind,
				SessionID:  sessionID,
				QuestionID: q.ID,
				Number:     session.Cursor + 1,
				Total:      total,
				Prompt:     &prompt,
			}
			return nil
		}

		now := s.clock()
		session.Completed = true
		session.State = models.StateComplete
		session.PendingQuestionID = nil
		session.EndedAt = &now
		if err := st.Sessions().UpdateState(ctx, *session); err != nil {
			return err
		}
		log.Info("session complete: questions=%d", total)
		render = &Render{Kind: RenderComplete, SessionID: sessionID, Total: total}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("failed to ask next question")
		return nil, wrapStoreError(err)
	}
	return render, nil
}

// generate renders q. A nil task means the question cannot be asked and is
// skipped: its card is gone or its type is not registered.
func (s *sessionService) generate(ctx context.Context, st repository.Store, q models.Question) (tasks.Task, tasks.Prompt, error) {
	log := logger.FromContext(ctx).WithField("question_id", q.ID)

	card, err := st.Cards().Get(ctx, q.CardID)
	if err != nil {
		return nil, tasks.Prompt{}, err
	}
	if card == nil {
		log.Warn("skipping question: card %d no longer exists", q.CardID)
		return nil, tasks.Prompt{}, nil
	}
	task, ok := s.registry.Get(q.Type)
	if !ok {
		log.Warn("skipping question: %v", errors.NewUnknownTaskTypeError(string(q.Type)))
		return nil, tasks.Prompt{}, nil
	}
	prompt, err := task.Generate(ctx, st, q, *card)
	if err != nil {
		return nil, tasks.Prompt{}, err
	}
	return task, prompt, nil
}

func gradeRender(session *models.Session) *Render {
	grades := make([]int, 0, srs.MaxDifficulty-srs.MinDifficulty+1)
	for g := srs.MinDifficulty; g <= srs.MaxDifficulty; g++ {
		grades = append(grades, g)
	}
	return &Render{
		Kind:       RenderGrade,
		SessionID:  session.ID,
		QuestionID: *session.PendingQuestionID,
		Number:     session.Cursor + 1,
		Total:      len(session.Questions),
		Grades:     grades,
	}
}

func (s *sessionService) SubmitChoice(ctx context.Context, sessionID, questionID int64, selection string) (*AnswerOutcome, error) {
	return s.answer(ctx, sessionID, questionID, answerRequest{
		state:  models.StateAwaitingAnswer,
		answer: tasks.Answer{Selection: selection},
	})
}

func (s *sessionService) SubmitText(ctx context.Context, sessionID, questionID int64, text string) (*AnswerOutcome, error) {
	return s.answer(ctx, sessionID, questionID, answerRequest{
		state:  models.StateAwaitingText,
		answer: tasks.Answer{Text: text},
	})
}

func (s *sessionService) SubmitDontKnow(ctx context.Context, sessionID, questionID int64) (*AnswerOutcome, error) {
	return s.answer(ctx, sessionID, questionID, answerRequest{dontKnow: true})
}

func (s *sessionService) SubmitMessage(ctx context.Context, sessionID int64, text string) (*AnswerOutcome, error) {
	session, err := loadSession(ctx, s.store, sessionID)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if session.State != models.StateAwaitingText || session.PendingQuestionID == nil {
		return nil, errors.NewValidationError("text", "no question is waiting for a typed answer")
	}
	return s.SubmitText(ctx, sessionID, *session.PendingQuestionID, text)
}

type answerRequest struct {
	// state the session must be in; empty accepts any answer state.
	state    models.SessionState
	answer   tasks.Answer
	dontKnow bool
}

func (s *sessionService) answer(ctx context.Context, sessionID, questionID int64, req answerRequest) (*AnswerOutcome, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"session_id": sessionID, "question_id": questionID})

	var outcome *AnswerOutcome
	var skipped models.TaskType
	err := s.store.WithTx(ctx, func(st repository.Store) error {
		session, err := loadSession(ctx, st, sessionID)
		if err != nil {
			return err
		}
		q, ok := session.Question(questionID)
		if !ok {
			return errors.NewNotFoundError("question", questionID)
		}
		if !session.Pending(questionID) {
			return errors.NewValidationError("question_id", "is not the question being asked")
		}
		if q.Answered {
			return errors.NewValidationError("question_id", "was already answered")
		}
		if req.state != "" && session.State != req.state {
			return errors.NewValidationError("answer", "does not match the question type")
		}

		card, err := st.Cards().Get(ctx, q.CardID)
		if err != nil {
			return err
		}
		if card == nil {
			return errors.NewNotFoundError("card", q.CardID)
		}
		task, ok := s.registry.Get(q.Type)
		if !ok {
			// The question cannot be scored; move past it like AskNext does.
			skipped = q.Type
			return advance(ctx, st, session)
		}

		correct := false
		if !req.dontKnow {
			if correct, err = task.Check(ctx, st, q, *card, req.answer); err != nil {
				return err
			}
		}
		if err := st.Questions().MarkAnswered(ctx, q.ID, correct); err != nil {
			return err
		}

		progress, err := st.Progress().Get(ctx, session.UserID, card.ID)
		if err != nil {
			return err
		}
		now := s.clock()

		switch {
		case correct && (progress == nil || progress.PastDue(now)):
			session.State = models.StateAwaitingGrade
			if err := st.Sessions().UpdateState(ctx, *session); err != nil {
				return err
			}
			outcome = &AnswerOutcome{Correct: true, NeedsDifficultyGrade: true}
			return nil
		case correct:
			outcome = &AnswerOutcome{Correct: true, IntervalDays: progress.IntervalDays}
		default:
			p := progressOrDefault(progress, session.UserID, card.ID)
			p.Repetitions = 0
			p.IntervalDays = 1
			p.NextReview = now
			p.LastReviewed = &now
			if err := st.Progress().Upsert(ctx, p); err != nil {
				return err
			}
			reveal := task.Reveal(*card)
			outcome = &AnswerOutcome{CorrectAnswerText: &reveal, IntervalDays: p.IntervalDays}
		}
		return advance(ctx, st, session)
	})
	if err != nil {
		if _, ok := errors.As(err); !ok {
			log.WithError(err).Error("failed to record answer")
		}
		return nil, wrapStoreError(err)
	}
	if skipped != "" {
		unknown := errors.NewUnknownTaskTypeError(string(skipped))
		log.Warn("skipping question: %v", unknown)
		return nil, unknown
	}

	log.Debug("answer recorded: correct=%t, grade=%t", outcome.Correct, outcome.NeedsDifficultyGrade)
	return outcome, nil
}

func (s *sessionService) SubmitDifficulty(ctx context.Context, sessionID, questionID int64, grade int) (*GradeResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"session_id": sessionID, "question_id": questionID})

	if !srs.ValidDifficulty(grade) {
		return nil, errors.NewValidationError("difficulty", "must be between 0 and 5")
	}

	var result *GradeResult
	err := s.store.WithTx(ctx, func(st repository.Store) error {
		session, err := loadSession(ctx, st, sessionID)
		if err != nil {
			return err
		}
		if session.State != models.StateAwaitingGrade || !session.Pending(questionID) {
			return errors.NewConflictError("no difficulty grade was requested for this question")
		}
		q, ok := session.Question(questionID)
		if !ok {
			return errors.NewNotFoundError("question", questionID)
		}

		if err := st.Questions().SetDifficulty(ctx, q.ID, grade); err != nil {
			return err
		}

		current, err := st.Progress().Get(ctx, session.UserID, q.CardID)
		if err != nil {
			return err
		}
		p := progressOrDefault(current, session.UserID, q.CardID)
		next := srs.NextState(p.Repetitions, p.EaseFactor, grade, p.IntervalDays)

		now := s.clock()
		p.Repetitions = next.Repetitions
		p.EaseFactor = next.EaseFactor
		p.IntervalDays = next.Interval
		p.NextReview = srs.NextReview(now, next.Interval)
		p.LastReviewed = &now
		if err := st.Progress().Upsert(ctx, p); err != nil {
			return err
		}

		result = &GradeResult{IntervalDays: p.IntervalDays, NextReview: p.NextReview}
		return advance(ctx, st, session)
	})
	if err != nil {
		if _, ok := errors.As(err); !ok {
			log.WithError(err).Error("failed to record difficulty")
		}
		return nil, wrapStoreError(err)
	}

	log.Debug("difficulty recorded: grade=%d, interval=%d", grade, result.IntervalDays)
	return result, nil
}

func progressOrDefault(p *models.Progress, userID, cardID int64) models.Progress {
	if p != nil {
		return *p
	}
	return models.Progress{
		UserID:     userID,
		CardID:     cardID,
		EaseFactor: srs.DefaultEaseFactor,
	}
}

// advance moves the cursor past the pending question.
func advance(ctx context.Context, st repository.Store, session *models.Session) error {
	if i := session.PendingIndex(); i >= 0 {
		session.Cursor = i
	}
	session.Cursor++
	session.State = models.StateReady
	session.PendingQuestionID = nil
	return st.Sessions().UpdateState(ctx, *session)
}

func loadSession(ctx context.Context, st repository.Store, sessionID int64) (*models.Session, error) {
	session, err := st.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	return session, nil
}

// wrapStoreError passes application errors through and turns anything else
// into a store error.
func wrapStoreError(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewStoreError(err)
}
