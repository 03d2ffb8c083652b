package services_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/vocabflash/internal/db"
	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
	"github.com/vytor/vocabflash/internal/repository/sqlite"
	"github.com/vytor/vocabflash/internal/services"
	"github.com/vytor/vocabflash/internal/tasks"
	"github.com/vytor/vocabflash/internal/testutil"
)

func noShuffle(int, func(i, j int)) {}

type SessionServiceSuite struct {
	suite.Suite
	db       *db.DB
	store    repository.Store
	now      time.Time
	userID   int64
	moduleID int64
}

func (s *SessionServiceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewStore(s.db.DB)
	s.now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	s.userID = testutil.SeedUser(s.T(), s.db.DB, "100")
	s.moduleID = testutil.SeedModule(s.T(), s.db.DB, s.userID, "words")
}

func (s *SessionServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SessionServiceSuite) service(registry *tasks.Registry, opts ...services.SessionOption) services.SessionService {
	if registry == nil {
		registry = tasks.NewRegistry(tasks.NewDefinitionTask(), tasks.NewChoiceTask(noShuffle))
	}
	opts = append([]services.SessionOption{
		services.WithClock(func() time.Time { return s.now }),
		services.WithShuffle(noShuffle),
	}, opts...)
	return services.NewSessionService(s.store, registry, opts...)
}

func (s *SessionServiceSuite) progress(userID, cardID int64) *models.Progress {
	p, err := s.store.Progress().Get(context.Background(), userID, cardID)
	s.Require().NoError(err)
	return p
}

func (s *SessionServiceSuite) question(id int64) *models.Question {
	q, err := s.store.Questions().Get(context.Background(), id)
	s.Require().NoError(err)
	s.Require().NotNil(q)
	return q
}

func (s *SessionServiceSuite) assertCode(err error, code string) {
	s.Require().Error(err)
	s.True(errors.HasCode(err, code), "want %s, got %v", code, err)
}

func (s *SessionServiceSuite) TestStartSession_CapsAtSessionSizeWithRoundRobinTypes() {
	testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 25)
	svc := s.service(nil)

	session, err := svc.StartSession(context.Background(), s.userID, s.moduleID)
	s.Require().NoError(err)
	s.Require().Len(session.Questions, services.DefaultSessionSize)

	seen := map[int64]bool{}
	for i, q := range session.Questions {
		s.False(seen[q.CardID], "card %d asked twice", q.CardID)
		seen[q.CardID] = true
		if i%2 == 0 {
			s.Equal(models.TaskDefinition, q.Type)
		} else {
			s.Equal(models.TaskChoice, q.Type)
		}
	}
	s.Equal(models.StateReady, session.State)
	s.Equal(0, session.Cursor)
}

func (s *SessionServiceSuite) TestStartSession_DueCardsBeforeNewOnes() {
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 5)
	testutil.SeedProgress(s.T(), s.db.DB, s.userID, ids[4], 2, 3, s.now.Add(-48*time.Hour))
	testutil.SeedProgress(s.T(), s.db.DB, s.userID, ids[3], 2, 3, s.now)
	testutil.SeedProgress(s.T(), s.db.DB, s.userID, ids[2], 2, 3, s.now.Add(time.Hour))

	session, err := s.service(nil, services.WithSessionSize(3)).StartSession(context.Background(), s.userID, s.moduleID)
	s.Require().NoError(err)

	var cards []int64
	for _, q := range session.Questions {
		cards = append(cards, q.CardID)
	}
	s.Equal([]int64{ids[4], ids[3], ids[0]}, cards)
}

func (s *SessionServiceSuite) TestStartSession_Errors() {
	ctx := context.Background()
	svc := s.service(nil)

	_, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.assertCode(err, errors.ErrCodeNoCardsAvailable)

	_, err = svc.StartSession(ctx, s.userID, 9999)
	s.assertCode(err, errors.ErrCodeNotFound)

	other := testutil.SeedUser(s.T(), s.db.DB, "200")
	testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 1)
	_, err = svc.StartSession(ctx, other, s.moduleID)
	s.assertCode(err, errors.ErrCodeNotFound)
}

func (s *SessionServiceSuite) TestNothingDueCompletesImmediately() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 2)
	for _, id := range ids {
		testutil.SeedProgress(s.T(), s.db.DB, s.userID, id, 3, 10, s.now.AddDate(0, 0, 5))
	}
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	s.Empty(session.Questions)

	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(services.RenderComplete, render.Kind)

	stored, err := svc.GetSession(ctx, s.userID, session.ID)
	s.Require().NoError(err)
	s.True(stored.Completed)
	s.NotNil(stored.EndedAt)
}

func (s *SessionServiceSuite) TestCorrectNewCardAsksForGradeOnce() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 1)
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)

	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(services.RenderPrompt, render.Kind)
	s.Equal(1, render.Number)
	s.Equal(1, render.Total)
	s.Require().NotNil(render.Prompt)
	s.Equal("phrase 1", render.Prompt.Phrase)
	qid := render.QuestionID

	outcome, err := svc.SubmitText(ctx, session.ID, qid, "  Definition 1 ")
	s.Require().NoError(err)
	s.True(outcome.Correct)
	s.True(outcome.NeedsDifficultyGrade)
	s.Nil(outcome.CorrectAnswerText)
	s.Nil(s.progress(s.userID, ids[0]), "progress is only written once graded")

	for range 2 {
		render, err = svc.AskNext(ctx, session.ID)
		s.Require().NoError(err)
		s.Equal(services.RenderGrade, render.Kind)
		s.Equal(qid, render.QuestionID)
		s.Equal([]int{0, 1, 2, 3, 4, 5}, render.Grades)
	}

	result, err := svc.SubmitDifficulty(ctx, session.ID, qid, 5)
	s.Require().NoError(err)
	s.Equal(1, result.IntervalDays)
	s.True(result.NextReview.Equal(s.now.AddDate(0, 0, 1)))

	p := s.progress(s.userID, ids[0])
	s.Require().NotNil(p)
	s.Equal(1, p.Repetitions)
	s.InDelta(2.2, p.EaseFactor, 1e-9)
	s.Equal(1, p.IntervalDays)

	q := s.question(qid)
	s.True(q.Answered)
	s.Require().NotNil(q.Difficulty)
	s.Equal(5, *q.Difficulty)

	_, err = svc.SubmitDifficulty(ctx, session.ID, qid, 4)
	s.assertCode(err, errors.ErrCodeConflict)

	render, err = svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(services.RenderComplete, render.Kind)
}

func (s *SessionServiceSuite) TestDifficultyRejectedWithoutPrompt() {
	ctx := context.Background()
	testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 1)
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)

	_, err = svc.SubmitDifficulty(ctx, session.ID, render.QuestionID, 3)
	s.assertCode(err, errors.ErrCodeConflict)

	_, err = svc.SubmitDifficulty(ctx, session.ID, render.QuestionID, 6)
	s.assertCode(err, errors.ErrCodeValidation)
}

func (s *SessionServiceSuite) TestIncorrectAnswerAppliesFailureUpdate() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 1)
	testutil.SeedProgress(s.T(), s.db.DB, s.userID, ids[0], 3, 10, s.now.Add(-time.Hour))
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)

	outcome, err := svc.SubmitText(ctx, session.ID, render.QuestionID, "something else entirely")
	s.Require().NoError(err)
	s.False(outcome.Correct)
	s.False(outcome.NeedsDifficultyGrade)
	s.Require().NotNil(outcome.CorrectAnswerText)
	s.Equal("definition 1", *outcome.CorrectAnswerText)

	p := s.progress(s.userID, ids[0])
	s.Equal(0, p.Repetitions)
	s.Equal(1, p.IntervalDays)
	s.InDelta(2.5, p.EaseFactor, 1e-9, "failure leaves ease untouched")
	s.True(p.NextReview.Equal(s.now))
	s.Require().NotNil(p.LastReviewed)
	s.True(p.LastReviewed.Equal(s.now))

	q := s.question(render.QuestionID)
	s.True(q.Answered)
	s.Require().NotNil(q.Correct)
	s.False(*q.Correct)
}

func (s *SessionServiceSuite) TestDontKnowCreatesDefaultProgress() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 1)
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)

	outcome, err := svc.SubmitDontKnow(ctx, session.ID, render.QuestionID)
	s.Require().NoError(err)
	s.False(outcome.Correct)
	s.Equal("definition 1", *outcome.CorrectAnswerText)

	p := s.progress(s.userID, ids[0])
	s.Require().NotNil(p)
	s.InDelta(2.1, p.EaseFactor, 1e-9)
	s.Equal(1, p.IntervalDays)
	s.Equal(0, p.Repetitions)

	_, err = svc.SubmitDontKnow(ctx, session.ID, render.QuestionID)
	s.assertCode(err, errors.ErrCodeValidation)
}

func (s *SessionServiceSuite) TestFailureThenPerfectGradeInNextSession() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 1)
	svc := s.service(tasks.NewRegistry(tasks.NewDefinitionTask()))

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	_, err = svc.SubmitDontKnow(ctx, session.ID, render.QuestionID)
	s.Require().NoError(err)

	p := s.progress(s.userID, ids[0])
	s.Equal(0, p.Repetitions)
	s.Equal(1, p.IntervalDays)

	s.now = s.now.Add(time.Hour)
	session, err = svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	s.Require().Len(session.Questions, 1, "the failed card is due again")
	render, err = svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)

	outcome, err := svc.SubmitText(ctx, session.ID, render.QuestionID, "definition 1")
	s.Require().NoError(err)
	s.True(outcome.Correct)
	s.True(outcome.NeedsDifficultyGrade, "the failed card is past due")

	result, err := svc.SubmitDifficulty(ctx, session.ID, render.QuestionID, 5)
	s.Require().NoError(err)
	s.Equal(1, result.IntervalDays)

	p = s.progress(s.userID, ids[0])
	s.Equal(1, p.Repetitions)
	s.Equal(1, p.IntervalDays)
	s.InDelta(2.2, p.EaseFactor, 1e-9)
	s.True(p.NextReview.Equal(s.now.AddDate(0, 0, 1)))
}

func (s *SessionServiceSuite) TestAnswerToUnregisteredTypeSkipsQuestion() {
	ctx := context.Background()
	testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 2)
	asker := s.service(tasks.NewRegistry(tasks.NewDefinitionTask()))
	scorer := s.service(tasks.NewRegistry(tasks.NewChoiceTask(noShuffle)))

	session, err := asker.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	render, err := asker.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	first := render.QuestionID

	_, err = scorer.SubmitDontKnow(ctx, session.ID, first)
	s.assertCode(err, errors.ErrCodeUnknownTaskType)
	s.False(s.question(first).Answered)

	render, err = asker.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(services.RenderPrompt, render.Kind)
	s.NotEqual(first, render.QuestionID)
	s.Equal(2, render.Number)
}

func (s *SessionServiceSuite) TestCorrectButNotPastDueSkipsGrade() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 1)
	// Due exactly now: selected for the session but not strictly past due.
	testutil.SeedProgress(s.T(), s.db.DB, s.userID, ids[0], 2, 4, s.now)
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	s.Require().Len(session.Questions, 1)
	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)

	outcome, err := svc.SubmitText(ctx, session.ID, render.QuestionID, "definition 1")
	s.Require().NoError(err)
	s.True(outcome.Correct)
	s.False(outcome.NeedsDifficultyGrade)
	s.Equal(4, outcome.IntervalDays)

	p := s.progress(s.userID, ids[0])
	s.Equal(2, p.Repetitions)
	s.Equal(4, p.IntervalDays)

	render, err = svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(services.RenderComplete, render.Kind)
}

func (s *SessionServiceSuite) TestChoiceQuestionReusesOptions() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 6)
	svc := s.service(tasks.NewRegistry(tasks.NewChoiceTask(noShuffle)), services.WithSessionSize(1))

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)

	first, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(services.RenderChoice, first.Kind)
	s.Require().Len(first.Prompt.Options, 4)

	again, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(first.QuestionID, again.QuestionID)
	s.Equal(first.Prompt.Options, again.Prompt.Options)

	var n int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM question_options WHERE question_id = ?`, first.QuestionID).Scan(&n))
	s.Equal(4, n)

	_, err = svc.SubmitText(ctx, session.ID, first.QuestionID, "definition 1")
	s.assertCode(err, errors.ErrCodeValidation)

	_, err = svc.SubmitChoice(ctx, session.ID, first.QuestionID, "")
	s.assertCode(err, errors.ErrCodeValidation)
	s.False(s.question(first.QuestionID).Answered, "rejected answers leave the question open")

	outcome, err := svc.SubmitChoice(ctx, session.ID, first.QuestionID, tasks.FakeSelection)
	s.Require().NoError(err)
	s.False(outcome.Correct)
	s.Equal("definition 1", *outcome.CorrectAnswerText)
	s.NotNil(s.progress(s.userID, ids[0]))
}

func (s *SessionServiceSuite) TestChoiceCorrectSelection() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 3)
	svc := s.service(tasks.NewRegistry(tasks.NewChoiceTask(noShuffle)), services.WithSessionSize(1))

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Len(render.Prompt.Options, 3)
	s.Equal(strconv.FormatInt(ids[0], 10), render.Prompt.Options[0].Value)

	outcome, err := svc.SubmitChoice(ctx, session.ID, render.QuestionID, render.Prompt.Options[0].Value)
	s.Require().NoError(err)
	s.True(outcome.Correct)
	s.True(outcome.NeedsDifficultyGrade)
}

func (s *SessionServiceSuite) TestSubmitMessage() {
	ctx := context.Background()
	testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 2)
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)

	_, err = svc.SubmitMessage(ctx, session.ID, "definition 1")
	s.assertCode(err, errors.ErrCodeValidation)

	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(services.RenderPrompt, render.Kind)

	outcome, err := svc.SubmitMessage(ctx, session.ID, "definitoin 1")
	s.Require().NoError(err)
	s.True(outcome.Correct, "small typos are accepted")

	_, err = svc.SubmitMessage(ctx, session.ID, "definition 1")
	s.assertCode(err, errors.ErrCodeValidation)
}

func (s *SessionServiceSuite) TestAnswerRejectsQuestionThatIsNotPending() {
	ctx := context.Background()
	testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 2)
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	_, err = svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)

	_, err = svc.SubmitDontKnow(ctx, session.ID, session.Questions[1].ID)
	s.assertCode(err, errors.ErrCodeValidation)

	_, err = svc.SubmitDontKnow(ctx, session.ID, 424242)
	s.assertCode(err, errors.ErrCodeNotFound)

	_, err = svc.SubmitDontKnow(ctx, 424242, session.Questions[0].ID)
	s.assertCode(err, errors.ErrCodeNotFound)
}

func (s *SessionServiceSuite) TestSkipsMissingCardsAndUnknownTypes() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 3)
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	s.Require().Len(session.Questions, 3)

	_, err = s.db.Exec(`UPDATE questions SET type = 'translate' WHERE id = ?`, session.Questions[0].ID)
	s.Require().NoError(err)
	// Drop the card without cascading so its question stays behind.
	_, err = s.db.Exec(`PRAGMA foreign_keys = OFF`)
	s.Require().NoError(err)
	_, err = s.db.Exec(`DELETE FROM cards WHERE id = ?`, ids[1])
	s.Require().NoError(err)
	_, err = s.db.Exec(`PRAGMA foreign_keys = ON`)
	s.Require().NoError(err)

	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.Questions[2].ID, render.QuestionID)
	s.Equal(3, render.Number)
	s.Equal(3, render.Total)
}

func (s *SessionServiceSuite) TestDeletedCardDropsPendingQuestion() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 2)
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	first, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.Questions[0].ID, first.QuestionID)

	s.Require().NoError(s.store.Cards().Delete(ctx, ids[0]))

	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.Questions[1].ID, render.QuestionID)
	s.Equal(1, render.Total)
}

func (s *SessionServiceSuite) TestProgressIsScopedPerUser() {
	ctx := context.Background()
	ids := testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 1)
	other := testutil.SeedUser(s.T(), s.db.DB, "200")
	testutil.SeedProgress(s.T(), s.db.DB, other, ids[0], 4, 20, s.now.AddDate(0, 0, 10))
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)
	s.Require().Len(session.Questions, 1, "another user's schedule does not hide the card")

	render, err := svc.AskNext(ctx, session.ID)
	s.Require().NoError(err)
	outcome, err := svc.SubmitText(ctx, session.ID, render.QuestionID, "definition 1")
	s.Require().NoError(err)
	s.True(outcome.NeedsDifficultyGrade)

	_, err = svc.SubmitDifficulty(ctx, session.ID, render.QuestionID, 3)
	s.Require().NoError(err)

	theirs := s.progress(other, ids[0])
	s.Equal(4, theirs.Repetitions)
	s.Equal(20, theirs.IntervalDays)
	mine := s.progress(s.userID, ids[0])
	s.Equal(1, mine.Repetitions)
}

func (s *SessionServiceSuite) TestGetSessionHidesOtherUsersSessions() {
	ctx := context.Background()
	testutil.SeedCards(s.T(), s.db.DB, s.moduleID, 1)
	svc := s.service(nil)

	session, err := svc.StartSession(ctx, s.userID, s.moduleID)
	s.Require().NoError(err)

	other := testutil.SeedUser(s.T(), s.db.DB, "200")
	_, err = svc.GetSession(ctx, other, session.ID)
	s.assertCode(err, errors.ErrCodeNotFound)
}

func TestSessionServiceSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceSuite))
}
