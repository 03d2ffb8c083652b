package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/vocabflash/internal/db"
	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/repository/sqlite"
	"github.com/vytor/vocabflash/internal/services"
	"github.com/vytor/vocabflash/internal/testutil"
)

type CatalogServiceSuite struct {
	suite.Suite
	db     *db.DB
	svc    services.CatalogService
	userID int64
}

func (s *CatalogServiceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.svc = services.NewCatalogService(sqlite.NewStore(s.db.DB), 0)
	s.userID = testutil.SeedUser(s.T(), s.db.DB, "100")
}

func (s *CatalogServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CatalogServiceSuite) TestCreateModuleNormalizesFields() {
	ctx := context.Background()

	module, err := s.svc.CreateModule(ctx, s.userID, "  Verbs ", "irregular", []string{" past ", "", "Past", "participle"})
	s.Require().NoError(err)
	s.Equal("Verbs", module.Name)
	s.Require().Len(module.CustomFields, 2)
	s.Equal("past", module.CustomFields[0].Name)
	s.Equal("participle", module.CustomFields[1].Name)

	_, err = s.svc.CreateModule(ctx, s.userID, " ", "", nil)
	s.True(errors.HasCode(err, errors.ErrCodeValidation))

	list, err := s.svc.ListModules(ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(0, list[0].CardCount)
}

func (s *CatalogServiceSuite) TestCardLifecycle() {
	ctx := context.Background()
	module, err := s.svc.CreateModule(ctx, s.userID, "words", "", []string{"example"})
	s.Require().NoError(err)

	hint := " animal "
	card, err := s.svc.AddCard(ctx, s.userID, module.ID, services.CardInput{
		Phrase:     "cat",
		Definition: "кот, кошка",
		Hint:       &hint,
		Fields:     map[string]string{"Example": "the cat sleeps"},
	})
	s.Require().NoError(err)
	s.Equal("animal", card.HintText())
	s.Require().Len(card.Fields, 1)
	s.Equal("example", card.Fields[0].Name)

	_, err = s.svc.AddCard(ctx, s.userID, module.ID, services.CardInput{Phrase: "dog"})
	s.True(errors.HasCode(err, errors.ErrCodeValidation))

	_, err = s.svc.AddCard(ctx, s.userID, module.ID, services.CardInput{
		Phrase: "dog", Definition: "собака", Fields: map[string]string{"colour": "brown"},
	})
	s.True(errors.HasCode(err, errors.ErrCodeValidation))

	updated, err := s.svc.UpdateCard(ctx, s.userID, card.ID, services.CardInput{Phrase: "cat", Definition: "кошка"})
	s.Require().NoError(err)
	s.Equal("кошка", updated.Definition)
	s.Nil(updated.Hint)
	s.Empty(updated.Fields)

	other := testutil.SeedUser(s.T(), s.db.DB, "200")
	_, err = s.svc.GetCard(ctx, other, card.ID)
	s.True(errors.HasCode(err, errors.ErrCodeNotFound))
	s.True(errors.HasCode(s.svc.DeleteCard(ctx, other, card.ID), errors.ErrCodeNotFound))

	s.Require().NoError(s.svc.DeleteCard(ctx, s.userID, card.ID))
	_, err = s.svc.GetCard(ctx, s.userID, card.ID)
	s.True(errors.HasCode(err, errors.ErrCodeNotFound))
}

func (s *CatalogServiceSuite) TestListCardsPages() {
	ctx := context.Background()
	moduleID := testutil.SeedModule(s.T(), s.db.DB, s.userID, "words")
	testutil.SeedCards(s.T(), s.db.DB, moduleID, 12)

	page, err := s.svc.ListCards(ctx, s.userID, moduleID, 3)
	s.Require().NoError(err)
	s.Equal(12, page.Total)
	s.Equal(services.DefaultCardsPageSize, page.PageSize)
	s.Require().Len(page.Cards, 2)
	s.Equal("phrase 11", page.Cards[0].Phrase)

	page, err = s.svc.ListCards(ctx, s.userID, moduleID, 0)
	s.Require().NoError(err)
	s.Equal(1, page.Page)
	s.Len(page.Cards, 5)

	page, err = s.svc.ListCards(ctx, s.userID, moduleID, 9)
	s.Require().NoError(err)
	s.NotNil(page.Cards)
	s.Empty(page.Cards)
}

func (s *CatalogServiceSuite) TestDeleteModuleOwnerOnly() {
	ctx := context.Background()
	moduleID := testutil.SeedModule(s.T(), s.db.DB, s.userID, "words")
	other := testutil.SeedUser(s.T(), s.db.DB, "200")

	s.True(errors.HasCode(s.svc.DeleteModule(ctx, other, moduleID), errors.ErrCodeNotFound))
	_, err := s.svc.GetModule(ctx, other, moduleID)
	s.True(errors.HasCode(err, errors.ErrCodeNotFound))

	s.Require().NoError(s.svc.DeleteModule(ctx, s.userID, moduleID))
	_, err = s.svc.GetModule(ctx, s.userID, moduleID)
	s.True(errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}
