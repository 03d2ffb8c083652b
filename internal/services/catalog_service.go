package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

// DefaultCardsPageSize is the card listing page size used when none is configured.
const DefaultCardsPageSize = 5

// CardInput carries the editable parts of a card. Fields maps custom field
// names to values; empty values are dropped.
type CardInput struct {
	Phrase     string
	Definition string
	Hint       *string
	Fields     map[string]string
}

// CatalogService handles modules and cards
type CatalogService interface {
	CreateModule(ctx context.Context, userID int64, name, description string, fieldNames []string) (*models.Module, error)
	ListModules(ctx context.Context, userID int64) ([]models.ModuleSummary, error)
	GetModule(ctx context.Context, userID, moduleID int64) (*models.Module, error)
	DeleteModule(ctx context.Context, userID, moduleID int64) error

	AddCard(ctx context.Context, userID, moduleID int64, in CardInput) (*models.Card, error)
	UpdateCard(ctx context.Context, userID, cardID int64, in CardInput) (*models.Card, error)
	GetCard(ctx context.Context, userID, cardID int64) (*models.Card, error)
	// ListCards returns the 1-based page of the module's cards.
	ListCards(ctx context.Context, userID, moduleID int64, page int) (*models.CardPage, error)
	DeleteCard(ctx context.Context, userID, cardID int64) error
}

type catalogService struct {
	store    repository.Store
	pageSize int
	now      func() time.Time
}

// NewCatalogService creates a new CatalogService. A non-positive pageSize
// falls back to DefaultCardsPageSize.
func NewCatalogService(store repository.Store, pageSize int) CatalogService {
	if pageSize <= 0 {
		pageSize = DefaultCardsPageSize
	}
	return &catalogService{store: store, pageSize: pageSize, now: time.Now}
}

func (s *catalogService) CreateModule(ctx context.Context, userID int64, name, description string, fieldNames []string) (*models.Module, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating module: user_id=%d, name=%s", userID, name)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	module := models.Module{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now().UTC(),
	}
	seen := make(map[string]bool)
	for _, f := range fieldNames {
		f = strings.TrimSpace(f)
		if f == "" || seen[strings.ToLower(f)] {
			continue
		}
		seen[strings.ToLower(f)] = true
		module.CustomFields = append(module.CustomFields, models.CustomField{Name: f})
	}

	var created *models.Module
	err := s.store.WithTx(ctx, func(st repository.Store) error {
		id, err := st.Modules().Insert(ctx, module)
		if err != nil {
			return err
		}
		created, err = st.Modules().Get(ctx, id)
		return err
	})
	if err != nil {
		log.WithError(err).Error("failed to create module")
		return nil, errors.NewStoreError(err)
	}

	log.Info("module created: id=%d, fields=%d", created.ID, len(created.CustomFields))
	return created, nil
}

func (s *catalogService) ListModules(ctx context.Context, userID int64) ([]models.ModuleSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing modules: user_id=%d", userID)

	modules, err := s.store.Modules().ListByUser(ctx, userID)
	if err != nil {
		log.WithError(err).Error("failed to list modules")
		return nil, errors.NewStoreError(err)
	}
	if modules == nil {
		modules = []models.ModuleSummary{}
	}
	return modules, nil
}

func (s *catalogService) GetModule(ctx context.Context, userID, moduleID int64) (*models.Module, error) {
	return ownedModule(ctx, s.store, userID, moduleID)
}

func (s *catalogService) DeleteModule(ctx context.Context, userID, moduleID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting module: user_id=%d, module_id=%d", userID, moduleID)

	if _, err := ownedModule(ctx, s.store, userID, moduleID); err != nil {
		return err
	}
	if err := s.store.Modules().Delete(ctx, moduleID); err != nil {
		log.WithError(err).Error("failed to delete module")
		return errors.NewStoreError(err)
	}
	log.Info("module deleted: id=%d", moduleID)
	return nil
}

func (s *catalogService) AddCard(ctx context.Context, userID, moduleID int64, in CardInput) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("adding card: module_id=%d, phrase=%s", moduleID, in.Phrase)

	module, err := ownedModule(ctx, s.store, userID, moduleID)
	if err != nil {
		return nil, err
	}
	card, err := buildCard(module, in)
	if err != nil {
		return nil, err
	}
	card.CreatedAt = s.now().UTC()

	var created *models.Card
	err = s.store.WithTx(ctx, func(st repository.Store) error {
		id, err := st.Cards().Insert(ctx, card)
		if err != nil {
			return err
		}
		created, err = st.Cards().Get(ctx, id)
		return err
	})
	if err != nil {
		log.WithError(err).Error("failed to add card")
		return nil, errors.NewStoreError(err)
	}
	return created, nil
}

func (s *catalogService) UpdateCard(ctx context.Context, userID, cardID int64, in CardInput) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating card: card_id=%d", cardID)

	existing, module, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	card, err := buildCard(module, in)
	if err != nil {
		return nil, err
	}
	card.ID = existing.ID

	var updated *models.Card
	err = s.store.WithTx(ctx, func(st repository.Store) error {
		if err := st.Cards().Update(ctx, card); err != nil {
			return err
		}
		var err error
		updated, err = st.Cards().Get(ctx, card.ID)
		return err
	})
	if err != nil {
		log.WithError(err).Error("failed to update card")
		return nil, errors.NewStoreError(err)
	}
	return updated, nil
}

func (s *catalogService) GetCard(ctx context.Context, userID, cardID int64) (*models.Card, error) {
	card, _, err := s.ownedCard(ctx, userID, cardID)
	return card, err
}

func (s *catalogService) ListCards(ctx context.Context, userID, moduleID int64, page int) (*models.CardPage, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing cards: module_id=%d, page=%d", moduleID, page)

	if page < 1 {
		page = 1
	}
	if _, err := ownedModule(ctx, s.store, userID, moduleID); err != nil {
		return nil, err
	}

	total, err := s.store.Cards().CountByModule(ctx, moduleID)
	if err != nil {
		log.WithError(err).Error("failed to count cards")
		return nil, errors.NewStoreError(err)
	}
	cards, err := s.store.Cards().Page(ctx, moduleID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		log.WithError(err).Error("failed to page cards")
		return nil, errors.NewStoreError(err)
	}
	if cards == nil {
		cards = []models.Card{}
	}

	return &models.CardPage{Cards: cards, Page: page, PageSize: s.pageSize, Total: total}, nil
}

func (s *catalogService) DeleteCard(ctx context.Context, userID, cardID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting card: card_id=%d", cardID)

	if _, _, err := s.ownedCard(ctx, userID, cardID); err != nil {
		return err
	}
	if err := s.store.Cards().Delete(ctx, cardID); err != nil {
		log.WithError(err).Error("failed to delete card")
		return errors.NewStoreError(err)
	}
	return nil
}

func (s *catalogService) ownedCard(ctx context.Context, userID, cardID int64) (*models.Card, *models.Module, error) {
	card, err := s.store.Cards().Get(ctx, cardID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get card: %v", err)
		return nil, nil, errors.NewStoreError(err)
	}
	if card == nil {
		return nil, nil, errors.NewNotFoundError("card", cardID)
	}
	module, err := ownedModule(ctx, s.store, userID, card.ModuleID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, nil, errors.NewNotFoundError("card", cardID)
		}
		return nil, nil, err
	}
	return card, module, nil
}

// ownedModule loads a module and hides modules of other users behind NotFound.
func ownedModule(ctx context.Context, st repository.Store, userID, moduleID int64) (*models.Module, error) {
	module, err := st.Modules().Get(ctx, moduleID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get module: %v", err)
		return nil, errors.NewStoreError(err)
	}
	if module == nil || module.UserID != userID {
		return nil, errors.NewNotFoundError("module", moduleID)
	}
	return module, nil
}

func buildCard(module *models.Module, in CardInput) (models.Card, error) {
	card := models.Card{
		ModuleID:   module.ID,
		Phrase:     strings.TrimSpace(in.Phrase),
		Definition: strings.TrimSpace(in.Definition),
	}
	if card.Phrase == "" {
		return card, errors.NewValidationError("phrase", "cannot be empty")
	}
	if card.Definition == "" {
		return card, errors.NewValidationError("definition", "cannot be empty")
	}
	if in.Hint != nil {
		if h := strings.TrimSpace(*in.Hint); h != "" {
			card.Hint = &h
		}
	}

	byName := make(map[string]models.CustomField, len(module.CustomFields))
	for _, f := range module.CustomFields {
		byName[strings.ToLower(f.Name)] = f
	}
	for name, value := range in.Fields {
		f, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return card, errors.NewValidationError("fields", "unknown field "+name)
		}
		if value = strings.TrimSpace(value); value != "" {
			card.Fields = append(card.Fields, models.CustomFieldValue{FieldID: f.ID, Name: f.Name, Value: value})
		}
	}
	return card, nil
}
