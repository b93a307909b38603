package service

import (
	"context"

	"github.com/roxannesyombua/Movers-App-Server/internal/domain"
	"github.com/roxannesyombua/Movers-App-Server/internal/events"
	"github.com/roxannesyombua/Movers-App-Server/internal/metrics"
	"github.com/roxannesyombua/Movers-App-Server/internal/models"
	"github.com/roxannesyombua/Movers-App-Server/internal/pricing"

	"github.com/rs/zerolog"
)

// QuoteService computes and stores price quotes. Amounts always come
// out of the pricing engine; a client-supplied amount is never stored.
type QuoteService struct {
	repo     domain.Repository
	engine   *pricing.Engine
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewQuoteService(repo domain.Repository, engine *pricing.Engine, eventBus domain.EventPublisher, logger *zerolog.Logger) *QuoteService {
	return &QuoteService{
		repo:     repo,
		engine:   engine,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Calculate prices a move and persists one quote per company the
// configured strategy produces.
func (s *QuoteService) Calculate(ctx context.Context, userID int64, distance float64, homeType string) ([]*models.Quote, error) {
	estimates, err := s.engine.Estimates(distance, homeType)
	if err != nil {
		return nil, err
	}

	quotes := make([]*models.Quote, 0, len(estimates))
	for _, est := range estimates {
		quote := &models.Quote{
			CompanyName: est.CompanyName,
			Amount:      est.Amount,
			Distance:    est.Distance,
			HouseType:   est.HomeType,
			UserID:      userID,
		}
		if err := s.repo.CreateQuote(ctx, quote); err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)

		metrics.IncQuoteComputed(s.engine.StrategyName())
		s.publishQuoteEvent(quote)
	}

	return quotes, nil
}

// Recalculate merges the provided fields over the stored quote and
// recomputes the amount with the engine.
func (s *QuoteService) Recalculate(ctx context.Context, userID, quoteID int64, newDistance *float64, newHomeType *string) (*models.Quote, error) {
	quote, err := s.repo.GetQuoteForUser(ctx, quoteID, userID)
	if err != nil {
		return nil, err
	}

	distance := quote.Distance
	if newDistance != nil {
		distance = *newDistance
	}
	homeType := quote.HouseType
	if newHomeType != nil {
		homeType = *newHomeType
	}

	est, err := s.engine.EstimateFor(quote.CompanyName, distance, homeType)
	if err != nil {
		return nil, err
	}

	quote.Amount = est.Amount
	quote.Distance = est.Distance
	quote.HouseType = est.HomeType
	if err := s.repo.UpdateQuote(ctx, quote); err != nil {
		return nil, err
	}

	metrics.IncQuoteComputed(s.engine.StrategyName())
	s.publishQuoteEvent(quote)

	return quote, nil
}

func (s *QuoteService) Get(ctx context.Context, userID, quoteID int64) (*models.Quote, error) {
	return s.repo.GetQuoteForUser(ctx, quoteID, userID)
}

func (s *QuoteService) Delete(ctx context.Context, userID, quoteID int64) error {
	return s.repo.DeleteQuoteForUser(ctx, quoteID, userID)
}

func (s *QuoteService) ListForUser(ctx context.Context, userID int64) ([]*models.Quote, error) {
	return s.repo.GetQuotesForUser(ctx, userID)
}

func (s *QuoteService) publishQuoteEvent(quote *models.Quote) {
	if s.eventBus == nil {
		return
	}

	payload := events.QuoteEventPayload{
		QuoteID:     quote.ID,
		UserID:      quote.UserID,
		CompanyName: quote.CompanyName,
		Amount:      quote.Amount,
		Distance:    quote.Distance,
		HouseType:   quote.HouseType,
	}
	if err := s.eventBus.PublishJSON(events.EventQuoteCalculated, payload); err != nil {
		s.logger.Error().Err(err).Int64("quote_id", quote.ID).Msg("publish event error")
	}
}
