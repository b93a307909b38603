package service

import (
	"context"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockRepository) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockRepository) GetInventoryForUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *mockRepository) CreateQuote(ctx context.Context, quote *models.Quote) error {
	return m.Called(ctx, quote).Error(0)
}

func (m *mockRepository) GetQuoteForUser(ctx context.Context, id, userID int64) (*models.Quote, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quote), args.Error(1)
}

func (m *mockRepository) UpdateQuote(ctx context.Context, quote *models.Quote) error {
	return m.Called(ctx, quote).Error(0)
}

func (m *mockRepository) DeleteQuoteForUser(ctx context.Context, id, userID int64) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockRepository) GetQuotesForUser(ctx context.Context, userID int64) ([]*models.Quote, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Quote), args.Error(1)
}

func (m *mockRepository) GetAllQuotes(ctx context.Context) ([]*models.Quote, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Quote), args.Error(1)
}

func (m *mockRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *mockRepository) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepository) GetLatestBookingForUser(ctx context.Context, userID int64) (*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepository) GetApprovedBookingForUser(ctx context.Context, userID int64) (*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepository) UpdateApprovalWithVersion(ctx context.Context, id, fromVersion int64, approved bool, status string) error {
	return m.Called(ctx, id, fromVersion, approved, status).Error(0)
}

func (m *mockRepository) BindQuoteWithVersion(ctx context.Context, id, fromVersion, quoteID int64, status string) error {
	return m.Called(ctx, id, fromVersion, quoteID, status).Error(0)
}

func (m *mockRepository) ScheduleWithVersion(ctx context.Context, id, fromVersion int64, date time.Time, timeStr, status string) error {
	return m.Called(ctx, id, fromVersion, date, timeStr, status).Error(0)
}

func (m *mockRepository) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockRepository) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockStatusCache struct {
	mock.Mock
}

func (m *mockStatusCache) GetStatus(ctx context.Context, userID int64) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockStatusCache) SetStatus(ctx context.Context, userID int64, status string) error {
	return m.Called(ctx, userID, status).Error(0)
}

func (m *mockStatusCache) Invalidate(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockStatusCache) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}
