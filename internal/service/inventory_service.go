package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/roxannesyombua/Movers-App-Server/internal/domain"
	"github.com/roxannesyombua/Movers-App-Server/internal/models"
)

type InventoryService struct {
	repo domain.Repository
}

func NewInventoryService(repo domain.Repository) *InventoryService {
	return &InventoryService{repo: repo}
}

func (s *InventoryService) Add(ctx context.Context, userID int64, category, itemName string, quantity int64) (*models.InventoryItem, error) {
	if strings.TrimSpace(category) == "" || strings.TrimSpace(itemName) == "" {
		return nil, fmt.Errorf("%w: category and item name are required", ErrInvalidInput)
	}

	item := &models.InventoryItem{
		Category: category,
		ItemName: itemName,
		Quantity: quantity,
		UserID:   userID,
	}
	if err := s.repo.CreateInventoryItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *InventoryService) ListForUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error) {
	return s.repo.GetInventoryForUser(ctx, userID)
}
