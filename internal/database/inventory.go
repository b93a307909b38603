package database

import (
	"context"
	"fmt"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/models"
)

func (db *DB) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	query := `INSERT INTO inventory (category, item_name, quantity, user_id, created_at)
              VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	result, err := db.ExecContext(ctx, query, item.Category, item.ItemName, quantity, item.UserID, now)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.Quantity = quantity
	item.CreatedAt = now
	return nil
}

func (db *DB) GetInventoryForUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error) {
	query := `SELECT id, category, item_name, quantity, user_id, created_at
              FROM inventory WHERE user_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		item := &models.InventoryItem{}
		err := rows.Scan(&item.ID, &item.Category, &item.ItemName, &item.Quantity, &item.UserID, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
