package models

import "time"

type InventoryItem struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	ItemName  string    `json:"item_name"`
	Quantity  int64     `json:"quantity"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
