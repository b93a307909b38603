package models

import "time"

// Quote is a priced moving estimate for one company. Amount is always
// computed by the pricing engine, never taken from the client.
type Quote struct {
	ID          int64     `json:"id"`
	CompanyName string    `json:"company_name"`
	Amount      float64   `json:"amount"`
	Distance    float64   `json:"distance"`
	HouseType   string    `json:"house_type"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
