package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/models"
)

func (db *DB) CreateQuote(ctx context.Context, quote *models.Quote) error {
	query := `INSERT INTO quotes (company_name, amount, distance, house_type, user_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		quote.CompanyName, quote.Amount, quote.Distance, quote.HouseType, quote.UserID, now, now)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	quote.ID = id
	quote.CreatedAt = now
	quote.UpdatedAt = now
	return nil
}

// GetQuoteForUser returns the quote only when it is owned by userID.
func (db *DB) GetQuoteForUser(ctx context.Context, id, userID int64) (*models.Quote, error) {
	query := `SELECT id, company_name, amount, distance, house_type, user_id, created_at, updated_at
              FROM quotes WHERE id = ? AND user_id = ?`
	var quote models.Quote
	err := db.QueryRowContext(ctx, query, id, userID).Scan(
		&quote.ID, &quote.CompanyName, &quote.Amount, &quote.Distance,
		&quote.HouseType, &quote.UserID, &quote.CreatedAt, &quote.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}

// UpdateQuote rewrites the priced fields of an owned quote.
func (db *DB) UpdateQuote(ctx context.Context, quote *models.Quote) error {
	query := `UPDATE quotes SET company_name = ?, amount = ?, distance = ?, house_type = ?, updated_at = ?
              WHERE id = ? AND user_id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		quote.CompanyName, quote.Amount, quote.Distance, quote.HouseType, now, quote.ID, quote.UserID)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	quote.UpdatedAt = now
	return nil
}

func (db *DB) DeleteQuoteForUser(ctx context.Context, id, userID int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetQuotesForUser lists the user's quotes in insertion order, newest last.
func (db *DB) GetQuotesForUser(ctx context.Context, userID int64) ([]*models.Quote, error) {
	query := `SELECT id, company_name, amount, distance, house_type, user_id, created_at, updated_at
              FROM quotes WHERE user_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		q := &models.Quote{}
		err := rows.Scan(&q.ID, &q.CompanyName, &q.Amount, &q.Distance,
			&q.HouseType, &q.UserID, &q.CreatedAt, &q.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// GetAllQuotes is used by the admin export.
func (db *DB) GetAllQuotes(ctx context.Context) ([]*models.Quote, error) {
	query := `SELECT id, company_name, amount, distance, house_type, user_id, created_at, updated_at
              FROM quotes ORDER BY created_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		q := &models.Quote{}
		err := rows.Scan(&q.ID, &q.CompanyName, &q.Amount, &q.Distance,
			&q.HouseType, &q.UserID, &q.CreatedAt, &q.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
