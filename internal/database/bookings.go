package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/models"
)

const bookingColumns = `id, user_id, current_location, new_location, date, time,
                 approved, status, quote_id, created_at, updated_at, version`

// CreateBooking inserts a Pending booking. A user may hold at most one
// open (non-terminal) booking at a time; the check and the insert run
// in one transaction.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var openCount int
	queryCount := `SELECT COUNT(*) FROM bookings WHERE user_id = ? AND status NOT IN (?, ?)`
	err = tx.QueryRowContext(ctx, queryCount, booking.UserID,
		models.StatusRejected, models.StatusConfirmed).Scan(&openCount)
	if err != nil {
		return fmt.Errorf("failed to check open bookings in tx: %w", err)
	}
	if openCount > 0 {
		return ErrOpenBookingExists
	}

	queryInsert := `INSERT INTO bookings (
				user_id, current_location, new_location, approved, status,
				created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.UserID,
		booking.CurrentLocation,
		booking.NewLocation,
		false,
		models.StatusPending,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.Approved = false
	booking.Status = models.StatusPending
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return db.scanBooking(db.QueryRowContext(ctx, query, id))
}

// GetLatestBookingForUser returns the user's most recently created
// booking. Most operations locate "the" booking this way.
func (db *DB) GetLatestBookingForUser(ctx context.Context, userID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`
	return db.scanBooking(db.QueryRowContext(ctx, query, userID))
}

// GetApprovedBookingForUser returns the user's most recent approved booking.
func (db *DB) GetApprovedBookingForUser(ctx context.Context, userID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE user_id = ? AND approved = 1 ORDER BY created_at DESC, id DESC LIMIT 1`
	return db.scanBooking(db.QueryRowContext(ctx, query, userID))
}

// UpdateApprovalWithVersion records the approval decision. The version
// guard makes the read-modify-write atomic across concurrent requests.
func (db *DB) UpdateApprovalWithVersion(ctx context.Context, id, fromVersion int64, approved bool, status string) error {
	query := `UPDATE bookings SET approved = ?, status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	return db.guardedUpdate(ctx, query, approved, status, time.Now(), id, fromVersion)
}

// BindQuoteWithVersion attaches a selected quote to the booking.
func (db *DB) BindQuoteWithVersion(ctx context.Context, id, fromVersion, quoteID int64, status string) error {
	query := `UPDATE bookings SET quote_id = ?, status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	return db.guardedUpdate(ctx, query, quoteID, status, time.Now(), id, fromVersion)
}

// ScheduleWithVersion stores the confirmed date and time.
func (db *DB) ScheduleWithVersion(ctx context.Context, id, fromVersion int64, date time.Time, timeStr, status string) error {
	query := `UPDATE bookings SET date = ?, time = ?, status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	return db.guardedUpdate(ctx, query, date, timeStr, status, time.Now(), id, fromVersion)
}

// UpdateBookingStatus overwrites status without version checks. Used
// only by the administrative override.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAllBookings is used by the admin export.
func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBookingRow(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) guardedUpdate(ctx context.Context, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanBooking(row *sql.Row) (*models.Booking, error) {
	b, err := scanBookingRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBookingRow(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var date sql.NullTime
	var timeStr sql.NullString
	var quoteID sql.NullInt64
	err := row.Scan(
		&b.ID, &b.UserID, &b.CurrentLocation, &b.NewLocation, &date, &timeStr,
		&b.Approved, &b.Status, &quoteID, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	if date.Valid {
		d := date.Time
		b.Date = &d
	}
	if timeStr.Valid {
		b.Time = timeStr.String
	}
	if quoteID.Valid {
		id := quoteID.Int64
		b.QuoteID = &id
	}
	return b, nil
}
