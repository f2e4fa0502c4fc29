package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/estudos/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind("SELECT * FROM users WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", notFound(err))
	}
	return &user, nil
}

// GetByTelegramID returns a user by their Telegram account id
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind("SELECT * FROM users WHERE telegram_id = ?"), telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by telegram ID: %w", notFound(err))
	}
	return &user, nil
}

// GetOrCreate returns the user for telegramID, registering it on first contact
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (*models.User, error) {
	now := timeNow()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (id, telegram_id, username, first_name, plano_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO NOTHING
	`), uuid.NewString(), telegramID, username, firstName, models.PlanoFree, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetByTelegramID(ctx, telegramID)
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// GetUsersForNotification returns users with reminders enabled at hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	query := r.db.Rebind(`
		SELECT * FROM users
		WHERE notification_enabled = ? AND notification_hour = ?
		ORDER BY created_at
	`)
	if err := r.db.SelectContext(ctx, &users, query, true, hour); err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}

// UpdateNotificationSettings changes when a user gets reminders
func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, id string, enabled bool, hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("invalid notification hour %d", hour)
	}
	return r.exec(ctx, "UPDATE users SET notification_enabled = ?, notification_hour = ?, updated_at = ? WHERE id = ?",
		enabled, hour, timeNow(), id)
}

// SetAdmin grants or revokes back-office access
func (r *UserRepository) SetAdmin(ctx context.Context, id string, admin bool) error {
	return r.exec(ctx, "UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?", admin, timeNow(), id)
}

// SetStripeCustomer stores the payment provider customer id
func (r *UserRepository) SetStripeCustomer(ctx context.Context, id, customerID string) error {
	return r.exec(ctx, "UPDATE users SET stripe_customer_id = ?, updated_at = ? WHERE id = ?", customerID, timeNow(), id)
}

// UpdatePlano records the subscription state reported by the payment provider
func (r *UserRepository) UpdatePlano(ctx context.Context, id, status string, expiraEm *time.Time) error {
	return r.exec(ctx, "UPDATE users SET plano_status = ?, plano_expira_em = ?, updated_at = ? WHERE id = ?",
		status, expiraEm, timeNow(), id)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to update user: %w", ErrNotFound)
	}
	return nil
}
