package models

import "time"

// User represents a Telegram user studying for a concurso
type User struct {
	ID                  string     `json:"id" db:"id"`
	TelegramID          int64      `json:"telegram_id" db:"telegram_id"`
	Username            string     `json:"username" db:"username"`
	FirstName           string     `json:"first_name" db:"first_name"`
	IsAdmin             bool       `json:"is_admin" db:"is_admin"`
	NotificationEnabled bool       `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int        `json:"notification_hour" db:"notification_hour"` // Hour of day for reminders (0-23)
	StripeCustomerID    *string    `json:"stripe_customer_id" db:"stripe_customer_id"`
	PlanoStatus         string     `json:"plano_status" db:"plano_status"` // free, active, canceled
	PlanoExpiraEm       *time.Time `json:"plano_expira_em" db:"plano_expira_em"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

const (
	PlanoFree     = "free"
	PlanoActive   = "active"
	PlanoCanceled = "canceled"
)

// IsPremium reports whether the user has an active paid plan at t
func (u *User) IsPremium(t time.Time) bool {
	if u.PlanoStatus != PlanoActive {
		return false
	}
	return u.PlanoExpiraEm == nil || u.PlanoExpiraEm.After(t)
}
