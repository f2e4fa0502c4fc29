package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/estudos/internal/revisoes"
	"github.com/example/estudos/pkg/models"
)

// Default reminder window and reconciliation interval
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
	DefaultReconcileInterval     = 60 * time.Second
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(user models.User, count int) error
}

// UserSource lists the users whose reminder hour is hour
type UserSource interface {
	GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error)
}

// DueCounter counts the revisions a user has due on now's day
type DueCounter interface {
	CountDueToday(ctx context.Context, userID string, now time.Time) (int, error)
}

// Options configures the jobs
type Options struct {
	ReconcileInterval     time.Duration
	NotificationStartHour int
	NotificationEndHour   int
	Location              *time.Location
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler  *gocron.Scheduler
	reconciler *revisoes.Reconciler
	users      UserSource
	revisoes   DueCounter
	notifier   Notifier
	opts       Options
	now        func() time.Time
}

// New creates a new scheduler instance. notifier may be nil, in which case
// only the reconciliation job runs.
func New(reconciler *revisoes.Reconciler, users UserSource, due DueCounter, notifier Notifier, opts Options) *Scheduler {
	if opts.ReconcileInterval <= 0 {
		opts.ReconcileInterval = DefaultReconcileInterval
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(opts.Location),
		reconciler: reconciler,
		users:      users,
		revisoes:   due,
		notifier:   notifier,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.opts.ReconcileInterval).SingletonMode().Do(s.reconcile)
	if err != nil {
		return err
	}

	if s.notifier != nil {
		// Top of every hour
		if _, err := s.scheduler.Cron("0 * * * *").SingletonMode().Do(s.checkAndSendReminders); err != nil {
			return err
		}
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ReconcileInterval)
	defer cancel()

	if _, err := s.reconciler.Run(ctx); err != nil {
		log.Printf("Error reconciling overdue revisions: %v", err)
	}
}

func (s *Scheduler) checkAndSendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	s.sendReminders(ctx, s.now().In(s.opts.Location))
}

// sendReminders notifies every user scheduled for now's hour who has
// revisions due today
func (s *Scheduler) sendReminders(ctx context.Context, now time.Time) int {
	currentHour := now.Hour()
	if !s.withinWindow(currentHour) {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, s.opts.NotificationStartHour, s.opts.NotificationEndHour)
		return 0
	}

	users, err := s.users.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return 0
	}

	sent := 0
	for _, user := range users {
		count, err := s.revisoes.CountDueToday(ctx, user.ID, now)
		if err != nil {
			log.Printf("Error counting due revisions for user %s: %v", user.ID, err)
			continue
		}
		if count == 0 {
			continue
		}
		if err := s.notifier.SendReminders(user, count); err != nil {
			log.Printf("Error sending reminder to user %s: %v", user.ID, err)
			continue
		}
		sent++
	}
	return sent
}

func (s *Scheduler) withinWindow(hour int) bool {
	start, end := s.opts.NotificationStartHour, s.opts.NotificationEndHour
	if start == 0 && end == 0 {
		return true
	}
	if start <= end {
		return hour >= start && hour <= end
	}
	// Window wraps past midnight
	return hour >= start || hour <= end
}

// RunManualCheck forces a check for a specific user
func (s *Scheduler) RunManualCheck(ctx context.Context, user models.User) error {
	count, err := s.revisoes.CountDueToday(ctx, user.ID, s.now())
	if err != nil {
		return err
	}
	if count > 0 && s.notifier != nil {
		return s.notifier.SendReminders(user, count)
	}
	return nil
}
