package revisoes

import (
	"context"
	"fmt"
	"log"
	"time"
)

// OverdueMarker flips pending revisions dated before hoje to atrasada and
// returns how many rows changed. Implementations must be idempotent.
type OverdueMarker interface {
	MarcarAtrasadas(ctx context.Context, hoje time.Time) (int64, error)
}

// Reconciler periodically corrects the status of past-due revisions
type Reconciler struct {
	marker OverdueMarker
	now    func() time.Time
}

// NewReconciler creates a reconciler backed by marker
func NewReconciler(marker OverdueMarker) *Reconciler {
	return &Reconciler{
		marker: marker,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run performs one reconciliation pass. Errors are returned to the caller
// as-is; there is no retry. Overlapping runs are harmless.
func (r *Reconciler) Run(ctx context.Context) (int64, error) {
	n, err := r.marker.MarcarAtrasadas(ctx, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue revisions: %w", err)
	}
	if n > 0 {
		log.Printf("Marked %d revisions as overdue", n)
	}
	return n, nil
}
