package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiaReturnsUTCCalendarDay(t *testing.T) {
	ahead := time.FixedZone("UTC+20", 20*3600)
	behind := time.FixedZone("UTC-3", -3*3600)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"utc", time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC), time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)},
		{"zone ahead of utc", time.Date(2026, 10, 19, 11, 30, 0, 0, ahead), time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)},
		{"zone behind utc", time.Date(2026, 10, 18, 22, 0, 0, 0, behind), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dia(tt.in)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}
