package entity

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestEventStatus(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	finalized := "2025-03-15 09:00"

	tests := []struct {
		name  string
		event Event
		want  EventStatus
	}{
		{name: "open without deadline", event: Event{}, want: EventStatusOpen},
		{name: "open before deadline", event: Event{VotingDeadline: &future}, want: EventStatusOpen},
		{name: "locked after deadline", event: Event{VotingDeadline: &past}, want: EventStatusLocked},
		{name: "locked at exact deadline", event: Event{VotingDeadline: &now}, want: EventStatusLocked},
		{name: "locked by worker flag", event: Event{LockedAt: &past}, want: EventStatusLocked},
		{name: "finalized wins over lock", event: Event{IsFinalized: true, FinalizedTime: &finalized, VotingDeadline: &past}, want: EventStatusFinalized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Status(now))
			assert.Equal(t, tt.want == EventStatusOpen, tt.event.VotingOpen(now))
		})
	}
}

func TestEventStatusDeadlineComparedInUTC(t *testing.T) {
	// A deadline stored with a zone offset is the same instant in UTC;
	// a viewer's local wall clock must not change the outcome.
	ist, err := time.LoadLocation("Europe/Istanbul")
	assert.NoError(t, err)

	deadline := time.Date(2025, 3, 15, 15, 0, 0, 0, ist) // 12:00 UTC
	e := Event{VotingDeadline: &deadline}

	before := time.Date(2025, 3, 15, 11, 59, 0, 0, time.UTC)
	after := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, EventStatusOpen, e.Status(before))
	assert.Equal(t, EventStatusLocked, e.Status(after))
}

func TestContainsSlotDates(t *testing.T) {
	e := Event{
		Type:          EventTypeDates,
		SelectedDates: pq.StringArray{"2025-03-15", "2025-03-16"},
		StartTime:     "09:00",
		EndTime:       "17:00",
	}
	now := time.Now()

	assert.True(t, e.ContainsSlot("2025-03-15 09:00", now))
	assert.True(t, e.ContainsSlot("2025-03-16 16:30", now))
	assert.False(t, e.ContainsSlot("2025-03-17 09:00", now), "date not offered")
	assert.False(t, e.ContainsSlot("2025-03-15 08:30", now), "before window")
	assert.False(t, e.ContainsSlot("2025-03-15 17:00", now), "end bound is exclusive")
}

func TestContainsSlotDays(t *testing.T) {
	// Mondays and Wednesdays only.
	e := Event{
		Type:         EventTypeDays,
		SelectedDays: pq.Int64Array{1, 3},
		StartTime:    "09:00",
		EndTime:      "12:00",
	}
	now := time.Now()

	assert.True(t, e.ContainsSlot("2025-03-10 09:00", now), "2025-03-10 is a Monday")
	assert.True(t, e.ContainsSlot("2025-03-12 11:30", now), "2025-03-12 is a Wednesday")
	assert.False(t, e.ContainsSlot("2025-03-11 09:00", now), "Tuesday not offered")
	assert.False(t, e.ContainsSlot("2025-03-10 12:00", now), "end bound is exclusive")
}

func TestCandidateDates(t *testing.T) {
	dated := Event{Type: EventTypeDates, SelectedDates: pq.StringArray{"2025-03-15"}}
	assert.Equal(t, []string{"2025-03-15"}, dated.CandidateDates(time.Now()))

	weekly := Event{Type: EventTypeDays, SelectedDays: pq.Int64Array{1}, Timezone: "UTC"}
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) // a Monday
	dates := weekly.CandidateDates(from)
	assert.NotEmpty(t, dates)
	assert.Equal(t, "2025-03-10", dates[0])
}
