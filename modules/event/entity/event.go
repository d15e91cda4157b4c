package entity

import (
	"time"

	"github.com/lib/pq"

	"slotpoll/core/constants"
	"slotpoll/core/timeslot"
)

// EventType says how the candidate grid is authored: concrete calendar
// dates, or recurring days of the week.
type EventType string

const (
	EventTypeDates EventType = "dates"
	EventTypeDays  EventType = "days"
)

// EventStatus is the finalization state machine's observable state.
// open -> locked is one-way and time-triggered by the voting deadline;
// open/locked -> finalized is organizer-triggered and terminal. Locked
// does not prevent finalization. Neither state transitions back to open.
type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusLocked    EventStatus = "locked"
	EventStatusFinalized EventStatus = "finalized"
)

// Event is one availability poll.
type Event struct {
	EventID        string         `db:"event_id" json:"eventId"`
	Title          string         `db:"title" json:"title"`
	Type           EventType      `db:"event_type" json:"type"`
	SelectedDates  pq.StringArray `db:"selected_dates" json:"selectedDates"`
	SelectedDays   pq.Int64Array  `db:"selected_days" json:"selectedDays"`
	StartTime      string         `db:"start_time" json:"startTime"`
	EndTime        string         `db:"end_time" json:"endTime"`
	Timezone       string         `db:"timezone" json:"timezone"`
	OrganizerName  string         `db:"organizer_name" json:"organizerName"`
	IsFinalized    bool           `db:"is_finalized" json:"isFinalized"`
	FinalizedTime  *string        `db:"finalized_time" json:"finalizedTime,omitempty"`
	VotingDeadline *time.Time     `db:"voting_deadline" json:"votingDeadline,omitempty"`
	LockedAt       *time.Time     `db:"locked_at" json:"-"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}

// Status derives the state machine's state at the given instant. The
// deadline is compared in UTC; a viewer's wall clock never matters.
func (e *Event) Status(now time.Time) EventStatus {
	if e.IsFinalized {
		return EventStatusFinalized
	}
	if e.LockedAt != nil {
		return EventStatusLocked
	}
	if e.VotingDeadline != nil && !now.UTC().Before(e.VotingDeadline.UTC()) {
		return EventStatusLocked
	}
	return EventStatusOpen
}

// VotingOpen reports whether vote submission is still accepted.
func (e *Event) VotingOpen(now time.Time) bool {
	return e.Status(now) == EventStatusOpen
}

// CandidateDates returns the concrete dates the grid spans. Day-of-week
// events expand onto the upcoming horizon relative to now in the
// authoring timezone.
func (e *Event) CandidateDates(now time.Time) []string {
	if e.Type == EventTypeDays {
		days := make([]int, 0, len(e.SelectedDays))
		for _, d := range e.SelectedDays {
			days = append(days, int(d))
		}
		loc, err := time.LoadLocation(e.Timezone)
		if err != nil {
			loc = time.UTC
		}
		return timeslot.ExpandWeekdays(days, now.In(loc), constants.DayEventHorizonDays)
	}
	return []string(e.SelectedDates)
}

// ContainsSlot reports whether a slot key is inside the event's
// configured range: its date among the candidate dates (or, for
// day-of-week events, its weekday among the selected days) and its time
// within [StartTime, EndTime).
func (e *Event) ContainsSlot(key timeslot.SlotKey, now time.Time) bool {
	tod := key.Time()
	if tod < e.StartTime || tod >= e.EndTime {
		return false
	}

	if e.Type == EventTypeDays {
		d, err := time.Parse(constants.SlotDateLayout, key.Date())
		if err != nil {
			return false
		}
		for _, day := range e.SelectedDays {
			if int(d.Weekday()) == int(day) {
				return true
			}
		}
		return false
	}

	for _, date := range e.SelectedDates {
		if date == key.Date() {
			return true
		}
	}
	return false
}
