package service

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotpoll/core/errors"
	"slotpoll/modules/event/dto"
	"slotpoll/modules/event/entity"
	rtentity "slotpoll/modules/realtime/entity"
)

type fakeEventRepo struct {
	events map[string]*entity.Event
}

func newFakeEventRepo(events ...*entity.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: make(map[string]*entity.Event)}
	for _, e := range events {
		r.events[e.EventID] = e
	}
	return r
}

func (r *fakeEventRepo) CreateEvent(_ context.Context, event *entity.Event) (*entity.Event, error) {
	cp := *event
	cp.CreatedAt = time.Now()
	r.events[cp.EventID] = &cp
	return &cp, nil
}

func (r *fakeEventRepo) GetEventByID(_ context.Context, eventID string) (*entity.Event, error) {
	e, ok := r.events[eventID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEventRepo) SetFinalized(_ context.Context, eventID, finalizedTime string) error {
	if e, ok := r.events[eventID]; ok && !e.IsFinalized {
		e.IsFinalized = true
		e.FinalizedTime = &finalizedTime
	}
	return nil
}

func (r *fakeEventRepo) SetLocked(_ context.Context, eventID string, lockedAt time.Time) error {
	if e, ok := r.events[eventID]; ok && e.LockedAt == nil && !e.IsFinalized {
		e.LockedAt = &lockedAt
	}
	return nil
}

type fakeBroadcaster struct {
	messages []rtentity.Message
}

func (b *fakeBroadcaster) Broadcast(_ context.Context, msg rtentity.Message) {
	b.messages = append(b.messages, msg)
}

type fakeScheduler struct {
	scheduled map[string]time.Time
}

func (s *fakeScheduler) ScheduleLock(eventID string, at time.Time) error {
	if s.scheduled == nil {
		s.scheduled = make(map[string]time.Time)
	}
	s.scheduled[eventID] = at
	return nil
}

func datesEvent() *entity.Event {
	return &entity.Event{
		EventID:       "abc1234",
		Title:         "Team sync",
		Type:          entity.EventTypeDates,
		SelectedDates: pq.StringArray{"2025-03-15", "2025-03-16"},
		StartTime:     "09:00",
		EndTime:       "12:00",
		Timezone:      "Europe/Istanbul",
		OrganizerName: "Alice",
	}
}

func validCreateRequest() *dto.CreateEventRequest {
	return &dto.CreateEventRequest{
		Title:         "Team sync",
		Type:          "dates",
		SelectedDates: []string{"2025-03-15"},
		StartTime:     "09:00",
		EndTime:       "12:00",
		Timezone:      "Europe/Istanbul",
		OrganizerName: "Alice",
	}
}

func TestCreateEvent(t *testing.T) {
	repo := newFakeEventRepo()
	sched := &fakeScheduler{}
	svc := NewEventService(repo, nil, nil, sched)

	resp, appErr := svc.CreateEvent(context.Background(), validCreateRequest())
	require.Nil(t, appErr)
	assert.Len(t, resp.EventID, 7)
	assert.Contains(t, repo.events, resp.EventID)
	assert.Empty(t, sched.scheduled, "no deadline, nothing to schedule")
}

func TestCreateEventSchedulesDeadlineLock(t *testing.T) {
	repo := newFakeEventRepo()
	sched := &fakeScheduler{}
	svc := NewEventService(repo, nil, nil, sched)

	deadline := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	req := validCreateRequest()
	req.VotingDeadline = &deadline

	resp, appErr := svc.CreateEvent(context.Background(), req)
	require.Nil(t, appErr)
	assert.Equal(t, deadline, sched.scheduled[resp.EventID])
}

func TestCreateEventValidation(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name   string
		mutate func(*dto.CreateEventRequest)
		code   errors.ErrorCode
	}{
		{"missing title", func(r *dto.CreateEventRequest) { r.Title = "" }, errors.ErrInvalidInput},
		{"blank organizer", func(r *dto.CreateEventRequest) { r.OrganizerName = "   " }, errors.ErrInvalidInput},
		{"unknown type", func(r *dto.CreateEventRequest) { r.Type = "weekly" }, errors.ErrInvalidInput},
		{"dates type without dates", func(r *dto.CreateEventRequest) { r.SelectedDates = nil }, errors.ErrInvalidInput},
		{"days type without days", func(r *dto.CreateEventRequest) {
			r.Type = "days"
			r.SelectedDates = nil
		}, errors.ErrInvalidInput},
		{"day of week out of range", func(r *dto.CreateEventRequest) {
			r.Type = "days"
			r.SelectedDays = []int{7}
		}, errors.ErrInvalidInput},
		{"end before start", func(r *dto.CreateEventRequest) {
			r.StartTime = "12:00"
			r.EndTime = "09:00"
		}, errors.ErrInvalidSlot},
		{"off-grid start time", func(r *dto.CreateEventRequest) { r.StartTime = "09:15" }, errors.ErrInvalidSlot},
		{"bad date", func(r *dto.CreateEventRequest) { r.SelectedDates = []string{"15-03-2025"} }, errors.ErrInvalidSlot},
		{"unknown timezone", func(r *dto.CreateEventRequest) { r.Timezone = "Mars/Olympus" }, errors.ErrInvalidInput},
		{"deadline in the past", func(r *dto.CreateEventRequest) { r.VotingDeadline = &past }, errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEventService(newFakeEventRepo(), nil, nil, nil)
			req := validCreateRequest()
			tt.mutate(req)

			_, appErr := svc.CreateEvent(context.Background(), req)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestGetEventByIDNotFound(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), nil, nil, nil)

	_, appErr := svc.GetEventByID(context.Background(), "missing")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestGetGrid(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(datesEvent()), nil, nil, nil)

	resp, appErr := svc.GetGrid(context.Background(), "abc1234", "")
	require.Nil(t, appErr)
	assert.Len(t, resp.Slots, 12, "two dates, six half-hour slots each")
	assert.Equal(t, "2025-03-15 09:00", resp.Slots[0])
	assert.Equal(t, "2025-03-16 11:30", resp.Slots[11])
	assert.Nil(t, resp.Display, "no viewer zone requested")
}

func TestGetGridViewerProjection(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(datesEvent()), nil, nil, nil)

	resp, appErr := svc.GetGrid(context.Background(), "abc1234", "America/New_York")
	require.Nil(t, appErr)

	// Istanbul is UTC+3 and New York UTC-4 at that date; the keys stay
	// in the authoring zone, only the labels shift.
	assert.Equal(t, "2025-03-15 09:00", resp.Slots[0])
	assert.Equal(t, "2025-03-15 02:00", resp.Display["2025-03-15 09:00"])
	assert.Len(t, resp.Display, len(resp.Slots))
}

func TestGetGridSameZoneSkipsProjection(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(datesEvent()), nil, nil, nil)

	resp, appErr := svc.GetGrid(context.Background(), "abc1234", "Europe/Istanbul")
	require.Nil(t, appErr)
	assert.Nil(t, resp.Display)
}

func TestFinalize(t *testing.T) {
	repo := newFakeEventRepo(datesEvent())
	hub := &fakeBroadcaster{}
	svc := NewEventService(repo, nil, hub, nil)

	resp, appErr := svc.Finalize(context.Background(), "abc1234", &dto.FinalizeRequest{
		FinalizedTime: "2025-03-15 10:30",
		OrganizerName: "  ALICE ",
	})
	require.Nil(t, appErr, "organizer match is on the normalized name")
	assert.Equal(t, string(entity.EventStatusFinalized), resp.Status)
	assert.Equal(t, "2025-03-15 10:30", *resp.FinalizedTime)

	require.Len(t, hub.messages, 1)
	assert.Equal(t, rtentity.EventFinalized, hub.messages[0].Type)
}

func TestFinalizeRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.Event)
		req    dto.FinalizeRequest
		code   errors.ErrorCode
	}{
		{
			name: "not the organizer",
			req:  dto.FinalizeRequest{FinalizedTime: "2025-03-15 10:30", OrganizerName: "Bob"},
			code: errors.ErrNotOrganizer,
		},
		{
			name: "malformed key",
			req:  dto.FinalizeRequest{FinalizedTime: "2025-03-15T10:30", OrganizerName: "Alice"},
			code: errors.ErrMalformedKey,
		},
		{
			name: "off-grid minutes",
			req:  dto.FinalizeRequest{FinalizedTime: "2025-03-15 10:15", OrganizerName: "Alice"},
			code: errors.ErrMalformedKey,
		},
		{
			name: "date outside the event",
			req:  dto.FinalizeRequest{FinalizedTime: "2025-03-20 10:30", OrganizerName: "Alice"},
			code: errors.ErrInvalidSlot,
		},
		{
			name: "time outside the window",
			req:  dto.FinalizeRequest{FinalizedTime: "2025-03-15 12:00", OrganizerName: "Alice"},
			code: errors.ErrInvalidSlot,
		},
		{
			name: "already finalized",
			mutate: func(e *entity.Event) {
				done := "2025-03-15 09:00"
				e.IsFinalized = true
				e.FinalizedTime = &done
			},
			req:  dto.FinalizeRequest{FinalizedTime: "2025-03-15 10:30", OrganizerName: "Alice"},
			code: errors.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := datesEvent()
			if tt.mutate != nil {
				tt.mutate(e)
			}
			svc := NewEventService(newFakeEventRepo(e), nil, nil, nil)

			_, appErr := svc.Finalize(context.Background(), "abc1234", &tt.req)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestFinalizeAllowedWhileLocked(t *testing.T) {
	e := datesEvent()
	locked := time.Now().Add(-time.Hour)
	e.LockedAt = &locked
	svc := NewEventService(newFakeEventRepo(e), nil, nil, nil)

	resp, appErr := svc.Finalize(context.Background(), "abc1234", &dto.FinalizeRequest{
		FinalizedTime: "2025-03-15 10:30",
		OrganizerName: "Alice",
	})
	require.Nil(t, appErr, "the deadline lock blocks voting, not finalization")
	assert.True(t, resp.IsFinalized)
}

func TestLockExpired(t *testing.T) {
	e := datesEvent()
	deadline := time.Now().Add(-time.Minute)
	e.VotingDeadline = &deadline
	repo := newFakeEventRepo(e)
	hub := &fakeBroadcaster{}
	svc := NewEventService(repo, nil, hub, nil)

	require.NoError(t, svc.LockExpired(context.Background(), "abc1234"))
	assert.NotNil(t, repo.events["abc1234"].LockedAt)

	// Connected viewers learn about the lock immediately, not on their
	// next request.
	require.Len(t, hub.messages, 1)
	assert.Equal(t, rtentity.VotingLocked, hub.messages[0].Type)

	// Re-delivery of the task is a no-op, including its broadcast.
	first := *repo.events["abc1234"].LockedAt
	require.NoError(t, svc.LockExpired(context.Background(), "abc1234"))
	assert.Equal(t, first, *repo.events["abc1234"].LockedAt)
	assert.Len(t, hub.messages, 1)
}

func TestLockExpiredBeforeDeadline(t *testing.T) {
	e := datesEvent()
	deadline := time.Now().Add(time.Hour)
	e.VotingDeadline = &deadline
	repo := newFakeEventRepo(e)
	hub := &fakeBroadcaster{}
	svc := NewEventService(repo, nil, hub, nil)

	require.NoError(t, svc.LockExpired(context.Background(), "abc1234"))
	assert.Nil(t, repo.events["abc1234"].LockedAt, "early delivery must not lock")
	assert.Empty(t, hub.messages)
}

func TestLockExpiredSkipsFinalized(t *testing.T) {
	e := datesEvent()
	done := "2025-03-15 09:00"
	deadline := time.Now().Add(-time.Minute)
	e.IsFinalized = true
	e.FinalizedTime = &done
	e.VotingDeadline = &deadline
	repo := newFakeEventRepo(e)
	svc := NewEventService(repo, nil, nil, nil)

	require.NoError(t, svc.LockExpired(context.Background(), "abc1234"))
	assert.Nil(t, repo.events["abc1234"].LockedAt)
}
