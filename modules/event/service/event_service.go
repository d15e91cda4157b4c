package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"slotpoll/core/cache"
	"slotpoll/core/constants"
	"slotpoll/core/errors"
	"slotpoll/core/logger"
	"slotpoll/core/timeslot"
	"slotpoll/core/utils"
	"slotpoll/modules/event/dto"
	"slotpoll/modules/event/entity"
	"slotpoll/modules/event/repository"
	rtentity "slotpoll/modules/realtime/entity"
	rtservice "slotpoll/modules/realtime/service"
)

const eventCachePrefix = "slotpoll:event:"

// DeadlineScheduler schedules the deadline-lock task. Implemented over
// asynq in module.go; tests inject a fake.
type DeadlineScheduler interface {
	ScheduleLock(eventID string, at time.Time) error
}

// EventServiceInterface defines the service contract
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.CreateEventResponse, *errors.AppError)
	GetEventByID(ctx context.Context, eventID string) (*dto.EventResponse, *errors.AppError)
	GetGrid(ctx context.Context, eventID, viewerZone string) (*dto.GridResponse, *errors.AppError)
	Finalize(ctx context.Context, eventID string, req *dto.FinalizeRequest) (*dto.EventResponse, *errors.AppError)

	// GetEntity is used by the vote and participant services for the
	// voting-open and in-range checks.
	GetEntity(ctx context.Context, eventID string) (*entity.Event, *errors.AppError)

	// LockExpired persists the deadline lock; called by the worker.
	LockExpired(ctx context.Context, eventID string) error
}

// EventService implements the availability-poll event operations
type EventService struct {
	repo      repository.EventRepositoryInterface
	cache     cache.Cache
	hub       rtservice.Broadcaster
	scheduler DeadlineScheduler
	now       func() time.Time
}

// NewEventService creates a new service. cache, hub and scheduler may be
// nil (tests, or a deployment without redis).
func NewEventService(repo repository.EventRepositoryInterface, c cache.Cache, hub rtservice.Broadcaster, scheduler DeadlineScheduler) *EventService {
	return &EventService{
		repo:      repo,
		cache:     c,
		hub:       hub,
		scheduler: scheduler,
		now:       time.Now,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.CreateEventResponse, *errors.AppError) {
	if appErr := validateCreate(req, s.now()); appErr != nil {
		return nil, appErr
	}

	days := make(pq.Int64Array, 0, len(req.SelectedDays))
	for _, d := range req.SelectedDays {
		days = append(days, int64(d))
	}

	event := &entity.Event{
		EventID:        utils.GenerateEventID(),
		Title:          req.Title,
		Type:           entity.EventType(req.Type),
		SelectedDates:  pq.StringArray(req.SelectedDates),
		SelectedDays:   days,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Timezone:       req.Timezone,
		OrganizerName:  req.OrganizerName,
		VotingDeadline: req.VotingDeadline,
	}

	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create event", err)
	}

	if created.VotingDeadline != nil && s.scheduler != nil {
		if err := s.scheduler.ScheduleLock(created.EventID, created.VotingDeadline.UTC()); err != nil {
			// The lock is also derived from the deadline on every read,
			// so a failed schedule only delays the persisted flag.
			logger.Error("EventService:CreateEvent schedule deadline lock", "event_id", created.EventID, "error", err)
		}
	}

	return &dto.CreateEventResponse{EventID: created.EventID}, nil
}

func (s *EventService) GetEventByID(ctx context.Context, eventID string) (*dto.EventResponse, *errors.AppError) {
	event, appErr := s.GetEntity(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToEventResponse(event, s.now()), nil
}

func (s *EventService) GetEntity(ctx context.Context, eventID string) (*entity.Event, *errors.AppError) {
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, eventCachePrefix+eventID); err == nil && ok {
			var cached entity.Event
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to fetch event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(event); err == nil {
			if err := s.cache.Set(ctx, eventCachePrefix+eventID, string(raw), constants.EventSnapshotTTL); err != nil {
				logger.Warn("EventService:GetEntity cache set", "event_id", eventID, "error", err)
			}
		}
	}

	return event, nil
}

func (s *EventService) GetGrid(ctx context.Context, eventID, viewerZone string) (*dto.GridResponse, *errors.AppError) {
	event, appErr := s.GetEntity(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}

	keys, err := timeslot.Grid(event.CandidateDates(s.now()), event.StartTime, event.EndTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidSlot, "Event has an invalid time range", err)
	}

	resp := &dto.GridResponse{
		EventID:  event.EventID,
		Timezone: event.Timezone,
		Slots:    make([]string, 0, len(keys)),
	}
	for _, k := range keys {
		resp.Slots = append(resp.Slots, string(k))
	}

	// Labels only: state stays keyed in the authoring zone. Projection
	// failures fall back to identity inside Project and never surface.
	if viewerZone != "" && viewerZone != event.Timezone {
		display := make(map[string]string, len(keys))
		for orig, proj := range timeslot.ProjectAll(keys, event.Timezone, viewerZone) {
			display[string(orig)] = string(proj)
		}
		resp.Display = display
	}

	return resp, nil
}

func (s *EventService) Finalize(ctx context.Context, eventID string, req *dto.FinalizeRequest) (*dto.EventResponse, *errors.AppError) {
	event, appErr := s.GetEntity(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}

	if event.IsFinalized {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Event is already finalized", nil)
	}

	if utils.NormalizeName(req.OrganizerName) != utils.NormalizeName(event.OrganizerName) {
		return nil, errors.NewAppError(errors.ErrNotOrganizer, "Only the organizer can finalize the event", nil)
	}

	key, err := timeslot.Decode(req.FinalizedTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrMalformedKey, "Invalid finalized time", err)
	}
	// In-range only; the slot does not need any votes. A deadline lock
	// does not prevent finalization either.
	if !event.ContainsSlot(key, s.now()) {
		return nil, errors.NewAppError(errors.ErrInvalidSlot, "Finalized time is outside the event's range", nil)
	}

	if err := s.repo.SetFinalized(ctx, eventID, string(key)); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to finalize event", err)
	}
	s.invalidate(ctx, eventID)

	finalized := string(key)
	event.IsFinalized = true
	event.FinalizedTime = &finalized

	if s.hub != nil {
		s.hub.Broadcast(ctx, rtentity.NewEventFinalized(eventID, finalized))
	}

	return dto.ToEventResponse(event, s.now()), nil
}

func (s *EventService) LockExpired(ctx context.Context, eventID string) error {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil || event.IsFinalized || event.LockedAt != nil {
		return nil
	}
	if event.VotingDeadline == nil || s.now().UTC().Before(event.VotingDeadline.UTC()) {
		return nil
	}

	lockedAt := s.now().UTC()
	if err := s.repo.SetLocked(ctx, eventID, lockedAt); err != nil {
		return err
	}
	s.invalidate(ctx, eventID)

	if s.hub != nil {
		s.hub.Broadcast(ctx, rtentity.NewVotingLocked(eventID, lockedAt))
	}

	logger.Info("EventService:LockExpired voting locked", "event_id", eventID)
	return nil
}

func (s *EventService) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, eventCachePrefix+eventID); err != nil {
		logger.Warn("EventService:invalidate", "event_id", eventID, "error", err)
	}
}

func validateCreate(req *dto.CreateEventRequest, now time.Time) *errors.AppError {
	if req.Title == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "Title is required", nil)
	}
	if utils.NormalizeName(req.OrganizerName) == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "Organizer name is required", nil)
	}

	switch entity.EventType(req.Type) {
	case entity.EventTypeDates:
		if len(req.SelectedDates) == 0 {
			return errors.NewAppError(errors.ErrInvalidInput, "At least one date is required", nil)
		}
	case entity.EventTypeDays:
		if len(req.SelectedDays) == 0 {
			return errors.NewAppError(errors.ErrInvalidInput, "At least one day of week is required", nil)
		}
		for _, d := range req.SelectedDays {
			if d < 0 || d > 6 {
				return errors.NewAppError(errors.ErrInvalidInput, "Days of week must be 0-6", nil)
			}
		}
	default:
		return errors.NewAppError(errors.ErrInvalidInput, "Type must be dates or days", nil)
	}

	// The grid builder validates dates and the [start, end) window in
	// one pass.
	dates := req.SelectedDates
	if entity.EventType(req.Type) == entity.EventTypeDays {
		dates = []string{now.UTC().Format(constants.SlotDateLayout)}
	}
	if _, err := timeslot.Sequence(dates, req.StartTime, req.EndTime); err != nil {
		return errors.NewAppError(errors.ErrInvalidSlot, "Invalid time range", err)
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil || req.Timezone == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "Unknown timezone", err)
	}

	if req.VotingDeadline != nil && !req.VotingDeadline.UTC().After(now.UTC()) {
		return errors.NewAppError(errors.ErrInvalidInput, "Voting deadline must be in the future", nil)
	}

	return nil
}
