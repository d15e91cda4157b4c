package service

import (
	"context"
	"sort"
	"time"

	"slotpoll/core/errors"
	"slotpoll/core/timeslot"
	evententity "slotpoll/modules/event/entity"
	pentity "slotpoll/modules/participant/entity"
	rtentity "slotpoll/modules/realtime/entity"
	rtservice "slotpoll/modules/realtime/service"
	"slotpoll/modules/vote/dto"
	"slotpoll/modules/vote/repository"
)

// EventDirectory resolves events; implemented by the event service.
type EventDirectory interface {
	GetEntity(ctx context.Context, eventID string) (*evententity.Event, *errors.AppError)
}

// ParticipantDirectory resolves participants; implemented by the
// participant repository.
type ParticipantDirectory interface {
	GetByID(ctx context.Context, participantID string) (*pentity.Participant, error)
}

// VoteServiceInterface defines the service contract
type VoteServiceInterface interface {
	Submit(ctx context.Context, eventID string, req *dto.SubmitVotesRequest) (*dto.ParticipantVotesResponse, *errors.AppError)
	GetEventVotes(ctx context.Context, eventID string) (*dto.EventVotesResponse, *errors.AppError)
	GetParticipantVotes(ctx context.Context, eventID, participantID string) (*dto.ParticipantVotesResponse, *errors.AppError)
}

// VoteService implements the availability ledger operations
type VoteService struct {
	repo         repository.VoteRepositoryInterface
	events       EventDirectory
	participants ParticipantDirectory
	hub          rtservice.Broadcaster

	// Submission re-checks the deadline on every call; injectable for
	// tests.
	now func() time.Time
}

// NewVoteService creates a new service. hub may be nil.
func NewVoteService(repo repository.VoteRepositoryInterface, events EventDirectory, participants ParticipantDirectory, hub rtservice.Broadcaster) *VoteService {
	return &VoteService{
		repo:         repo,
		events:       events,
		participants: participants,
		hub:          hub,
		now:          time.Now,
	}
}

// Submit replaces the participant's whole ledger with the request's
// slots. Submitting the same slots twice leaves the ledger unchanged;
// an empty list clears it.
func (s *VoteService) Submit(ctx context.Context, eventID string, req *dto.SubmitVotesRequest) (*dto.ParticipantVotesResponse, *errors.AppError) {
	event, appErr := s.events.GetEntity(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}

	now := s.now()
	if !event.VotingOpen(now) {
		return nil, errors.NewAppError(errors.ErrVotingClosed, "Voting is closed for this event", nil)
	}

	participant, err := s.participants.GetByID(ctx, req.ParticipantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to fetch participant", err)
	}
	if participant == nil || participant.EventID != eventID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Participant not found", nil)
	}
	if participant.IsBlocked {
		return nil, errors.NewAppError(errors.ErrForbidden, "You have been blocked from this event", nil)
	}

	slots, appErr := validateSlots(event, req.TimeSlots, now)
	if appErr != nil {
		return nil, appErr
	}

	if err := s.repo.Replace(ctx, eventID, participant.ParticipantID, slots); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to save votes", err)
	}

	s.broadcastVotes(ctx, eventID)

	return &dto.ParticipantVotesResponse{ParticipantID: participant.ParticipantID, TimeSlots: slots}, nil
}

// GetEventVotes returns the full collection plus per-slot aggregates.
// Counts are recomputed from the ledgers on every call and never
// incrementally maintained.
func (s *VoteService) GetEventVotes(ctx context.Context, eventID string) (*dto.EventVotesResponse, *errors.AppError) {
	if _, appErr := s.events.GetEntity(ctx, eventID); appErr != nil {
		return nil, appErr
	}

	votes, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list votes", err)
	}
	counts, err := s.repo.CountBySlot(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to aggregate votes", err)
	}

	resp := &dto.EventVotesResponse{
		EventID:    eventID,
		Votes:      make([]dto.VoteEntryResponse, 0, len(votes)),
		Aggregates: make([]dto.SlotAggregate, 0, len(counts)),
	}
	for _, v := range votes {
		resp.Votes = append(resp.Votes, dto.VoteEntryResponse{ParticipantID: v.ParticipantID, TimeSlot: v.TimeSlot})
	}

	max := 0
	for _, c := range counts {
		if c.Count > max {
			max = c.Count
		}
	}
	for _, c := range counts {
		resp.Aggregates = append(resp.Aggregates, dto.SlotAggregate{
			TimeSlot: c.TimeSlot,
			Count:    c.Count,
			Opacity:  OpacityWeight(c.Count, max),
		})
	}
	sort.Slice(resp.Aggregates, func(i, j int) bool {
		return resp.Aggregates[i].TimeSlot < resp.Aggregates[j].TimeSlot
	})

	return resp, nil
}

// GetParticipantVotes returns one participant's current ledger.
func (s *VoteService) GetParticipantVotes(ctx context.Context, eventID, participantID string) (*dto.ParticipantVotesResponse, *errors.AppError) {
	if _, appErr := s.events.GetEntity(ctx, eventID); appErr != nil {
		return nil, appErr
	}

	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to fetch participant", err)
	}
	if participant == nil || participant.EventID != eventID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Participant not found", nil)
	}

	votes, err := s.repo.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list votes", err)
	}

	resp := &dto.ParticipantVotesResponse{ParticipantID: participantID, TimeSlots: make([]string, 0, len(votes))}
	for _, v := range votes {
		resp.TimeSlots = append(resp.TimeSlots, v.TimeSlot)
	}
	return resp, nil
}

// OpacityWeight maps a slot's count to a display weight against the
// maximum count currently in view. Zero-count slots keep a faint floor
// so empty cells stay visible; everything else scales linearly between
// 0.2 and 1.0.
func OpacityWeight(count, maxCount int) float64 {
	if count == 0 || maxCount == 0 {
		return 0.05
	}
	return 0.2 + (float64(count)/float64(maxCount))*0.8
}

// validateSlots canonicalizes, validates and dedups the submitted keys.
func validateSlots(event *evententity.Event, raw []string, now time.Time) ([]string, *errors.AppError) {
	seen := make(map[timeslot.SlotKey]struct{}, len(raw))
	slots := make([]string, 0, len(raw))
	for _, r := range raw {
		key, err := timeslot.Decode(r)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrMalformedKey, "Invalid slot key: "+r, err)
		}
		if !event.ContainsSlot(key, now) {
			return nil, errors.NewAppError(errors.ErrInvalidSlot, "Slot outside the event's range: "+r, nil)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		slots = append(slots, string(key))
	}
	sort.Strings(slots)
	return slots, nil
}

func (s *VoteService) broadcastVotes(ctx context.Context, eventID string) {
	if s.hub == nil {
		return
	}
	votes, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return
	}
	entries := make([]rtentity.VoteEntry, 0, len(votes))
	for _, v := range votes {
		entries = append(entries, rtentity.VoteEntry{ParticipantID: v.ParticipantID, TimeSlot: v.TimeSlot})
	}
	s.hub.Broadcast(ctx, rtentity.NewVotesUpdated(eventID, entries))
}
