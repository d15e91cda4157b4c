package service

import (
	"context"

	"slotpoll/core/errors"
	"slotpoll/core/utils"
	evententity "slotpoll/modules/event/entity"
	"slotpoll/modules/participant/dto"
	"slotpoll/modules/participant/entity"
	"slotpoll/modules/participant/repository"
	rtentity "slotpoll/modules/realtime/entity"
	rtservice "slotpoll/modules/realtime/service"
	voteentity "slotpoll/modules/vote/entity"
)

// EventDirectory resolves events; implemented by the event service.
type EventDirectory interface {
	GetEntity(ctx context.Context, eventID string) (*evententity.Event, *errors.AppError)
}

// VoteStore is the slice of the vote repository the block operation
// needs: clearing a blocked participant's ledger and rebuilding the
// full collection for the broadcast.
type VoteStore interface {
	DeleteByParticipant(ctx context.Context, participantID string) error
	ListByEvent(ctx context.Context, eventID string) ([]voteentity.Vote, error)
}

// ParticipantServiceInterface defines the service contract
type ParticipantServiceInterface interface {
	Join(ctx context.Context, eventID string, req *dto.JoinRequest, ip string) (*dto.JoinResponse, *errors.AppError)
	List(ctx context.Context, eventID string) (*dto.ListResponse, *errors.AppError)
	Block(ctx context.Context, eventID string, req *dto.BlockRequest) *errors.AppError
}

// ParticipantService implements the collaborator roster operations
type ParticipantService struct {
	repo   repository.ParticipantRepositoryInterface
	events EventDirectory
	votes  VoteStore
	hub    rtservice.Broadcaster
}

// NewParticipantService creates a new service. hub may be nil.
func NewParticipantService(repo repository.ParticipantRepositoryInterface, events EventDirectory, votes VoteStore, hub rtservice.Broadcaster) *ParticipantService {
	return &ParticipantService{repo: repo, events: events, votes: votes, hub: hub}
}

// Join registers a collaborator by display name. Identity is the
// normalized name within the event: the same name, whatever its casing
// or padding, always resolves to the same participant and ledger.
func (s *ParticipantService) Join(ctx context.Context, eventID string, req *dto.JoinRequest, ip string) (*dto.JoinResponse, *errors.AppError) {
	if _, appErr := s.events.GetEntity(ctx, eventID); appErr != nil {
		return nil, appErr
	}

	normalized := utils.NormalizeName(req.Name)
	if normalized == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Name is required", nil)
	}

	saved, err := s.repo.Upsert(ctx, &entity.Participant{
		EventID:        eventID,
		Name:           req.Name,
		NormalizedName: normalized,
		IPAddress:      ip,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to join event", err)
	}
	if saved.IsBlocked {
		return nil, errors.NewAppError(errors.ErrForbidden, "You have been blocked from this event", nil)
	}

	s.broadcastRoster(ctx, eventID)

	return &dto.JoinResponse{ParticipantID: saved.ParticipantID, Name: saved.Name}, nil
}

// List returns the active roster; blocked participants never appear.
func (s *ParticipantService) List(ctx context.Context, eventID string) (*dto.ListResponse, *errors.AppError) {
	if _, appErr := s.events.GetEntity(ctx, eventID); appErr != nil {
		return nil, appErr
	}

	participants, err := s.repo.ListActive(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list participants", err)
	}

	resp := &dto.ListResponse{Participants: make([]dto.ParticipantResponse, 0, len(participants))}
	for i := range participants {
		resp.Participants = append(resp.Participants, dto.ToParticipantResponse(&participants[i]))
	}
	return resp, nil
}

// Block marks a participant as blocked, clears their ledger and pushes
// both a user_blocked and a votes_updated snapshot so every viewer's
// counts drop immediately. Blocking is idempotent.
func (s *ParticipantService) Block(ctx context.Context, eventID string, req *dto.BlockRequest) *errors.AppError {
	event, appErr := s.events.GetEntity(ctx, eventID)
	if appErr != nil {
		return appErr
	}

	if utils.NormalizeName(req.OrganizerName) != utils.NormalizeName(event.OrganizerName) {
		return errors.NewAppError(errors.ErrNotOrganizer, "Only the organizer can block participants", nil)
	}

	participant, err := s.repo.GetByID(ctx, req.ParticipantID)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "Failed to fetch participant", err)
	}
	if participant == nil || participant.EventID != eventID {
		return errors.NewAppError(errors.ErrNotFound, "Participant not found", nil)
	}

	if !participant.IsBlocked {
		if err := s.repo.SetBlocked(ctx, participant.ParticipantID); err != nil {
			return errors.NewAppError(errors.ErrUpdateFailed, "Failed to block participant", err)
		}
	}
	if err := s.votes.DeleteByParticipant(ctx, participant.ParticipantID); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to clear participant votes", err)
	}

	if s.hub != nil {
		s.hub.Broadcast(ctx, rtentity.NewUserBlocked(eventID, participant.ParticipantID))
	}
	s.broadcastVotes(ctx, eventID)

	return nil
}

func (s *ParticipantService) broadcastRoster(ctx context.Context, eventID string) {
	if s.hub == nil {
		return
	}
	participants, err := s.repo.ListActive(ctx, eventID)
	if err != nil {
		return
	}
	roster := make([]rtentity.ParticipantInfo, 0, len(participants))
	for _, p := range participants {
		roster = append(roster, rtentity.ParticipantInfo{
			ParticipantID: p.ParticipantID,
			Name:          p.Name,
			JoinedAt:      p.JoinedAt,
		})
	}
	s.hub.Broadcast(ctx, rtentity.NewParticipantJoined(eventID, roster))
}

func (s *ParticipantService) broadcastVotes(ctx context.Context, eventID string) {
	if s.hub == nil {
		return
	}
	votes, err := s.votes.ListByEvent(ctx, eventID)
	if err != nil {
		return
	}
	entries := make([]rtentity.VoteEntry, 0, len(votes))
	for _, v := range votes {
		entries = append(entries, rtentity.VoteEntry{ParticipantID: v.ParticipantID, TimeSlot: v.TimeSlot})
	}
	s.hub.Broadcast(ctx, rtentity.NewVotesUpdated(eventID, entries))
}
