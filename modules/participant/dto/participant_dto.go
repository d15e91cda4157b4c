package dto

import (
	"time"

	"slotpoll/modules/participant/entity"
)

// ===================== Request DTOs =====================

// JoinRequest registers a collaborator by display name
type JoinRequest struct {
	Name string `json:"name" validate:"required"`
}

// BlockRequest marks a participant as blocked; organizer only
type BlockRequest struct {
	ParticipantID string `json:"participantId"`
	OrganizerName string `json:"organizerName"`
}

// ===================== Response DTOs =====================

// ParticipantResponse is one roster entry
type ParticipantResponse struct {
	ParticipantID string    `json:"participantId"`
	Name          string    `json:"name"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// JoinResponse returns the participant's identity for the session
type JoinResponse struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

// ListResponse is the active roster, blocked participants excluded
type ListResponse struct {
	Participants []ParticipantResponse `json:"participants"`
}

// ===================== Mapper Functions =====================

// ToParticipantResponse maps entity to DTO
func ToParticipantResponse(p *entity.Participant) ParticipantResponse {
	return ParticipantResponse{
		ParticipantID: p.ParticipantID,
		Name:          p.Name,
		JoinedAt:      p.JoinedAt,
	}
}
