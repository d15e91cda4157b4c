package dto

import (
	"time"

	"slotpoll/modules/event/entity"
)

// ===================== Request DTOs =====================

// CreateEventRequest for creating a new availability poll
type CreateEventRequest struct {
	Title          string     `json:"title" validate:"required"`
	Type           string     `json:"type"` // "dates" or "days"
	SelectedDates  []string   `json:"selectedDates"`
	SelectedDays   []int      `json:"selectedDays"`
	StartTime      string     `json:"startTime"` // "HH:mm"
	EndTime        string     `json:"endTime"`   // "HH:mm"
	Timezone       string     `json:"timezone"`  // IANA zone
	OrganizerName  string     `json:"organizerName"`
	VotingDeadline *time.Time `json:"votingDeadline,omitempty"` // UTC
}

// FinalizeRequest selects the chosen slot; only the organizer may do it
type FinalizeRequest struct {
	FinalizedTime string `json:"finalizedTime"`
	OrganizerName string `json:"organizerName"`
}

// ===================== Response DTOs =====================

// CreateEventResponse carries the new event's public ID
type CreateEventResponse struct {
	EventID string `json:"eventId"`
}

// EventResponse for event details
type EventResponse struct {
	EventID        string     `json:"eventId"`
	Title          string     `json:"title"`
	Type           string     `json:"type"`
	SelectedDates  []string   `json:"selectedDates"`
	SelectedDays   []int      `json:"selectedDays"`
	StartTime      string     `json:"startTime"`
	EndTime        string     `json:"endTime"`
	Timezone       string     `json:"timezone"`
	OrganizerName  string     `json:"organizerName"`
	Status         string     `json:"status"`
	IsFinalized    bool       `json:"isFinalized"`
	FinalizedTime  *string    `json:"finalizedTime"`
	VotingDeadline *time.Time `json:"votingDeadline,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// GridResponse is the voting grid. Slots stay keyed in the authoring
// timezone; Display maps each key to its label in the viewer's zone and
// is only present when the viewer asked for a different zone.
type GridResponse struct {
	EventID  string            `json:"eventId"`
	Timezone string            `json:"timezone"`
	Slots    []string          `json:"slots"`
	Display  map[string]string `json:"display,omitempty"`
}

// ===================== Mapper Functions =====================

// ToEventResponse maps entity to DTO
func ToEventResponse(e *entity.Event, now time.Time) *EventResponse {
	days := make([]int, 0, len(e.SelectedDays))
	for _, d := range e.SelectedDays {
		days = append(days, int(d))
	}

	return &EventResponse{
		EventID:        e.EventID,
		Title:          e.Title,
		Type:           string(e.Type),
		SelectedDates:  []string(e.SelectedDates),
		SelectedDays:   days,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		Timezone:       e.Timezone,
		OrganizerName:  e.OrganizerName,
		Status:         string(e.Status(now)),
		IsFinalized:    e.IsFinalized,
		FinalizedTime:  e.FinalizedTime,
		VotingDeadline: e.VotingDeadline,
		CreatedAt:      e.CreatedAt,
	}
}
