package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType enumerates the realtime channel messages. Delivery is
// at-least-once and unordered; every payload is a full snapshot of the
// state it describes so that replaying or reordering messages cannot
// corrupt a viewer's replica.
type MessageType string

const (
	ParticipantJoined MessageType = "participant_joined"
	VotesUpdated      MessageType = "votes_updated"
	EventFinalized    MessageType = "event_finalized"
	UserBlocked       MessageType = "user_blocked"
	VotingLocked      MessageType = "voting_locked"
)

// Message is the wire envelope for room broadcasts.
type Message struct {
	Type    MessageType     `json:"type"`
	EventID string          `json:"event_id"`
	Payload json.RawMessage `json:"payload"`
}

// ParticipantInfo is one roster entry.
type ParticipantInfo struct {
	ParticipantID string    `json:"participantId"`
	Name          string    `json:"name"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// VoteEntry is one (participant, slot) pair of the full vote collection.
type VoteEntry struct {
	ParticipantID string `json:"participantId"`
	TimeSlot      string `json:"timeSlot"`
}

// ParticipantJoinedPayload carries the full roster, not the delta.
type ParticipantJoinedPayload struct {
	Participants []ParticipantInfo `json:"participants"`
}

// VotesUpdatedPayload carries the full current vote collection for
// recomputation, sidestepping lost-update problems of delta application
// over an unordered channel.
type VotesUpdatedPayload struct {
	Votes []VoteEntry `json:"votes"`
}

type EventFinalizedPayload struct {
	FinalizedTime string `json:"finalizedTime"`
}

type UserBlockedPayload struct {
	ParticipantID string `json:"participantId"`
}

// VotingLockedPayload announces the voting deadline has passed; viewers
// close their voting UI without waiting for the next HTTP round-trip.
type VotingLockedPayload struct {
	LockedAt time.Time `json:"lockedAt"`
}

func newMessage(t MessageType, eventID string, payload any) Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		// Payload types are plain structs; this cannot fail at runtime.
		panic(fmt.Sprintf("marshal %s payload: %v", t, err))
	}
	return Message{Type: t, EventID: eventID, Payload: raw}
}

func NewParticipantJoined(eventID string, participants []ParticipantInfo) Message {
	return newMessage(ParticipantJoined, eventID, ParticipantJoinedPayload{Participants: participants})
}

func NewVotesUpdated(eventID string, votes []VoteEntry) Message {
	return newMessage(VotesUpdated, eventID, VotesUpdatedPayload{Votes: votes})
}

func NewEventFinalized(eventID, finalizedTime string) Message {
	return newMessage(EventFinalized, eventID, EventFinalizedPayload{FinalizedTime: finalizedTime})
}

func NewUserBlocked(eventID, participantID string) Message {
	return newMessage(UserBlocked, eventID, UserBlockedPayload{ParticipantID: participantID})
}

func NewVotingLocked(eventID string, lockedAt time.Time) Message {
	return newMessage(VotingLocked, eventID, VotingLockedPayload{LockedAt: lockedAt})
}
