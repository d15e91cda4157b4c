package dto

// ===================== Request DTOs =====================

// SubmitVotesRequest replaces the participant's whole ledger with the
// given slots. An empty list clears the ledger.
type SubmitVotesRequest struct {
	ParticipantID string   `json:"participantId" validate:"required"`
	TimeSlots     []string `json:"timeSlots"`
}

// ===================== Response DTOs =====================

// VoteEntryResponse is one (participant, slot) pair
type VoteEntryResponse struct {
	ParticipantID string `json:"participantId"`
	TimeSlot      string `json:"timeSlot"`
}

// SlotAggregate is one slot's derived view state
type SlotAggregate struct {
	TimeSlot string  `json:"timeSlot"`
	Count    int     `json:"count"`
	Opacity  float64 `json:"opacity"`
}

// EventVotesResponse is the full vote collection plus the recomputed
// per-slot aggregates
type EventVotesResponse struct {
	EventID    string              `json:"eventId"`
	Votes      []VoteEntryResponse `json:"votes"`
	Aggregates []SlotAggregate     `json:"aggregates"`
}

// ParticipantVotesResponse is one participant's current ledger
type ParticipantVotesResponse struct {
	ParticipantID string   `json:"participantId"`
	TimeSlots     []string `json:"timeSlots"`
}
