package entity

import "time"

// Vote is one marked half-hour cell. A participant's votes form a
// ledger keyed by slot; submission replaces the whole ledger, so rows
// are only ever the latest full statement of that participant's
// availability.
type Vote struct {
	VoteID        string    `db:"vote_id" json:"voteId"`
	EventID       string    `db:"event_id" json:"eventId"`
	ParticipantID string    `db:"participant_id" json:"participantId"`
	TimeSlot      string    `db:"time_slot" json:"timeSlot"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
