package entity

import "time"

// Participant is one collaborator on an event. Identity is the
// normalized display name within the event: the same normalized name
// always resolves to the same participant row and vote ledger.
type Participant struct {
	ParticipantID  string    `db:"participant_id" json:"participantId"`
	EventID        string    `db:"event_id" json:"eventId"`
	Name           string    `db:"name" json:"name"`
	NormalizedName string    `db:"normalized_name" json:"-"`
	IPAddress      string    `db:"ip_address" json:"-"`
	IsBlocked      bool      `db:"is_blocked" json:"isBlocked"`
	JoinedAt       time.Time `db:"joined_at" json:"joinedAt"`
}
