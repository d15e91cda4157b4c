package service

import (
	"encoding/json"
	"fmt"

	"slotpoll/modules/realtime/entity"
)

// RoomState is the replica a connected viewer (or a test) maintains from
// channel messages. Apply is an idempotent merge: applying the same
// message any number of times, in any order relative to its duplicates,
// leaves the state identical to applying it once. Vote counts are always
// recomputed from the ledger collection, never adjusted in place.
type RoomState struct {
	Participants map[string]entity.ParticipantInfo
	Ledgers      map[string]map[string]struct{} // participantId -> slot key set
	Blocked      map[string]struct{}
	IsLocked     bool
	IsFinalized  bool
	FinalizedAt  string
}

func NewRoomState() *RoomState {
	return &RoomState{
		Participants: map[string]entity.ParticipantInfo{},
		Ledgers:      map[string]map[string]struct{}{},
		Blocked:      map[string]struct{}{},
	}
}

// Apply merges one channel message into the replica.
func (s *RoomState) Apply(msg entity.Message) error {
	switch msg.Type {
	case entity.ParticipantJoined:
		var p entity.ParticipantJoinedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		roster := make(map[string]entity.ParticipantInfo, len(p.Participants))
		for _, info := range p.Participants {
			roster[info.ParticipantID] = info
		}
		s.Participants = roster

	case entity.VotesUpdated:
		var p entity.VotesUpdatedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		ledgers := map[string]map[string]struct{}{}
		for _, v := range p.Votes {
			set, ok := ledgers[v.ParticipantID]
			if !ok {
				set = map[string]struct{}{}
				ledgers[v.ParticipantID] = set
			}
			set[v.TimeSlot] = struct{}{}
		}
		s.Ledgers = ledgers

	case entity.EventFinalized:
		var p entity.EventFinalizedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		s.IsFinalized = true
		s.FinalizedAt = p.FinalizedTime

	case entity.VotingLocked:
		var p entity.VotingLockedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		s.IsLocked = true

	case entity.UserBlocked:
		var p entity.UserBlockedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		s.Blocked[p.ParticipantID] = struct{}{}
		delete(s.Ledgers, p.ParticipantID)
		delete(s.Participants, p.ParticipantID)

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

// Counts derives slot key -> vote count from the ledgers of non-blocked
// participants. Zero-count slots are simply absent; callers render
// absent keys at the minimum-visibility floor.
func (s *RoomState) Counts() map[string]int {
	counts := map[string]int{}
	for pid, ledger := range s.Ledgers {
		if _, blocked := s.Blocked[pid]; blocked {
			continue
		}
		for slot := range ledger {
			counts[slot]++
		}
	}
	return counts
}
