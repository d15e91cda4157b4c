package repository

import (
	"context"

	"github.com/google/uuid"

	"slotpoll/core/database"
	"slotpoll/core/logger"
	"slotpoll/modules/vote/entity"
)

// SlotCount is one aggregate row: a slot and its number of voters.
type SlotCount struct {
	TimeSlot string `db:"time_slot"`
	Count    int    `db:"count"`
}

// VoteRepository handles vote database operations
type VoteRepository struct {
	DB database.Database
}

// NewVoteRepository creates a new repository instance
func NewVoteRepository(db database.Database) *VoteRepository {
	return &VoteRepository{DB: db}
}

// VoteRepositoryInterface defines the repository contract
type VoteRepositoryInterface interface {
	// Replace swaps the participant's whole ledger for the given slots
	// in one transaction. Submitting twice with the same slots leaves
	// the same ledger.
	Replace(ctx context.Context, eventID, participantID string, slots []string) error
	ListByEvent(ctx context.Context, eventID string) ([]entity.Vote, error)
	ListByParticipant(ctx context.Context, participantID string) ([]entity.Vote, error)
	CountBySlot(ctx context.Context, eventID string) ([]SlotCount, error)
	DeleteByParticipant(ctx context.Context, participantID string) error
}

func (r *VoteRepository) Replace(ctx context.Context, eventID, participantID string, slots []string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("VoteRepository:Replace begin", "error", err, "participant_id", participantID)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE participant_id = $1`, participantID); err != nil {
		logger.Error("VoteRepository:Replace delete", "error", err, "participant_id", participantID)
		return err
	}

	insert := `INSERT INTO votes (vote_id, event_id, participant_id, time_slot) VALUES ($1, $2, $3, $4)`
	for _, slot := range slots {
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), eventID, participantID, slot); err != nil {
			logger.Error("VoteRepository:Replace insert", "error", err, "participant_id", participantID, "time_slot", slot)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("VoteRepository:Replace commit", "error", err, "participant_id", participantID)
		return err
	}
	return nil
}

func (r *VoteRepository) ListByEvent(ctx context.Context, eventID string) ([]entity.Vote, error) {
	query := `
		SELECT v.vote_id, v.event_id, v.participant_id, v.time_slot, v.created_at
		FROM votes v
		JOIN participants p ON p.participant_id = v.participant_id
		WHERE v.event_id = $1 AND p.is_blocked = FALSE
		ORDER BY v.time_slot ASC
	`

	var votes []entity.Vote
	err := r.DB.SelectContext(ctx, &votes, query, eventID)
	if err != nil {
		logger.Error("VoteRepository:ListByEvent", "error", err, "event_id", eventID)
		return nil, err
	}

	return votes, nil
}

func (r *VoteRepository) ListByParticipant(ctx context.Context, participantID string) ([]entity.Vote, error) {
	query := `
		SELECT vote_id, event_id, participant_id, time_slot, created_at
		FROM votes WHERE participant_id = $1
		ORDER BY time_slot ASC
	`

	var votes []entity.Vote
	err := r.DB.SelectContext(ctx, &votes, query, participantID)
	if err != nil {
		logger.Error("VoteRepository:ListByParticipant", "error", err, "participant_id", participantID)
		return nil, err
	}

	return votes, nil
}

// CountBySlot recomputes the aggregate from the ledgers on every call.
// Blocked participants' votes never count.
func (r *VoteRepository) CountBySlot(ctx context.Context, eventID string) ([]SlotCount, error) {
	query := `
		SELECT v.time_slot, COUNT(*) AS count
		FROM votes v
		JOIN participants p ON p.participant_id = v.participant_id
		WHERE v.event_id = $1 AND p.is_blocked = FALSE
		GROUP BY v.time_slot
	`

	var counts []SlotCount
	err := r.DB.SelectContext(ctx, &counts, query, eventID)
	if err != nil {
		logger.Error("VoteRepository:CountBySlot", "error", err, "event_id", eventID)
		return nil, err
	}

	return counts, nil
}

func (r *VoteRepository) DeleteByParticipant(ctx context.Context, participantID string) error {
	err := r.DB.ExecContext(ctx, `DELETE FROM votes WHERE participant_id = $1`, participantID)
	if err != nil {
		logger.Error("VoteRepository:DeleteByParticipant", "error", err, "participant_id", participantID)
	}
	return err
}
