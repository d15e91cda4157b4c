package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"slotpoll/core/database"
	"slotpoll/core/logger"
	"slotpoll/modules/participant/entity"
)

// ParticipantRepository handles participant database operations
type ParticipantRepository struct {
	DB database.Database
}

// NewParticipantRepository creates a new repository instance
func NewParticipantRepository(db database.Database) *ParticipantRepository {
	return &ParticipantRepository{DB: db}
}

// ParticipantRepositoryInterface defines the repository contract
type ParticipantRepositoryInterface interface {
	// Upsert inserts the participant or, when the normalized name is
	// already taken in the event, returns the existing row unchanged.
	Upsert(ctx context.Context, p *entity.Participant) (*entity.Participant, error)
	GetByID(ctx context.Context, participantID string) (*entity.Participant, error)
	ListActive(ctx context.Context, eventID string) ([]entity.Participant, error)
	SetBlocked(ctx context.Context, participantID string) error
}

func (r *ParticipantRepository) Upsert(ctx context.Context, p *entity.Participant) (*entity.Participant, error) {
	query := `
		INSERT INTO participants (participant_id, event_id, name, normalized_name, ip_address)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, normalized_name) DO UPDATE SET ip_address = EXCLUDED.ip_address
		RETURNING participant_id, event_id, name, normalized_name, ip_address, is_blocked, joined_at
	`

	var saved entity.Participant
	err := r.DB.GetContext(ctx, &saved, query,
		uuid.NewString(), p.EventID, p.Name, p.NormalizedName, p.IPAddress)
	if err != nil {
		logger.Error("ParticipantRepository:Upsert", "error", err, "event_id", p.EventID)
		return nil, err
	}

	return &saved, nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, participantID string) (*entity.Participant, error) {
	query := `
		SELECT participant_id, event_id, name, normalized_name, ip_address, is_blocked, joined_at
		FROM participants WHERE participant_id = $1
	`

	var p entity.Participant
	err := r.DB.GetContext(ctx, &p, query, participantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ParticipantRepository:GetByID", "error", err, "participant_id", participantID)
		return nil, err
	}

	return &p, nil
}

func (r *ParticipantRepository) ListActive(ctx context.Context, eventID string) ([]entity.Participant, error) {
	query := `
		SELECT participant_id, event_id, name, normalized_name, ip_address, is_blocked, joined_at
		FROM participants
		WHERE event_id = $1 AND is_blocked = FALSE
		ORDER BY joined_at ASC
	`

	var participants []entity.Participant
	err := r.DB.SelectContext(ctx, &participants, query, eventID)
	if err != nil {
		logger.Error("ParticipantRepository:ListActive", "error", err, "event_id", eventID)
		return nil, err
	}

	return participants, nil
}

func (r *ParticipantRepository) SetBlocked(ctx context.Context, participantID string) error {
	query := `UPDATE participants SET is_blocked = TRUE WHERE participant_id = $1`

	err := r.DB.ExecContext(ctx, query, participantID)
	if err != nil {
		logger.Error("ParticipantRepository:SetBlocked", "error", err, "participant_id", participantID)
	}
	return err
}
