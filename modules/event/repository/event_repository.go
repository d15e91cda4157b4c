package repository

import (
	"context"
	"database/sql"
	"time"

	"slotpoll/core/database"
	"slotpoll/core/logger"
	"slotpoll/modules/event/entity"
)

// EventRepository handles event database operations
type EventRepository struct {
	DB database.Database
}

// NewEventRepository creates a new repository instance
func NewEventRepository(db database.Database) *EventRepository {
	return &EventRepository{DB: db}
}

// EventRepositoryInterface defines the repository contract
type EventRepositoryInterface interface {
	CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error)
	GetEventByID(ctx context.Context, eventID string) (*entity.Event, error)
	SetFinalized(ctx context.Context, eventID, finalizedTime string) error
	SetLocked(ctx context.Context, eventID string, lockedAt time.Time) error
}

func (r *EventRepository) CreateEvent(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	query := `
		INSERT INTO events (event_id, title, event_type, selected_dates, selected_days,
		                    start_time, end_time, timezone, organizer_name, voting_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING event_id, title, event_type, selected_dates, selected_days, start_time,
		          end_time, timezone, organizer_name, is_finalized, finalized_time,
		          voting_deadline, locked_at, created_at
	`

	var created entity.Event
	err := r.DB.GetContext(ctx, &created, query,
		event.EventID, event.Title, event.Type, event.SelectedDates, event.SelectedDays,
		event.StartTime, event.EndTime, event.Timezone, event.OrganizerName, event.VotingDeadline)

	if err != nil {
		logger.Error("EventRepository:CreateEvent", "error", err)
		return nil, err
	}

	return &created, nil
}

func (r *EventRepository) GetEventByID(ctx context.Context, eventID string) (*entity.Event, error) {
	query := `
		SELECT event_id, title, event_type, selected_dates, selected_days, start_time,
		       end_time, timezone, organizer_name, is_finalized, finalized_time,
		       voting_deadline, locked_at, created_at
		FROM events WHERE event_id = $1
	`

	var event entity.Event
	err := r.DB.GetContext(ctx, &event, query, eventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetEventByID", "error", err, "event_id", eventID)
		return nil, err
	}

	return &event, nil
}

func (r *EventRepository) SetFinalized(ctx context.Context, eventID, finalizedTime string) error {
	query := `
		UPDATE events SET is_finalized = TRUE, finalized_time = $2
		WHERE event_id = $1 AND is_finalized = FALSE
	`

	err := r.DB.ExecContext(ctx, query, eventID, finalizedTime)
	if err != nil {
		logger.Error("EventRepository:SetFinalized", "error", err, "event_id", eventID)
	}
	return err
}

func (r *EventRepository) SetLocked(ctx context.Context, eventID string, lockedAt time.Time) error {
	query := `
		UPDATE events SET locked_at = $2
		WHERE event_id = $1 AND locked_at IS NULL AND is_finalized = FALSE
	`

	err := r.DB.ExecContext(ctx, query, eventID, lockedAt)
	if err != nil {
		logger.Error("EventRepository:SetLocked", "error", err, "event_id", eventID)
	}
	return err
}
