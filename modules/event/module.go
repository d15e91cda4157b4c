package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"

	"slotpoll/core/cache"
	"slotpoll/core/constants"
	"slotpoll/core/database"
	"slotpoll/core/worker"
	"slotpoll/modules/event/controller"
	"slotpoll/modules/event/repository"
	"slotpoll/modules/event/router"
	"slotpoll/modules/event/service"
	rtservice "slotpoll/modules/realtime/service"
)

// Init initializes the event module, registers routes and the
// deadline-lock task handler.
func Init(e *echo.Echo, db database.Database, c cache.Cache, hub *rtservice.Hub, w *worker.Worker) *service.EventService {
	repo := repository.NewEventRepository(db)

	var scheduler service.DeadlineScheduler
	if w != nil {
		scheduler = &asynqScheduler{client: w.Client()}
	}

	svc := service.NewEventService(repo, c, hub, scheduler)
	ctrl := controller.NewEventController(svc)
	rtr := router.NewEventRouter(ctrl)

	rtr.Setup(e)

	if w != nil {
		w.HandleFunc(constants.DeadlineLockTask, func(ctx context.Context, task *asynq.Task) error {
			var p deadlineLockPayload
			if err := json.Unmarshal(task.Payload(), &p); err != nil {
				return fmt.Errorf("decode deadline lock payload: %w", err)
			}
			return svc.LockExpired(ctx, p.EventID)
		})
	}

	return svc
}

type deadlineLockPayload struct {
	EventID string `json:"event_id"`
}

type asynqScheduler struct {
	client *asynq.Client
}

// ScheduleLock enqueues the deadline-lock task to run at the deadline.
func (s *asynqScheduler) ScheduleLock(eventID string, at time.Time) error {
	payload, err := json.Marshal(deadlineLockPayload{EventID: eventID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(constants.DeadlineLockTask, payload)
	_, err = s.client.Enqueue(task, asynq.ProcessAt(at))
	return err
}
