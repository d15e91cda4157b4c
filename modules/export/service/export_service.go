package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/gosimple/slug"

	"slotpoll/core/constants"
	"slotpoll/core/errors"
	"slotpoll/core/timeslot"
	evententity "slotpoll/modules/event/entity"
)

// EventDirectory resolves events; implemented by the event service.
type EventDirectory interface {
	GetEntity(ctx context.Context, eventID string) (*evententity.Event, *errors.AppError)
}

// ExportResult is a rendered .ics file ready to serve.
type ExportResult struct {
	Filename string
	Data     []byte
}

// ExportServiceInterface defines the service contract
type ExportServiceInterface interface {
	ExportICS(ctx context.Context, eventID string) (*ExportResult, *errors.AppError)
}

// ExportService renders finalized events as iCalendar files
type ExportService struct {
	events EventDirectory
	now    func() time.Time
}

// NewExportService creates a new service
func NewExportService(events EventDirectory) *ExportService {
	return &ExportService{events: events, now: time.Now}
}

// ExportICS renders the finalized slot as a one-hour VCALENDAR event in
// the event's authoring timezone. Only finalized events export.
func (s *ExportService) ExportICS(ctx context.Context, eventID string) (*ExportResult, *errors.AppError) {
	event, appErr := s.events.GetEntity(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}

	if !event.IsFinalized || event.FinalizedTime == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Event is not finalized yet", nil)
	}

	key, err := timeslot.Decode(*event.FinalizedTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrMalformedKey, "Stored finalized time is invalid", err)
	}
	start, err := timeslot.ToUTC(key, event.Timezone)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to resolve finalized time", err)
	}
	end := start.Add(constants.ExportDefaultDuration)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//slotpoll//EN")
	cal.Props.SetText("X-WR-TIMEZONE", event.Timezone)

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.EventID+"@slotpoll")
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, s.now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, end)
	ve.Props.SetText("STATUS", "CONFIRMED")

	organizer := ical.NewProp(ical.PropOrganizer)
	organizer.Params.Set("CN", event.OrganizerName)
	organizer.SetText("mailto:noreply@slotpoll.local")
	ve.Props.Add(organizer)

	// A 15-minute reminder, matching what calendar apps default to.
	// TRIGGER carries a duration value, so it is set raw rather than
	// through SetText.
	alarm := ical.NewComponent("VALARM")
	alarm.Props.SetText("ACTION", "DISPLAY")
	alarm.Props.SetText(ical.PropDescription, event.Title)
	trigger := ical.NewProp("TRIGGER")
	trigger.Value = "-PT15M"
	alarm.Props.Add(trigger)
	ve.Children = append(ve.Children, alarm)

	cal.Children = append(cal.Children, ve)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to encode calendar", fmt.Errorf("encode ics: %w", err))
	}

	return &ExportResult{
		Filename: slug.Make(event.Title) + ".ics",
		Data:     buf.Bytes(),
	}, nil
}
