package constants

import "time"

// Database pool settings.
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Slot grid settings. Slots are half-hour cells; keys use the wall-clock
// layout of the event's authoring timezone.
const (
	SlotGranularity = 30 * time.Minute
	SlotKeyLayout   = "2006-01-02 15:04"
	SlotDateLayout  = "2006-01-02"
	SlotTimeLayout  = "15:04"
)

// Day-of-week events expand onto this many upcoming calendar days.
const DayEventHorizonDays = 28

// EventIDLength is the nanoid length for public event identifiers.
const EventIDLength = 7

// Realtime channel settings.
const (
	// BroadcastDebounce coalesces rapid vote updates into one fan-out.
	// A pending broadcast timer is reset, not queued, on every new update.
	BroadcastDebounce = 300 * time.Millisecond

	RealtimeChannelPrefix = "slotpoll:room:"
)

// EventSnapshotTTL bounds the redis cache of event detail reads.
const EventSnapshotTTL = 10 * time.Second

// DeadlineLockTask is the asynq task type that locks voting when an
// event's deadline passes.
const DeadlineLockTask = "event:deadline_lock"

// ExportDefaultDuration is the assumed meeting length for calendar export.
const ExportDefaultDuration = time.Hour
