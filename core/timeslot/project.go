package timeslot

import (
	"time"

	"slotpoll/core/logger"
)

// Project re-expresses a slot key authored in fromZone as the wall clock
// of toZone. The key's components are interpreted as local time in
// fromZone for that specific date, so DST transitions are honored and
// the calendar date may shift. Projection never fails into the caller's
// render path: on any error the input key is returned unchanged and the
// failure is logged.
func Project(key SlotKey, fromZone, toZone string) SlotKey {
	if fromZone == toZone {
		return key
	}

	projected, err := project(key, fromZone, toZone)
	if err != nil {
		logger.Error("timeslot:Project fallback to identity",
			"key", string(key), "from", fromZone, "to", toZone, "error", err)
		return key
	}
	return projected
}

func project(key SlotKey, fromZone, toZone string) (SlotKey, error) {
	instant, err := key.In(fromZone)
	if err != nil {
		return "", err
	}
	return FromTime(instant, toZone)
}

// ProjectAll maps every key to its projection, keyed by the original.
// Internal state stays keyed in the authoring zone; the map is for
// viewer-facing labels only.
func ProjectAll(keys []SlotKey, fromZone, toZone string) map[SlotKey]SlotKey {
	out := make(map[SlotKey]SlotKey, len(keys))
	for _, k := range keys {
		out[k] = Project(k, fromZone, toZone)
	}
	return out
}

// ToUTC resolves a key authored in zone to its absolute UTC instant,
// for calendar export. Unlike Project this returns the error: export
// must not silently hand off a wrong instant.
func ToUTC(key SlotKey, zone string) (time.Time, error) {
	instant, err := key.In(zone)
	if err != nil {
		return time.Time{}, err
	}
	return instant.UTC(), nil
}
