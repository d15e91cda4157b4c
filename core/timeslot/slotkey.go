// Package timeslot implements the slot key codec, the voting grid
// sequence and the timezone projection used across the event, vote and
// export modules. A slot key is the canonical identity of one half-hour
// cell: "YYYY-MM-DD HH:mm" in the event's authoring timezone. Keys are
// compared by their canonical string, never by time.Time identity.
package timeslot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"slotpoll/core/constants"
)

var (
	// ErrInvalidSlot reports a (date, time) pair that cannot form a slot,
	// e.g. a minute component other than 00 or 30.
	ErrInvalidSlot = errors.New("invalid slot")

	// ErrMalformedKey reports a string that does not match the canonical
	// "YYYY-MM-DD HH:mm" grammar.
	ErrMalformedKey = errors.New("malformed slot key")
)

// SlotKey is the canonical string form of one 30-minute cell.
type SlotKey string

// Encode canonicalizes a calendar date ("YYYY-MM-DD") and a wall-clock
// time ("HH:mm") into a SlotKey. The minute component must be 00 or 30.
func Encode(date, tod string) (SlotKey, error) {
	d, err := time.Parse(constants.SlotDateLayout, date)
	if err != nil || d.Format(constants.SlotDateLayout) != date {
		return "", fmt.Errorf("%w: bad date %q", ErrInvalidSlot, date)
	}

	t, err := time.Parse(constants.SlotTimeLayout, tod)
	if err != nil || t.Format(constants.SlotTimeLayout) != tod {
		return "", fmt.Errorf("%w: bad time %q", ErrInvalidSlot, tod)
	}
	if m := t.Minute(); m != 0 && m != 30 {
		return "", fmt.Errorf("%w: minute must be 00 or 30, got %02d", ErrInvalidSlot, m)
	}

	return SlotKey(date + " " + tod), nil
}

// Decode validates a raw string against the canonical grammar and
// returns it as a SlotKey.
func Decode(raw string) (SlotKey, error) {
	t, err := time.Parse(constants.SlotKeyLayout, raw)
	if err != nil || t.Format(constants.SlotKeyLayout) != raw {
		return "", fmt.Errorf("%w: %q", ErrMalformedKey, raw)
	}
	if m := t.Minute(); m != 0 && m != 30 {
		return "", fmt.Errorf("%w: %q has minute %02d", ErrMalformedKey, raw, m)
	}
	return SlotKey(raw), nil
}

// Date returns the "YYYY-MM-DD" component of the key.
func (k SlotKey) Date() string {
	if i := strings.IndexByte(string(k), ' '); i > 0 {
		return string(k)[:i]
	}
	return ""
}

// Time returns the "HH:mm" component of the key.
func (k SlotKey) Time() string {
	if i := strings.IndexByte(string(k), ' '); i > 0 {
		return string(k)[i+1:]
	}
	return ""
}

// In interprets the key's wall-clock components as local time in the
// given IANA zone and returns the resulting instant.
func (k SlotKey) In(zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("load zone %q: %w", zone, err)
	}
	t, err := time.ParseInLocation(constants.SlotKeyLayout, string(k), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedKey, string(k))
	}
	return t, nil
}

// FromTime re-expresses an instant as the slot key of its wall clock in
// the given zone. The instant is assumed to sit on the half-hour grid.
func FromTime(t time.Time, zone string) (SlotKey, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", fmt.Errorf("load zone %q: %w", zone, err)
	}
	return SlotKey(t.In(loc).Format(constants.SlotKeyLayout)), nil
}
