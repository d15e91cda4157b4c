package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectIdentity(t *testing.T) {
	k := SlotKey("2025-03-15 09:00")
	assert.Equal(t, k, Project(k, "Europe/Istanbul", "Europe/Istanbul"))
}

func TestProjectFallsBackOnBadZone(t *testing.T) {
	k := SlotKey("2025-03-15 09:00")
	assert.Equal(t, k, Project(k, "Not/AZone", "America/New_York"))
	assert.Equal(t, k, Project(k, "Europe/Istanbul", "Not/AZone"))
}

func TestProjectDateShift(t *testing.T) {
	// 23:30 in Istanbul is past midnight further east.
	got := Project("2025-03-15 23:30", "Europe/Istanbul", "Asia/Tokyo")
	assert.Equal(t, SlotKey("2025-03-16 05:30"), got)
}

func TestProjectRoundTrip(t *testing.T) {
	zones := [][2]string{
		{"Europe/Istanbul", "America/New_York"},
		{"UTC", "Asia/Tokyo"},
		{"Australia/Sydney", "Europe/London"},
	}
	keys := []SlotKey{"2025-03-15 09:00", "2025-07-01 00:00", "2025-12-31 23:30"}

	for _, z := range zones {
		for _, k := range keys {
			back := Project(Project(k, z[0], z[1]), z[1], z[0])
			assert.Equal(t, k, back, "round trip %s via %s->%s", k, z[0], z[1])
		}
	}
}

func TestProjectDSTBoundary(t *testing.T) {
	// US spring-forward 2025 is March 9. 23:30 on the previous day,
	// through UTC and back, must recover the original key exactly.
	k := SlotKey("2025-03-08 23:30")
	utc := Project(k, "America/New_York", "UTC")
	assert.Equal(t, SlotKey("2025-03-09 04:30"), utc)
	assert.Equal(t, k, Project(utc, "UTC", "America/New_York"))
}

func TestProjectIstanbulToNewYork(t *testing.T) {
	// Authored in Istanbul (no DST, UTC+3); on 2025-03-15 New York is
	// already on daylight time (UTC-4), a seven hour difference.
	k := SlotKey("2025-03-15 09:00")
	got := Project(k, "Europe/Istanbul", "America/New_York")
	assert.Equal(t, SlotKey("2025-03-15 02:00"), got)

	// The invariant that actually matters: both keys name one instant.
	src, err := k.In("Europe/Istanbul")
	require.NoError(t, err)
	dst, err := got.In("America/New_York")
	require.NoError(t, err)
	assert.True(t, src.Equal(dst))
}

func TestProjectAll(t *testing.T) {
	keys := []SlotKey{"2025-03-15 09:00", "2025-03-15 09:30"}
	m := ProjectAll(keys, "Europe/Istanbul", "UTC")
	assert.Equal(t, map[SlotKey]SlotKey{
		"2025-03-15 09:00": "2025-03-15 06:00",
		"2025-03-15 09:30": "2025-03-15 06:30",
	}, m)
}

func TestToUTC(t *testing.T) {
	instant, err := ToUTC("2025-03-15 09:00", "Europe/Istanbul")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 6, 0, 0, 0, time.UTC), instant)

	_, err = ToUTC("2025-03-15 09:00", "Not/AZone")
	assert.Error(t, err)
}
