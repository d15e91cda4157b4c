package timeslot

import (
	"fmt"
	"iter"
	"sort"
	"time"

	"slotpoll/core/constants"
)

// Sequence returns a lazy, restartable, chronological sequence of the
// slot keys for the given dates bounded by [startTime, endTime) at
// half-hour granularity. Dates are iterated in calendar order; within a
// date, times ascend. The sequence is finite; ranging over it twice
// yields the same keys.
func Sequence(dates []string, startTime, endTime string) (iter.Seq[SlotKey], error) {
	start, err := parseTimeOfDay(startTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTimeOfDay(endTime)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end time %q not after start time %q", ErrInvalidSlot, endTime, startTime)
	}

	ordered := make([]string, 0, len(dates))
	seen := map[string]struct{}{}
	for _, d := range dates {
		if _, err := time.Parse(constants.SlotDateLayout, d); err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrInvalidSlot, d)
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		ordered = append(ordered, d)
	}
	sort.Strings(ordered)

	return func(yield func(SlotKey) bool) {
		for _, date := range ordered {
			for t := start; t.Before(end); t = t.Add(constants.SlotGranularity) {
				key := SlotKey(date + " " + t.Format(constants.SlotTimeLayout))
				if !yield(key) {
					return
				}
			}
		}
	}, nil
}

// Grid materializes Sequence into a slice.
func Grid(dates []string, startTime, endTime string) ([]SlotKey, error) {
	seq, err := Sequence(dates, startTime, endTime)
	if err != nil {
		return nil, err
	}
	var keys []SlotKey
	for k := range seq {
		keys = append(keys, k)
	}
	return keys, nil
}

// ExpandWeekdays maps candidate days of week (0=Sunday..6=Saturday) onto
// the concrete dates within the next horizonDays starting from today.
// Day-of-week events are authored without fixed dates; the grid needs
// real dates to key slots by.
func ExpandWeekdays(days []int, from time.Time, horizonDays int) []string {
	want := map[int]struct{}{}
	for _, d := range days {
		if d >= 0 && d <= 6 {
			want[d] = struct{}{}
		}
	}

	var dates []string
	day := from
	for i := 0; i < horizonDays; i++ {
		if _, ok := want[int(day.Weekday())]; ok {
			dates = append(dates, day.Format(constants.SlotDateLayout))
		}
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

// parseTimeOfDay parses "HH:mm" and requires half-hour alignment.
func parseTimeOfDay(tod string) (time.Time, error) {
	t, err := time.Parse(constants.SlotTimeLayout, tod)
	if err != nil || t.Format(constants.SlotTimeLayout) != tod {
		return time.Time{}, fmt.Errorf("%w: bad time %q", ErrInvalidSlot, tod)
	}
	if m := t.Minute(); m != 0 && m != 30 {
		return time.Time{}, fmt.Errorf("%w: minute must be 00 or 30, got %02d", ErrInvalidSlot, m)
	}
	return t, nil
}
