// Package calendar parses the "day monthName year" dates used in the
// editorial datasets.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseable is returned for dates that do not match the table.
var ErrUnparseable = errors.New("calendar: unparseable date")

// Table lists the twelve month names in calendar order. Lookup ignores case.
type Table [12]string

var (
	Arabic = Table{
		"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
		"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
	}
	English = Table{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	French = Table{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	}
)

// Tables lists every known month table, Arabic first.
var Tables = []Table{Arabic, English, French}

func (t Table) month(name string) (time.Month, bool) {
	for i, m := range t {
		if strings.EqualFold(m, name) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// Parse reads s as "day monthName year" using table. Extra trailing fields are
// ignored. The result is midnight UTC.
func Parse(s string, table Table) (time.Time, error) {
	parts := strings.Fields(s)
	if len(parts) < 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day %q", ErrUnparseable, parts[0])
	}
	month, ok := table.month(parts[1])
	if !ok {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrUnparseable, parts[1])
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: year %q", ErrUnparseable, parts[2])
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: day %d out of range", ErrUnparseable, day)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// ParseAny reads s against each of Tables in turn and returns the first match.
// Datasets are shared by every page language, so a date is not tied to the
// language of the page showing it.
func ParseAny(s string) (time.Time, error) {
	var err error
	for _, table := range Tables {
		var at time.Time
		if at, err = Parse(s, table); err == nil {
			return at, nil
		}
	}
	return time.Time{}, err
}

// SortDescending orders items newest first by the date returned from dateOf,
// parsed with ParseAny. Items whose date does not parse are treated as the
// most recent and keep their relative order.
func SortDescending[T any](items []T, dateOf func(T) string) []T {
	type keyed struct {
		item T
		at   time.Time
		bad  bool
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		at, err := ParseAny(dateOf(it))
		ks[i] = keyed{item: it, at: at, bad: err != nil}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.bad != b.bad {
			return a.bad
		}
		if a.bad {
			return false
		}
		return a.at.After(b.at)
	})
	out := make([]T, len(ks))
	for i, k := range ks {
		out[i] = k.item
	}
	return out
}
