package service

import (
	"sort"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"github.com/google/uuid"
)

// Window is a closed time interval; both ends are included.
type Window struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the calendar week containing now. The week begins at 00:00 on
// the most recent start weekday in loc and ends one nanosecond before the next.
func WeekOf(now time.Time, start time.Weekday, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	t := now.In(loc)
	back := (int(t.Weekday()) - int(start) + 7) % 7
	first := time.Date(t.Year(), t.Month(), t.Day()-back, 0, 0, 0, 0, loc)
	return Window{
		Start: first,
		End:   first.AddDate(0, 0, 7).Add(-time.Nanosecond),
	}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

type ReceiverCount struct {
	UserID uuid.UUID
	Count  int
}

// RankReceivers counts records per receiver inside w, highest count first.
// Equal counts are ordered by the receiver id string, ascending.
func RankReceivers(records []entity.Kudos, w Window) []ReceiverCount {
	counts := make(map[uuid.UUID]int)
	for _, k := range records {
		if w.Contains(k.CreatedAt) {
			counts[k.ReceiverID]++
		}
	}

	ranked := make([]ReceiverCount, 0, len(counts))
	for id, n := range counts {
		ranked = append(ranked, ReceiverCount{UserID: id, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].UserID.String() < ranked[j].UserID.String()
	})
	return ranked
}

// TopReceiver is the single winner of w, or false when nobody received anything in it.
func TopReceiver(records []entity.Kudos, w Window) (ReceiverCount, bool) {
	ranked := RankReceivers(records, w)
	if len(ranked) == 0 {
		return ReceiverCount{}, false
	}
	return ranked[0], true
}
