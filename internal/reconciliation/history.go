package reconciliation

import (
	"sort"
	"time"

	"beautypos/internal/model"
)

// DayGroup holds the operations of one calendar day.
type DayGroup struct {
	Day        time.Time                `json:"day"`
	Operations []model.CashierOperation `json:"operations"`
}

// GroupByDay buckets operations by calendar day in loc. Days come most
// recent first; operations inside a day are in chronological order.
func GroupByDay(ops []model.CashierOperation, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	sorted := make([]model.CashierOperation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	var groups []DayGroup
	index := make(map[time.Time]int)
	for _, op := range sorted {
		t := op.Timestamp.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Operations = append(groups[i].Operations, op)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Day.After(groups[j].Day) })
	return groups
}

// Flatten undoes GroupByDay, returning every operation exactly once.
func Flatten(groups []DayGroup) []model.CashierOperation {
	var out []model.CashierOperation
	for _, g := range groups {
		out = append(out, g.Operations...)
	}
	return out
}
