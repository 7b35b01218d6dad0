package attendance

import (
	"fmt"
	"strconv"
)

// Tier is the severity refinement shown in the today view
type Tier string

const (
	TierLateSevere  Tier = "late-severe"
	TierLateWarning Tier = "late-warning"
	TierCheckedIn   Tier = "checked-in"
	TierCompleted   Tier = "completed"
	TierEarlyOut    Tier = "early-out"
	TierUnderTime   Tier = "under-time"
	TierNoWork      Tier = "no-work"
	TierNoData      Tier = "no-data"
	TierAbsent      Tier = "absent"
	TierHoliday     Tier = "holiday"
)

// TierInfo is a tier together with its presentation hints
type TierInfo struct {
	Tier     Tier   `json:"tier"`
	Label    string `json:"label"`
	RowClass string `json:"rowClass"`
	Color    string `json:"color"`
}

// Exception reports whether a checked-out day did not complete its hours
func (t TierInfo) Exception() bool {
	switch t.Tier {
	case TierLateSevere, TierLateWarning, TierEarlyOut, TierUnderTime, TierNoWork:
		return true
	}
	return false
}

// ClassifyTier refines the pair facts of a day into a severity tier.
//
// Checked-in rows only look at lateness. Checked-out rows are complete as
// soon as the worked total reaches the completion threshold; otherwise the
// first failing check in the order late, early out, under time decides.
func (c *Classifier) ClassifyTier(facts DayFacts) TierInfo {
	r := c.rules
	late := func(after TimeOfDay) bool {
		return facts.FirstCheckIn.Valid && facts.FirstCheckIn.Time.After(after)
	}

	if !facts.HasEvents {
		return c.tierInfo(TierNoData)
	}

	if facts.IsCheckedIn {
		switch {
		case late(r.LateSevereAfter):
			return c.tierInfo(TierLateSevere)
		case late(r.LateWarningAfter):
			return c.tierInfo(TierLateWarning)
		default:
			return c.tierInfo(TierCheckedIn)
		}
	}

	switch {
	case facts.TotalWork >= r.CompletedAt:
		return c.tierInfo(TierCompleted)
	case late(r.LateSevereAfter):
		return c.tierInfo(TierLateSevere)
	case late(r.LateWarningAfter):
		return c.tierInfo(TierLateWarning)
	case facts.LastCheckOut.Valid && facts.LastCheckOut.Time.Before(r.EarlyOutBefore):
		return c.tierInfo(TierEarlyOut)
	case facts.TotalWork > 0:
		return c.tierInfo(TierUnderTime)
	default:
		return c.tierInfo(TierNoWork)
	}
}

// TierFor returns the presentation hints of a tier under the current rules
func (c *Classifier) TierFor(t Tier) TierInfo {
	return c.tierInfo(t)
}

func (c *Classifier) tierInfo(t Tier) TierInfo {
	r := c.rules
	switch t {
	case TierLateSevere:
		return TierInfo{t, fmt.Sprintf("Late (After %s)", r.LateSevereAfter.Clock()), "row-late-danger", "#c0392b"}
	case TierLateWarning:
		return TierInfo{t, fmt.Sprintf("Late (After %s)", r.LateWarningAfter.Clock()), "row-late-warning", "#e67e22"}
	case TierCheckedIn:
		return TierInfo{t, "Checked In", "row-checked-in", "#34db69"}
	case TierCompleted:
		return TierInfo{t, "Completed", "row-good", "#2ecc71"}
	case TierEarlyOut:
		return TierInfo{t, fmt.Sprintf("Early Out (Before %s)", r.EarlyOutBefore.Clock()), "row-early-out", "#f1c40f"}
	case TierUnderTime:
		return TierInfo{t, fmt.Sprintf("Under %s Hours", formatHours(r.CompletedAt.Hours())), "row-under-time", "#e67e22"}
	case TierNoWork:
		return TierInfo{t, "No Work Recorded", "row-late-warning", "#95a5a6"}
	case TierAbsent:
		return TierInfo{t, "Absent", "row-late-danger", "#c0392b"}
	case TierHoliday:
		return TierInfo{t, "Holiday", "row-good", "#95a5a6"}
	}
	return TierInfo{TierNoData, "No Data", "row-late-warning", "#95a5a6"}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
