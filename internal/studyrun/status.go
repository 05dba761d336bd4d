package studyrun

import "time"

// Week and run statuses are pure functions of targets, completions and the
// clock. The stored status column is only a cache of these.

const (
	elapsedCompletedRatio = 0.9
	elapsedOnTrackRatio   = 0.7
	inProgressAheadRatio  = 1.2
	inProgressOkRatio     = 0.8

	rollupAheadPercent = 110.0
)

// ratio guards the zero-target case: with nothing asked of the student the
// target counts as met.
func ratio(completed, target int) float64 {
	if target == 0 {
		return 1.0
	}
	return float64(completed) / float64(target)
}

// StatusFor computes a week's status at the given instant. A week has fully
// elapsed once the midnight after its last covered day has passed.
func StatusFor(w *StudyRunWeek, now time.Time) WeekStatus {
	weekOver := w.EndDate.AddDate(0, 0, 1)
	if now.Before(weekOver) && w.CompletedSessions == 0 {
		return WeekPending
	}
	sessionRatio := ratio(w.CompletedSessions, w.TargetSessions)
	if !now.Before(weekOver) {
		switch {
		case sessionRatio >= elapsedCompletedRatio:
			return WeekCompleted
		case sessionRatio >= elapsedOnTrackRatio:
			return WeekOnTrack
		default:
			return WeekBehind
		}
	}
	avgRatio := (sessionRatio + ratio(w.CompletedMinutes, w.TargetMinutes)) / 2
	switch {
	case avgRatio >= inProgressAheadRatio:
		return WeekAhead
	case avgRatio >= inProgressOkRatio:
		return WeekOnTrack
	default:
		return WeekBehind
	}
}

// RunProgress is the reporting roll-up over a run's weeks.
type RunProgress struct {
	Percent float64        `json:"percent"`
	Status  WeekStatus     `json:"status"`
	Weeks   []StudyRunWeek `json:"weeks"`
}

// RollUp derives overall progress from freshly computed week statuses.
func RollUp(weeks []StudyRunWeek, now time.Time) RunProgress {
	totalTarget, totalDone := 0, 0
	completed, behind := 0, 0
	for i := range weeks {
		weeks[i].Status = StatusFor(&weeks[i], now)
		totalTarget += weeks[i].TargetMinutes
		totalDone += weeks[i].CompletedMinutes
		switch weeks[i].Status {
		case WeekCompleted:
			completed++
		case WeekBehind:
			behind++
		}
	}

	rawPercent := 100.0
	if totalTarget > 0 {
		rawPercent = float64(totalDone) / float64(totalTarget) * 100
	}
	percent := rawPercent
	if percent > 100 {
		percent = 100
	}

	status := WeekOnTrack
	switch {
	case len(weeks) > 0 && completed == len(weeks):
		status = WeekCompleted
	case behind*3 > len(weeks):
		status = WeekBehind
	case rawPercent > rollupAheadPercent:
		status = WeekAhead
	}
	return RunProgress{Percent: percent, Status: status, Weeks: weeks}
}
