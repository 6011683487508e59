package projection

import (
	"fmt"
	"time"

	"github.com/partflow/partflow/internal/domain/calendar"
	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/project"
)

// StageProgress summarizes completion within one stage subtree.
type StageProgress struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// Progress is the project-wide completion tally.
type Progress struct {
	Percent      float64 `json:"percent"`
	OnTime       int     `json:"onTime"`
	Delayed      int     `json:"delayed"`
	Early        int     `json:"early"`
	NotCompleted int     `json:"notCompleted"`
}

func partStatus(p project.Part, events []event.Event, cal calendar.Calendar, loc *time.Location) (CompletionStatus, error) {
	endDate, err := calendar.ParseDate(p.EndDate)
	if err != nil {
		return "", fmt.Errorf("part %q: %w", p.ID, err)
	}
	return PartCompletionStatus(PartPace(events, p.ID, endDate, cal, loc)), nil
}

// ComputeStageProgress aggregates completion over every part whose
// stage lies in the subtree rooted at stageID. The snapshot is assumed
// validated: cycles and empty subtrees are rejected by
// project.ValidateSnapshot, not here.
func ComputeStageProgress(stageID string, snap project.Snapshot, events []event.Event, cal calendar.Calendar, loc *time.Location) (StageProgress, error) {
	parts := snap.PartsInSubtree(stageID)

	progress := StageProgress{Total: len(parts)}
	for _, p := range parts {
		status, err := partStatus(p, events, cal, loc)
		if err != nil {
			return StageProgress{}, err
		}
		if status != StatusNotCompleted {
			progress.Completed++
		}
	}
	if progress.Total > 0 {
		progress.Percent = float64(progress.Completed) / float64(progress.Total)
	}
	return progress, nil
}

// ProjectProgress tallies completion status across all parts of the
// project. Percent is the completed share, 0 for a project without
// parts.
func ProjectProgress(snap project.Snapshot, events []event.Event, cal calendar.Calendar, loc *time.Location) (Progress, error) {
	var progress Progress
	for _, p := range snap.Parts {
		status, err := partStatus(p, events, cal, loc)
		if err != nil {
			return Progress{}, err
		}
		switch status {
		case StatusOnTime:
			progress.OnTime++
		case StatusDelayed:
			progress.Delayed++
		case StatusEarly:
			progress.Early++
		case StatusNotCompleted:
			progress.NotCompleted++
		}
	}
	if total := len(snap.Parts); total > 0 {
		completed := progress.OnTime + progress.Delayed + progress.Early
		progress.Percent = float64(completed) / float64(total)
	}
	return progress, nil
}
