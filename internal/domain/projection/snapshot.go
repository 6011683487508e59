package projection

import (
	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/lifecycle"
)

// Snapshot is a point-in-time projection of lifecycle state, used only
// to bound replay cost. Correctness never depends on one existing: a
// full replay of the log yields the same states.
type Snapshot struct {
	ProjectID            string                     `json:"projectId"`
	LastEventTimestamp   int64                      `json:"lastEventTimestamp"`
	LifecycleStateByPart map[string]lifecycle.State `json:"lifecycleStateByPart"`
}

// BuildSnapshot folds a full event log into a snapshot. Extend an
// existing snapshot with ExtendSnapshot when the log was already
// compacted.
func BuildSnapshot(projectID string, events []event.Event) Snapshot {
	return ExtendSnapshot(nil, projectID, events)
}

// ExtendSnapshot folds events on top of a prior snapshot (nil for
// none) and returns the combined snapshot. Folding the post-cutoff tail
// onto a snapshot's state equals a full replay.
func ExtendSnapshot(base *Snapshot, projectID string, events []event.Event) Snapshot {
	snap := Snapshot{
		ProjectID:            projectID,
		LifecycleStateByPart: make(map[string]lifecycle.State),
	}
	if base != nil {
		snap.LastEventTimestamp = base.LastEventTimestamp
		for partID, state := range base.LifecycleStateByPart {
			snap.LifecycleStateByPart[partID] = state
		}
	}

	parts := make(map[string]bool)
	for _, e := range events {
		parts[e.PartID] = true
		if e.Timestamp > snap.LastEventTimestamp {
			snap.LastEventTimestamp = e.Timestamp
		}
	}
	for partID := range parts {
		prior, ok := snap.LifecycleStateByPart[partID]
		if !ok {
			prior = lifecycle.StatePlanned
		}
		snap.LifecycleStateByPart[partID] = lifecycle.ResumeState(prior, events, partID)
	}
	return snap
}

// StateOf returns the snapshot state for a part, Planned when the part
// never appeared in the folded log.
func (s Snapshot) StateOf(partID string) lifecycle.State {
	if state, ok := s.LifecycleStateByPart[partID]; ok {
		return state
	}
	return lifecycle.StatePlanned
}
