package project

import (
	"fmt"

	"github.com/partflow/partflow/internal/domain/calendar"
)

// ValidateSnapshot checks the structural invariants of a project
// snapshot: unique ids, resolvable stage references, valid part end
// dates, an acyclic stage tree and at least one part in every stage's
// subtree. Run it before persisting and after loading.
func ValidateSnapshot(snap Snapshot) error {
	stages := make(map[string]Stage, len(snap.Stages))
	for _, st := range snap.Stages {
		if _, dup := stages[st.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateStage, st.ID)
		}
		stages[st.ID] = st
	}
	for _, st := range snap.Stages {
		if st.ParentID == "" {
			continue
		}
		if _, ok := stages[st.ParentID]; !ok {
			return fmt.Errorf("%w: stage %q parent %q", ErrUnknownStage, st.ID, st.ParentID)
		}
	}

	partIDs := make(map[string]bool, len(snap.Parts))
	for _, p := range snap.Parts {
		if partIDs[p.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicatePart, p.ID)
		}
		partIDs[p.ID] = true
		if _, ok := stages[p.StageID]; !ok {
			return fmt.Errorf("%w: part %q stage %q", ErrUnknownStage, p.ID, p.StageID)
		}
		if _, err := calendar.ParseDate(p.EndDate); err != nil {
			return fmt.Errorf("part %q: %w", p.ID, err)
		}
	}

	if err := checkAcyclic(snap.Stages, stages); err != nil {
		return err
	}

	for _, st := range snap.Stages {
		if len(snap.PartsInSubtree(st.ID)) == 0 {
			return &EmptyStageError{StageID: st.ID}
		}
	}
	return nil
}

// checkAcyclic walks each stage's parent chain. Any chain longer than
// the stage count has revisited a node.
func checkAcyclic(all []Stage, byID map[string]Stage) error {
	for _, st := range all {
		seen := map[string]bool{st.ID: true}
		cur := st
		for cur.ParentID != "" {
			if seen[cur.ParentID] {
				return &CycleError{StageID: cur.ParentID}
			}
			seen[cur.ParentID] = true
			cur = byID[cur.ParentID]
		}
	}
	return nil
}
