// Package project defines the persisted project tree: stages forming a
// hierarchy and the schedulable parts attached to them.
package project

// Stage is a node in the project's stage tree. A stage without a parent
// is a root; a project may have several roots.
type Stage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

// Part is a schedulable unit of work attached to a stage.
type Part struct {
	ID      string `json:"id"`
	StageID string `json:"stageId"`
	Name    string `json:"name,omitempty"`
	// EndDate is the planned finish date key (YYYY-MM-DD).
	EndDate string `json:"endDate"`
}

// Snapshot is the full persisted shape of a project: its stage tree and
// parts. Validate before persisting or after loading.
type Snapshot struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Stages []Stage `json:"stages"`
	Parts  []Part  `json:"parts"`
}

// StagesByID indexes the snapshot's stages.
func (s Snapshot) StagesByID() map[string]Stage {
	out := make(map[string]Stage, len(s.Stages))
	for _, st := range s.Stages {
		out[st.ID] = st
	}
	return out
}

// SubtreeStageIDs returns the ids of every stage in the subtree rooted
// at stageID, including stageID itself.
func (s Snapshot) SubtreeStageIDs(stageID string) map[string]bool {
	children := make(map[string][]string, len(s.Stages))
	for _, st := range s.Stages {
		if st.ParentID != "" {
			children[st.ParentID] = append(children[st.ParentID], st.ID)
		}
	}

	subtree := make(map[string]bool)
	queue := []string{stageID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if subtree[id] {
			continue
		}
		subtree[id] = true
		queue = append(queue, children[id]...)
	}
	return subtree
}

// PartsInSubtree returns the parts whose stage lies in the subtree
// rooted at stageID.
func (s Snapshot) PartsInSubtree(stageID string) []Part {
	subtree := s.SubtreeStageIDs(stageID)
	var out []Part
	for _, p := range s.Parts {
		if subtree[p.StageID] {
			out = append(out, p)
		}
	}
	return out
}
