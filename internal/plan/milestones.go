package plan

import "github.com/HR-AR/Project-Conductor-sub004/internal/goal"

// milestonePhase assigns each agent type to a delivery phase.
var milestonePhases = []struct {
	id     string
	name   string
	agents []goal.AgentType
}{
	{"milestone-foundation", "Foundation", []goal.AgentType{goal.AgentModels, goal.AgentDatabase}},
	{"milestone-core", "Core Implementation", []goal.AgentType{goal.AgentAPI, goal.AgentAuth, goal.AgentRBAC}},
	{"milestone-surface", "Real-time & UI", []goal.AgentType{goal.AgentRealtime, goal.AgentUI, goal.AgentIntegration}},
	{"milestone-quality", "Testing & Documentation", []goal.AgentType{goal.AgentTest, goal.AgentDocumentation}},
}

// deriveMilestones groups tasks into phase milestones. Empty phases are
// dropped, so every emitted milestone has at least one task. A milestone
// is blocking when it contains security-sensitive work or when a later
// milestone's task depends on one of its tasks.
func deriveMilestones(tasks []Task) []Milestone {
	var milestones []Milestone
	for _, phase := range milestonePhases {
		var ids []string
		for _, t := range tasks {
			for _, a := range phase.agents {
				if t.AgentType == a {
					ids = append(ids, t.ID)
					break
				}
			}
		}
		if len(ids) == 0 {
			continue
		}
		milestones = append(milestones, Milestone{
			ID:    phase.id,
			Name:  phase.name,
			Tasks: ids,
		})
	}

	markBlocking(milestones, tasks)
	return milestones
}

func markBlocking(milestones []Milestone, tasks []Task) {
	index := taskIndex(tasks)

	for i := range milestones {
		// Security-sensitive milestones always gate downstream work.
		for _, id := range milestones[i].Tasks {
			t := index[id]
			if t != nil && (t.AgentType == goal.AgentAuth || t.AgentType == goal.AgentRBAC) {
				milestones[i].IsBlocking = true
				break
			}
		}
		if milestones[i].IsBlocking {
			continue
		}

		// Blocking if any later milestone depends on one of our tasks.
		contained := make(map[string]bool, len(milestones[i].Tasks))
		for _, id := range milestones[i].Tasks {
			contained[id] = true
		}
		for j := i + 1; j < len(milestones) && !milestones[i].IsBlocking; j++ {
			for _, laterID := range milestones[j].Tasks {
				later := index[laterID]
				if later == nil {
					continue
				}
				for _, dep := range later.Dependencies {
					if contained[dep] {
						milestones[i].IsBlocking = true
						break
					}
				}
				if milestones[i].IsBlocking {
					break
				}
			}
		}
	}
}
