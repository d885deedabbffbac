package plan

import (
	"sort"
)

// BuildDependencyGraph constructs the dependency graph for a task list:
// nodes, edges, Kahn-style layers and the critical path. Tasks with
// dependencies outside the task set are tolerated here (the edge is
// dropped); the validator reports them as errors.
func BuildDependencyGraph(tasks []Task) DependencyGraph {
	graph := DependencyGraph{}
	index := make(map[string]*Task, len(tasks))
	for i := range tasks {
		graph.Nodes = append(graph.Nodes, tasks[i].ID)
		index[tasks[i].ID] = &tasks[i]
	}

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := index[dep]; ok {
				graph.Edges = append(graph.Edges, Edge{From: dep, To: t.ID})
			}
		}
	}

	graph.Layers = computeLayers(tasks, index)
	graph.CriticalPath = computeCriticalPath(tasks, index)
	return graph
}

// computeLayers peels the graph Kahn-style: layer 0 holds tasks with no
// (resolvable) dependencies, layer k holds tasks whose dependencies all
// lie in layers < k. Task order within a layer follows task-list order.
func computeLayers(tasks []Task, index map[string]*Task) [][]string {
	placed := make(map[string]bool, len(tasks))
	var layers [][]string

	remaining := len(tasks)
	for remaining > 0 {
		var layer []string
		for _, t := range tasks {
			if placed[t.ID] {
				continue
			}
			ready := true
			for _, dep := range t.Dependencies {
				if _, ok := index[dep]; !ok {
					continue // dangling dep, validator's problem
				}
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				layer = append(layer, t.ID)
			}
		}
		if len(layer) == 0 {
			// Cycle: the remaining tasks can never become ready.
			// Leave them out of the layering; the validator reports the cycle.
			break
		}
		for _, id := range layer {
			placed[id] = true
		}
		remaining -= len(layer)
		layers = append(layers, layer)
	}

	return layers
}

// computeCriticalPath finds the longest cumulative-duration path from any
// root to any sink. Ties prefer the path through higher-priority tasks,
// then the lexicographically lowest task id, so the result is deterministic.
func computeCriticalPath(tasks []Task, index map[string]*Task) []string {
	order := topoOrder(tasks, index)
	if len(order) < len(tasks) {
		return nil // cyclic, no critical path
	}

	// best[id] = cumulative duration of the heaviest path ending at id.
	best := make(map[string]int, len(tasks))
	bestPriority := make(map[string]int, len(tasks))
	prev := make(map[string]string, len(tasks))

	for _, id := range order {
		t := index[id]
		best[id] = t.EstimatedDuration
		bestPriority[id] = t.Priority.Rank()
		for _, dep := range t.Dependencies {
			if _, ok := index[dep]; !ok {
				continue
			}
			candidate := best[dep] + t.EstimatedDuration
			candPriority := bestPriority[dep] + t.Priority.Rank()

			better := candidate > best[id]
			if candidate == best[id] {
				if candPriority > bestPriority[id] {
					better = true
				} else if candPriority == bestPriority[id] && (prev[id] == "" || dep < prev[id]) {
					better = true
				}
			}
			if !better {
				continue
			}
			best[id] = candidate
			bestPriority[id] = candPriority
			prev[id] = dep
		}
	}

	// Pick the heaviest sink, breaking ties the same way.
	var sinks []string
	for id := range best {
		sinks = append(sinks, id)
	}
	sort.Strings(sinks)
	end := ""
	for _, id := range sinks {
		if end == "" || best[id] > best[end] ||
			(best[id] == best[end] && bestPriority[id] > bestPriority[end]) {
			end = id
		}
	}
	if end == "" {
		return nil
	}

	var path []string
	for id := end; id != ""; id = prev[id] {
		path = append([]string{id}, path...)
	}
	return path
}

// CriticalPathDuration sums task durations along the critical path.
func CriticalPathDuration(tasks []Task, graph DependencyGraph) int {
	index := taskIndex(tasks)
	total := 0
	for _, id := range graph.CriticalPath {
		if t, ok := index[id]; ok {
			total += t.EstimatedDuration
		}
	}
	return total
}

// ScheduleDuration computes the parallel-aware schedule length: each
// layer contributes the sum of its serialized tasks plus, for the
// parallel-eligible ones, the sum of per-wave maxima when the layer is
// wider than maxParallel. The result is always <= the sequential sum and
// strictly less whenever a layer holds two or more parallel tasks.
func ScheduleDuration(tasks []Task, layers [][]string, maxParallel int) int {
	if maxParallel < 1 {
		maxParallel = 1
	}
	index := taskIndex(tasks)

	total := 0
	for _, layer := range layers {
		var parallel []int
		serial := 0
		for _, id := range layer {
			t, ok := index[id]
			if !ok {
				continue
			}
			if t.CanRunInParallel {
				parallel = append(parallel, t.EstimatedDuration)
			} else {
				serial += t.EstimatedDuration
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(parallel)))
		for i := 0; i < len(parallel); i += maxParallel {
			total += parallel[i] // max of this wave
		}
		total += serial
	}
	return total
}

// topoOrder returns tasks in dependency order, stable with respect to
// the task-list order. Returns fewer ids than tasks when a cycle exists.
func topoOrder(tasks []Task, index map[string]*Task) []string {
	placed := make(map[string]bool, len(tasks))
	var order []string
	for len(order) < len(tasks) {
		progressed := false
		for _, t := range tasks {
			if placed[t.ID] {
				continue
			}
			ready := true
			for _, dep := range t.Dependencies {
				if _, ok := index[dep]; !ok {
					continue
				}
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				placed[t.ID] = true
				order = append(order, t.ID)
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return order
}

func taskIndex(tasks []Task) map[string]*Task {
	index := make(map[string]*Task, len(tasks))
	for i := range tasks {
		index[tasks[i].ID] = &tasks[i]
	}
	return index
}
