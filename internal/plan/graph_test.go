package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(id string, duration int, priority TaskPriority, deps ...string) Task {
	return Task{
		ID:                 id,
		Name:               id,
		Status:             TaskStatusPending,
		Priority:           priority,
		Dependencies:       deps,
		CanRunInParallel:   true,
		EstimatedDuration:  duration,
		Outputs:            []string{id + " output"},
		AcceptanceCriteria: []string{id + " done"},
	}
}

func TestBuildDependencyGraph_Layers(t *testing.T) {
	tasks := []Task{
		task("a", 10, PriorityHigh),
		task("b", 20, PriorityMedium),
		task("c", 30, PriorityMedium, "a"),
		task("d", 40, PriorityMedium, "a", "b"),
		task("e", 50, PriorityMedium, "c", "d"),
	}

	graph := BuildDependencyGraph(tasks)

	require.Len(t, graph.Layers, 3)
	assert.Equal(t, []string{"a", "b"}, graph.Layers[0])
	assert.Equal(t, []string{"c", "d"}, graph.Layers[1])
	assert.Equal(t, []string{"e"}, graph.Layers[2])
	assert.Len(t, graph.Edges, 5)
}

func TestBuildDependencyGraph_CriticalPath(t *testing.T) {
	tasks := []Task{
		task("a", 10, PriorityMedium),
		task("b", 100, PriorityMedium),
		task("c", 5, PriorityMedium, "a"),
		task("d", 5, PriorityMedium, "b"),
	}

	graph := BuildDependencyGraph(tasks)

	// b -> d is the heaviest path (105).
	assert.Equal(t, []string{"b", "d"}, graph.CriticalPath)
	assert.Equal(t, 105, CriticalPathDuration(tasks, graph))
}

func TestBuildDependencyGraph_CriticalPathTieBreak(t *testing.T) {
	// Two root-to-sink paths with equal duration; the higher-priority
	// path must win the tie.
	tasks := []Task{
		task("low-root", 50, PriorityLow),
		task("high-root", 50, PriorityCritical),
		task("sink", 10, PriorityMedium, "low-root", "high-root"),
	}

	graph := BuildDependencyGraph(tasks)
	assert.Equal(t, []string{"high-root", "sink"}, graph.CriticalPath)
}

func TestBuildDependencyGraph_CyclicHasNoCriticalPath(t *testing.T) {
	tasks := []Task{
		task("a", 10, PriorityMedium, "b"),
		task("b", 10, PriorityMedium, "a"),
	}

	graph := BuildDependencyGraph(tasks)
	assert.Empty(t, graph.CriticalPath)
	assert.Empty(t, graph.Layers)
}

func TestScheduleDuration(t *testing.T) {
	tasks := []Task{
		task("a", 60, PriorityMedium),
		task("b", 30, PriorityMedium),
		task("c", 45, PriorityMedium, "a", "b"),
	}
	graph := BuildDependencyGraph(tasks)

	// Layer 0 = {a, b} runs in parallel: max 60. Layer 1 = {c}: 45.
	assert.Equal(t, 105, ScheduleDuration(tasks, graph.Layers, 3))

	// With a cap of 1 the layer serializes.
	assert.Equal(t, 135, ScheduleDuration(tasks, graph.Layers, 1))
}

func TestScheduleDuration_SerializedTasks(t *testing.T) {
	serial := task("serial", 60, PriorityCritical)
	serial.CanRunInParallel = false
	tasks := []Task{
		task("a", 30, PriorityMedium),
		serial,
		task("b", 40, PriorityMedium),
	}
	graph := BuildDependencyGraph(tasks)

	// Parallel pair contributes max(30, 40); the serialized task adds 60.
	assert.Equal(t, 100, ScheduleDuration(tasks, graph.Layers, 3))
}

func TestScheduleDuration_NeverExceedsSequential(t *testing.T) {
	tasks := []Task{
		task("a", 17, PriorityMedium),
		task("b", 23, PriorityMedium),
		task("c", 31, PriorityMedium, "a"),
		task("d", 11, PriorityMedium, "a", "b"),
		task("e", 53, PriorityMedium, "c"),
	}
	graph := BuildDependencyGraph(tasks)

	sequential := 0
	for _, tk := range tasks {
		sequential += tk.EstimatedDuration
	}
	for _, k := range []int{1, 2, 3, 10} {
		assert.LessOrEqual(t, ScheduleDuration(tasks, graph.Layers, k), sequential, "k=%d", k)
	}
}
