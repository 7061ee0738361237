// Package graph implements C5: building a dependency DAG over a task
// set, detecting cycles, and producing a topological layering.
//
// Cycle detection is grounded on the donor's
// internal/workflow/module.go Workflow.findCycle (a 3-state DFS with a
// parent-pointer map for reconstructing the offending path), applied
// here to depends_on edges instead of step-needs edges. Layering is
// grounded on other_examples/…druarnfield-pit…executor.go's topoSort
// (Kahn's algorithm via in-degree counting), adapted to also record
// each task's position within its source list so a layer's members can
// be tie-broken by insertion order per spec §4.5.
package graph

import (
	pterrors "github.com/pt-run/pt/internal/errors"
	"github.com/pt-run/pt/internal/task"
)

// Graph is a dependency DAG over a resolved task set, restricted (via
// Build) to the transitive closure reachable from a chosen root task.
type Graph struct {
	Nodes []string            // all nodes, insertion order
	Edges map[string][]string // node -> depends_on targets
}

// Build walks root's depends_on transitive closure within tasks, erroring
// with TaskNotFound if any referenced task is missing (I4) and
// CycleDependsOn if a cycle is found (I4/C5).
func Build(root string, tasks map[string]*task.Task) (*Graph, error) {
	g := &Graph{Edges: make(map[string][]string)}
	visited := make(map[string]bool)

	var walk func(name string) error
	walk = func(name string) error {
		if visited[name] {
			return nil
		}
		t, ok := tasks[name]
		if !ok {
			return pterrors.TaskNotFound(name)
		}
		visited[name] = true
		g.Nodes = append(g.Nodes, name)
		g.Edges[name] = append([]string{}, t.DependsOn...)
		for _, dep := range t.DependsOn {
			if err := walk(dep); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}

	if cycle := findCycle(g); cycle != nil {
		return nil, pterrors.CycleDependsOn(cycle)
	}

	return g, nil
}

// findCycle runs a DFS over g; state tracks progress per node: 0
// unvisited, 1 visiting, 2 done.
func findCycle(g *Graph) []string {
	state := make(map[string]int, len(g.Nodes))
	parent := make(map[string]string, len(g.Nodes))

	var dfs func(node string) []string
	dfs = func(node string) []string {
		state[node] = 1
		for _, dep := range g.Edges[node] {
			switch state[dep] {
			case 0:
				parent[dep] = node
				if cycle := dfs(dep); cycle != nil {
					return cycle
				}
			case 1:
				return reconstructCycle(parent, node, dep)
			}
		}
		state[node] = 2
		return nil
	}

	for _, n := range g.Nodes {
		if state[n] == 0 {
			if cycle := dfs(n); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// reconstructCycle walks parent pointers from the back-edge's source
// back to the back-edge's target, producing node→…→node→target.
func reconstructCycle(parent map[string]string, from, to string) []string {
	path := []string{from}
	cur := from
	for cur != to {
		cur = parent[cur]
		path = append(path, cur)
	}
	// reverse so the cycle reads target -> ... -> source -> target
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return append(path, to)
}

// Layers returns a topological layering of g: layer 0 holds nodes with
// no outstanding dependencies, each subsequent layer holds nodes whose
// dependencies are fully satisfied by earlier layers. Within a layer,
// nodes are ordered by their position in g.Nodes (insertion order).
func Layers(g *Graph) [][]string {
	inDegree := make(map[string]int, len(g.Nodes))
	dependents := make(map[string][]string, len(g.Nodes))
	position := make(map[string]int, len(g.Nodes))

	for i, n := range g.Nodes {
		position[n] = i
		inDegree[n] = len(g.Edges[n])
	}
	for n, deps := range g.Edges {
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], n)
		}
	}

	resolved := make(map[string]bool, len(g.Nodes))
	var layers [][]string

	for len(resolved) < len(g.Nodes) {
		var layer []string
		for _, n := range g.Nodes {
			if resolved[n] {
				continue
			}
			if inDegree[n] == 0 {
				layer = append(layer, n)
			}
		}
		if len(layer) == 0 {
			// unreachable: Build already rejects cycles.
			break
		}
		for _, n := range layer {
			resolved[n] = true
			for _, dependent := range dependents[n] {
				inDegree[dependent]--
			}
		}
		layers = append(layers, layer)
	}

	return layers
}
