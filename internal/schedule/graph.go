package schedule

// TopoSort runs Kahn's algorithm over the dependency edges (task → its
// prerequisites). It returns a topological order when the graph is acyclic;
// otherwise it returns the path of one detected cycle.
func TopoSort(ids []string, dependsOn map[string][]string) (sorted []string, cycle []string) {
	if len(ids) == 0 {
		return nil, nil
	}

	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	// In-degree map and forward adjacency (prerequisite → dependent)
	inDegree := make(map[string]int, len(ids))
	forward := make(map[string][]string)
	for _, id := range ids {
		inDegree[id] = 0
	}

	for id, deps := range dependsOn {
		for _, dep := range deps {
			if !idSet[dep] || !idSet[id] {
				continue // references outside the analyzed set carry no edge
			}
			inDegree[id]++
			forward[dep] = append(forward[dep], id)
		}
	}

	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		for _, dependent := range forward[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) == len(ids) {
		return sorted, nil
	}
	return nil, findCyclePath(ids, dependsOn, inDegree)
}

// findCyclePath reconstructs a cycle among nodes with non-zero in-degree
// using three-color DFS.
func findCyclePath(ids []string, edges map[string][]string, inDegree map[string]int) []string {
	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // finished
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, dep := range edges[id] {
			if color[dep] == gray {
				cyclePath = []string{dep}
				current := id
				for current != dep {
					cyclePath = append(cyclePath, current)
					current = parent[current]
				}
				cyclePath = append(cyclePath, dep)
				for i, j := 0, len(cyclePath)-1; i < j; i, j = i+1, j-1 {
					cyclePath[i], cyclePath[j] = cyclePath[j], cyclePath[i]
				}
				return true
			}
			if color[dep] == white {
				parent[dep] = id
				if dfs(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range ids {
		if inDegree[id] > 0 && color[id] == white {
			if dfs(id) {
				return cyclePath
			}
		}
	}

	return []string{"(cycle detected)"}
}
