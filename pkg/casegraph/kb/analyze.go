package kb

// Construction-time analysis of the rule-dependency graph: cycle detection,
// a topological order for downstream index building, and the partition into
// weakly-connected components for parallel processing.
//
// Nodes are literals and rules. A literal depends on every rule whose head it
// is; a rule depends on every literal in its body. The DFS is iterative: the
// graph may be large and construction must not rely on the very acyclicity it
// is checking.

const (
	colorWhite = iota
	colorGray
	colorBlack
)

type dfsFrame struct {
	node int
	next int // index of the next dependency to visit
}

func (k *KnowledgeBase) analyze() error {
	nLits := len(k.literals)
	n := nLits + len(k.rules)

	deps := make([][]int, n)
	for i := 0; i < n; i++ {
		deps[i] = k.dependencies(i, nLits)
	}

	color := make([]int, n)
	var stack []dfsFrame
	var path []int // gray nodes, root to current

	for start := 0; start < n; start++ {
		if color[start] != colorWhite {
			continue
		}
		color[start] = colorGray
		stack = append(stack[:0], dfsFrame{node: start})
		path = append(path[:0], start)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(deps[top.node]) {
				dep := deps[top.node][top.next]
				top.next++
				switch color[dep] {
				case colorWhite:
					color[dep] = colorGray
					stack = append(stack, dfsFrame{node: dep})
					path = append(path, dep)
				case colorGray:
					return &CycleError{Cycle: k.cyclePath(path, dep, nLits)}
				}
				continue
			}
			color[top.node] = colorBlack
			if top.node < nLits {
				k.topo = append(k.topo, LitID(top.node))
			}
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
		}
	}

	k.components(nLits)
	return nil
}

// dependencies returns the nodes that node depends on. Literal nodes depend
// on the rules with that head; rule nodes depend on their body literals.
func (k *KnowledgeBase) dependencies(node, nLits int) []int {
	if node < nLits {
		rules := k.rulesWithHead[node]
		deps := make([]int, len(rules))
		for i, r := range rules {
			deps[i] = nLits + int(r)
		}
		return deps
	}
	body := k.ruleBody[node-nLits]
	deps := make([]int, len(body))
	for i, l := range body {
		deps[i] = int(l)
	}
	return deps
}

// cyclePath extracts the offending cycle from the gray path: the segment from
// the first occurrence of repeat to the top, with repeat appended again.
func (k *KnowledgeBase) cyclePath(path []int, repeat, nLits int) []string {
	start := 0
	for i, node := range path {
		if node == repeat {
			start = i
			break
		}
	}
	var out []string
	for _, node := range path[start:] {
		out = append(out, k.nodeString(node, nLits))
	}
	out = append(out, k.nodeString(repeat, nLits))
	return out
}

func (k *KnowledgeBase) nodeString(node, nLits int) string {
	if node < nLits {
		return k.literals[node].String()
	}
	return k.rules[node-nLits].String()
}

// components partitions literals and rules into weakly-connected components
// of the rule-dependency graph with a union-find over rule edges. Literals
// that no rule touches form singleton components.
func (k *KnowledgeBase) components(nLits int) {
	n := nLits + len(k.rules)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for ri := range k.rules {
		node := nLits + ri
		union(node, int(k.ruleHead[ri]))
		for _, l := range k.ruleBody[ri] {
			union(node, int(l))
		}
	}

	compOf := make(map[int]int)
	k.litComp = make([]int, nLits)
	k.ruleComp = make([]int, len(k.rules))
	for i := 0; i < n; i++ {
		root := find(i)
		c, ok := compOf[root]
		if !ok {
			c = len(compOf)
			compOf[root] = c
		}
		if i < nLits {
			k.litComp[i] = c
		} else {
			k.ruleComp[i-nLits] = c
		}
	}
	k.numComp = len(compOf)
}
