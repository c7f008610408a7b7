package learn

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Task selects the split criterion and the leaf value of a tree
type Task int

const (
	// Classification splits on Gini impurity and stores class shares
	Classification Task = iota
	// Regression splits on squared error and stores the mean target
	Regression
)

func (t Task) String() string {
	if t == Regression {
		return "regression"
	}
	return "classification"
}

type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
	dist      []float64
}

func (n *node) leaf() bool {
	return n.left < 0
}

type treeParams struct {
	task        Task
	classes     int
	maxFeatures int
	maxDepth    int
	minSplit    int
}

// tree is a fitted CART decision tree stored as a flat node slice
type tree struct {
	nodes []node
}

func (t *tree) leafFor(x []float64) *node {
	n := &t.nodes[0]
	for !n.leaf() {
		if x[n.feature] <= n.threshold {
			n = &t.nodes[n.left]
		} else {
			n = &t.nodes[n.right]
		}
	}
	return n
}

type grower struct {
	X     [][]float64
	y     []float64
	p     treeParams
	rng   *rand.Rand
	feats []int
	nodes []node
}

// growTree fits a tree on the rows named by idx. Rows may repeat.
func growTree(X [][]float64, y []float64, idx []int, p treeParams, rng *rand.Rand) *tree {
	g := &grower{X: X, y: y, p: p, rng: rng, feats: make([]int, len(X[0]))}
	for i := range g.feats {
		g.feats[i] = i
	}
	g.grow(idx, 0)
	return &tree{nodes: g.nodes}
}

func (g *grower) grow(idx []int, depth int) int {
	id := len(g.nodes)
	g.nodes = append(g.nodes, g.leafNode(idx))

	if len(idx) < g.p.minSplit || (g.p.maxDepth > 0 && depth >= g.p.maxDepth) || g.pure(idx) {
		return id
	}
	feature, threshold, ok := g.bestSplit(idx)
	if !ok {
		return id
	}

	left, right := partition(g.X, idx, feature, threshold)
	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)

	// children may have grown the slice
	n := &g.nodes[id]
	n.feature, n.threshold, n.left, n.right = feature, threshold, l, r
	n.dist = nil
	return id
}

func (g *grower) leafNode(idx []int) node {
	n := node{left: -1, right: -1}
	if g.p.task == Regression {
		var sum float64
		for _, i := range idx {
			sum += g.y[i]
		}
		n.value = sum / float64(len(idx))
		return n
	}

	n.dist = make([]float64, g.p.classes)
	for _, i := range idx {
		n.dist[int(g.y[i])]++
	}
	for c := range n.dist {
		n.dist[c] /= float64(len(idx))
	}
	return n
}

func (g *grower) pure(idx []int) bool {
	first := g.y[idx[0]]
	for _, i := range idx[1:] {
		if g.y[i] != first {
			return false
		}
	}
	return true
}

// bestSplit searches a random subset of features. Constant features do not
// count toward the subset size.
func (g *grower) bestSplit(idx []int) (int, float64, bool) {
	g.rng.Shuffle(len(g.feats), func(i, j int) {
		g.feats[i], g.feats[j] = g.feats[j], g.feats[i]
	})

	sorted := make([]int, len(idx))
	bestScore := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0
	visited := 0

	for _, f := range g.feats {
		if visited >= g.p.maxFeatures {
			break
		}
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool {
			return g.X[sorted[a]][f] < g.X[sorted[b]][f]
		})
		if g.X[sorted[0]][f] == g.X[sorted[len(sorted)-1]][f] {
			continue
		}
		visited++

		var score, threshold float64
		if g.p.task == Regression {
			score, threshold = g.scanSquaredError(sorted, f)
		} else {
			score, threshold = g.scanGini(sorted, f)
		}
		if score < bestScore {
			bestScore, bestFeature, bestThreshold = score, f, threshold
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func (g *grower) scanSquaredError(sorted []int, f int) (float64, float64) {
	n := len(sorted)
	var totalSum, totalSq float64
	for _, i := range sorted {
		v := g.y[i]
		totalSum += v
		totalSq += v * v
	}

	best, threshold := math.Inf(1), 0.0
	var leftSum, leftSq float64
	for k := 0; k < n-1; k++ {
		v := g.y[sorted[k]]
		leftSum += v
		leftSq += v * v

		x0, x1 := g.X[sorted[k]][f], g.X[sorted[k+1]][f]
		if x0 == x1 {
			continue
		}
		nl, nr := float64(k+1), float64(n-k-1)
		rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
		sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
		if sse < best {
			best, threshold = sse, midpoint(x0, x1)
		}
	}
	return best, threshold
}

func (g *grower) scanGini(sorted []int, f int) (float64, float64) {
	n := len(sorted)
	total := make([]float64, g.p.classes)
	for _, i := range sorted {
		total[int(g.y[i])]++
	}

	left := make([]float64, g.p.classes)
	best, threshold := math.Inf(1), 0.0
	for k := 0; k < n-1; k++ {
		left[int(g.y[sorted[k]])]++

		x0, x1 := g.X[sorted[k]][f], g.X[sorted[k+1]][f]
		if x0 == x1 {
			continue
		}
		nl, nr := float64(k+1), float64(n-k-1)
		var sqL, sqR float64
		for c := range total {
			l, r := left[c], total[c]-left[c]
			sqL += l * l
			sqR += r * r
		}
		// weighted Gini: nl*(1-sqL/nl²) + nr*(1-sqR/nr²)
		score := (nl - sqL/nl) + (nr - sqR/nr)
		if score < best {
			best, threshold = score, midpoint(x0, x1)
		}
	}
	return best, threshold
}

// midpoint stays strictly below hi so hi never routes left
func midpoint(lo, hi float64) float64 {
	m := lo + (hi-lo)/2
	if m >= hi {
		return lo
	}
	return m
}

func partition(X [][]float64, idx []int, feature int, threshold float64) ([]int, []int) {
	left := make([]int, 0, len(idx)/2)
	right := make([]int, 0, len(idx)/2)
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}
