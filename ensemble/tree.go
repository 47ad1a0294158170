package ensemble

import (
	"math/rand"
)

// Node is a node of a regression tree. Exported fields keep the tree
// gob-serializable as part of the model artifact.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64 // x[Feature] <= Threshold goes left
	Left      *Node
	Right     *Node
	Value     []float64 // per-target mean of the samples in this node
}

type treeConfig struct {
	maxDepth        int // 0 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int // 0 means all features
}

// buildNode grows a CART regression node on the samples in idx, splitting on
// the feature/threshold pair that most reduces the summed per-target squared
// error.
func buildNode(X, y [][]float64, idx []int, depth int, cfg treeConfig, rnd *rand.Rand) *Node {
	nTargets := len(y[0])
	node := &Node{Value: meanTargets(y, idx, nTargets)}

	if len(idx) < cfg.minSamplesSplit {
		node.Leaf = true
		return node
	}
	if cfg.maxDepth > 0 && depth >= cfg.maxDepth {
		node.Leaf = true
		return node
	}

	feature, threshold, ok := bestSplit(X, y, idx, cfg, rnd)
	if !ok {
		node.Leaf = true
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < cfg.minSamplesLeaf || len(right) < cfg.minSamplesLeaf {
		node.Leaf = true
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = buildNode(X, y, left, depth+1, cfg, rnd)
	node.Right = buildNode(X, y, right, depth+1, cfg, rnd)
	return node
}

// bestSplit scans the candidate features for the threshold minimizing the
// total squared error of the two children. Reports ok=false when no split
// improves on the parent.
func bestSplit(X, y [][]float64, idx []int, cfg treeConfig, rnd *rand.Rand) (feature int, threshold float64, ok bool) {
	n := len(idx)
	nFeatures := len(X[0])
	nTargets := len(y[0])

	features := candidateFeatures(nFeatures, cfg.maxFeatures, rnd)

	parentSSE := sseTargets(y, idx, nTargets)
	bestSSE := parentSSE
	sorted := make([]int, n)

	for _, f := range features {
		copy(sorted, idx)
		sortByFeature(X, sorted, f)

		// Running sums for the left partition; the right partition is the
		// complement of the totals.
		leftSum := make([]float64, nTargets)
		leftSumSq := make([]float64, nTargets)
		totalSum := make([]float64, nTargets)
		totalSumSq := make([]float64, nTargets)
		for _, i := range sorted {
			for t := 0; t < nTargets; t++ {
				v := y[i][t]
				totalSum[t] += v
				totalSumSq[t] += v * v
			}
		}

		for s := 1; s < n; s++ {
			i := sorted[s-1]
			for t := 0; t < nTargets; t++ {
				v := y[i][t]
				leftSum[t] += v
				leftSumSq[t] += v * v
			}

			// Cannot split between identical feature values.
			if X[sorted[s-1]][f] == X[sorted[s]][f] {
				continue
			}
			if s < cfg.minSamplesLeaf || n-s < cfg.minSamplesLeaf {
				continue
			}

			var sse float64
			nLeft, nRight := float64(s), float64(n-s)
			for t := 0; t < nTargets; t++ {
				rightSum := totalSum[t] - leftSum[t]
				rightSumSq := totalSumSq[t] - leftSumSq[t]
				sse += leftSumSq[t] - leftSum[t]*leftSum[t]/nLeft
				sse += rightSumSq - rightSum*rightSum/nRight
			}

			if sse < bestSSE {
				bestSSE = sse
				feature = f
				threshold = (X[sorted[s-1]][f] + X[sorted[s]][f]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// candidateFeatures returns the feature indices to consider for a split:
// all of them, or a random subset of maxFeatures when subsampling is on.
func candidateFeatures(nFeatures, maxFeatures int, rnd *rand.Rand) []int {
	if maxFeatures <= 0 || maxFeatures >= nFeatures {
		features := make([]int, nFeatures)
		for i := range features {
			features[i] = i
		}
		return features
	}
	return rnd.Perm(nFeatures)[:maxFeatures]
}

func sortByFeature(X [][]float64, idx []int, f int) {
	// Insertion sort keeps the hot path allocation-free; node sample sets
	// shrink quickly as the tree deepens.
	for i := 1; i < len(idx); i++ {
		j := i
		for j > 0 && X[idx[j-1]][f] > X[idx[j]][f] {
			idx[j-1], idx[j] = idx[j], idx[j-1]
			j--
		}
	}
}

func meanTargets(y [][]float64, idx []int, nTargets int) []float64 {
	mean := make([]float64, nTargets)
	for _, i := range idx {
		for t := 0; t < nTargets; t++ {
			mean[t] += y[i][t]
		}
	}
	for t := 0; t < nTargets; t++ {
		mean[t] /= float64(len(idx))
	}
	return mean
}

func sseTargets(y [][]float64, idx []int, nTargets int) float64 {
	mean := meanTargets(y, idx, nTargets)
	var sse float64
	for _, i := range idx {
		for t := 0; t < nTargets; t++ {
			diff := y[i][t] - mean[t]
			sse += diff * diff
		}
	}
	return sse
}

// predictNode walks the tree for a single feature row.
func predictNode(n *Node, x []float64) []float64 {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}
