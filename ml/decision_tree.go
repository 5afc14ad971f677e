package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
)

// DecisionTree is a binary CART classifier stored as a flat node list.
// Node 0 is the root; a left subtree is laid out right after its parent.
type DecisionTree struct {
	nodes           []TreeNode
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
	rnd             *rand.Rand
}

type TreeNode struct {
	FeatureIdx  int     `json:"feature_idx"`
	Threshold   float64 `json:"threshold"`
	LeftChild   int     `json:"left_child"`
	RightChild  int     `json:"right_child"`
	ClassLabel  int     `json:"class_label"`
	Probability float64 `json:"probability"`
	Samples     int     `json:"samples"`
	IsLeaf      bool    `json:"is_leaf"`
}

// NewDecisionTree creates a tree considering every feature at every split.
// maxDepth <= 0 grows the tree until leaves are pure.
func NewDecisionTree(maxDepth int) *DecisionTree {
	return &DecisionTree{
		maxDepth:        maxDepth,
		minSamplesSplit: 2,
	}
}

// newForestTree creates a tree that samples maxFeatures candidates per split.
func newForestTree(maxDepth, maxFeatures int, rnd *rand.Rand) *DecisionTree {
	return &DecisionTree{
		maxDepth:        maxDepth,
		minSamplesSplit: 2,
		maxFeatures:     maxFeatures,
		rnd:             rnd,
	}
}

func (dt *DecisionTree) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	if width == 0 {
		return errors.New("feature vectors empty")
	}
	for i, feature := range features {
		if len(feature) != width {
			return fmt.Errorf("feature vector %d has %d values, want %d", i, len(feature), width)
		}
		if labels[i] != LabelUninhabitable && labels[i] != LabelHabitable {
			return fmt.Errorf("label %d at row %d is not binary", labels[i], i)
		}
	}

	indices := make([]int, len(features))
	for i := range indices {
		indices[i] = i
	}
	dt.nodes = dt.buildNode(features, labels, indices, 0)
	return nil
}

// Predict returns the leaf class and the leaf's class-1 probability.
func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return 0, 0, err
	}
	return leaf.ClassLabel, leaf.Probability, nil
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	if dt == nil || len(dt.nodes) == 0 {
		return TreeNode{}, errors.New("model not trained")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return TreeNode{}, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return TreeNode{}, errors.New("invalid tree state")
		}
	}
}

// Nodes returns a copy of the flat node list.
func (dt *DecisionTree) Nodes() []TreeNode {
	return append([]TreeNode(nil), dt.nodes...)
}

// Depth returns the longest root-to-leaf path.
func (dt *DecisionTree) Depth() int {
	if len(dt.nodes) == 0 {
		return 0
	}
	var walk func(idx int) int
	walk = func(idx int) int {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return 0
		}
		return 1 + max(walk(node.LeftChild), walk(node.RightChild))
	}
	return walk(0)
}

func (dt *DecisionTree) Save(path string) error {
	if len(dt.nodes) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(dt.nodes)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var nodes []TreeNode
	if err := json.Unmarshal(payload, &nodes); err != nil {
		return err
	}
	if err := validateNodes(nodes); err != nil {
		return err
	}
	dt.nodes = nodes
	return nil
}

func validateNodes(nodes []TreeNode) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			if node.Probability < 0 || node.Probability > 1 {
				return fmt.Errorf("node %d: probability %v out of range", i, node.Probability)
			}
			continue
		}
		if node.LeftChild <= i || node.LeftChild >= len(nodes) || node.RightChild <= i || node.RightChild >= len(nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}

func (dt *DecisionTree) buildNode(features [][]float64, labels []int, indices []int, depth int) []TreeNode {
	positives := countPositives(labels, indices)
	leaf := TreeNode{
		FeatureIdx:  -1,
		LeftChild:   -1,
		RightChild:  -1,
		ClassLabel:  majorityLabel(positives, len(indices)),
		Probability: float64(positives) / float64(len(indices)),
		Samples:     len(indices),
		IsLeaf:      true,
	}

	pure := positives == 0 || positives == len(indices)
	if pure || len(indices) < dt.minSamplesSplit || (dt.maxDepth > 0 && depth >= dt.maxDepth) {
		return []TreeNode{leaf}
	}

	bestFeature, threshold, ok := dt.findBestSplit(features, labels, indices)
	if !ok {
		return []TreeNode{leaf}
	}

	leftIdx, rightIdx := splitIndices(features, indices, bestFeature, threshold)
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return []TreeNode{leaf}
	}

	leftNodes := dt.buildNode(features, labels, leftIdx, depth+1)
	rightNodes := dt.buildNode(features, labels, rightIdx, depth+1)

	root := leaf
	root.FeatureIdx = bestFeature
	root.Threshold = threshold
	root.LeftChild = 1
	root.RightChild = 1 + len(leftNodes)
	root.IsLeaf = false

	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, shiftChildren(leftNodes, 1)...)
	nodes = append(nodes, shiftChildren(rightNodes, 1+len(leftNodes))...)
	return nodes
}

// shiftChildren rebases subtree child indices after the subtree is appended at offset.
func shiftChildren(nodes []TreeNode, offset int) []TreeNode {
	for i := range nodes {
		if nodes[i].IsLeaf {
			continue
		}
		nodes[i].LeftChild += offset
		nodes[i].RightChild += offset
	}
	return nodes
}

// candidateFeatures returns the features to try at a split, random order when sampling.
func (dt *DecisionTree) candidateFeatures(featureCount int) []int {
	if dt.rnd == nil || dt.maxFeatures <= 0 || dt.maxFeatures >= featureCount {
		order := make([]int, featureCount)
		for i := range order {
			order[i] = i
		}
		return order
	}
	return dt.rnd.Perm(featureCount)
}

// findBestSplit scans sorted values of each candidate feature and keeps the
// midpoint threshold with the lowest weighted Gini impurity. When sampling,
// features past maxFeatures are only tried if no valid split was found yet.
func (dt *DecisionTree) findBestSplit(features [][]float64, labels []int, indices []int) (int, float64, bool) {
	featureCount := len(features[indices[0]])
	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	limit := featureCount
	if dt.maxFeatures > 0 && dt.maxFeatures < featureCount {
		limit = dt.maxFeatures
	}

	sorted := make([]int, len(indices))
	for tried, featureIdx := range dt.candidateFeatures(featureCount) {
		if tried >= limit && bestFeature != -1 {
			break
		}
		copy(sorted, indices)
		sort.SliceStable(sorted, func(a, b int) bool {
			return features[sorted[a]][featureIdx] < features[sorted[b]][featureIdx]
		})

		total := len(sorted)
		totalPositives := countPositives(labels, sorted)
		leftPositives := 0
		for i := 0; i < total-1; i++ {
			leftPositives += labels[sorted[i]]
			current := features[sorted[i]][featureIdx]
			next := features[sorted[i+1]][featureIdx]
			if current == next {
				continue
			}
			leftCount := i + 1
			rightCount := total - leftCount
			impurity := weightedGini(leftPositives, leftCount, totalPositives-leftPositives, rightCount)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = featureIdx
				bestThreshold = current + (next-current)/2
				if bestThreshold == next {
					bestThreshold = current
				}
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func splitIndices(features [][]float64, indices []int, featureIdx int, threshold float64) ([]int, []int) {
	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, idx := range indices {
		if features[idx][featureIdx] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

func weightedGini(leftPositives, leftCount, rightPositives, rightCount int) float64 {
	total := float64(leftCount + rightCount)
	return (float64(leftCount)/total)*gini(leftPositives, leftCount) +
		(float64(rightCount)/total)*gini(rightPositives, rightCount)
}

func gini(positives, count int) float64 {
	if count == 0 {
		return 0
	}
	p := float64(positives) / float64(count)
	return 1 - p*p - (1-p)*(1-p)
}

func countPositives(labels []int, indices []int) int {
	positives := 0
	for _, idx := range indices {
		positives += labels[idx]
	}
	return positives
}

// majorityLabel breaks ties toward the uninhabitable class.
func majorityLabel(positives, count int) int {
	if 2*positives > count {
		return LabelHabitable
	}
	return LabelUninhabitable
}
