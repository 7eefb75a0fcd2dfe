package model

import (
	"errors"
	"fmt"
)

// TreeNode is one node of a flat regression tree. Inner nodes send a row to
// Left when values[Feature] <= Threshold and to Right otherwise.
type TreeNode struct {
	Feature   int     `yaml:"feature"`
	Threshold float64 `yaml:"threshold"`
	Left      int     `yaml:"left"`
	Right     int     `yaml:"right"`
	Leaf      bool    `yaml:"leaf"`
	Value     float64 `yaml:"value"`
}

// Tree is a regression tree whose leaves hold the predicted score.
type Tree struct {
	name     string
	features []string
	nodes    []TreeNode
}

func newTree(a Artifact) (Model, error) {
	if len(a.Nodes) == 0 {
		return nil, errors.New("tree model: no nodes")
	}
	for i, n := range a.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= len(a.Features) {
			return nil, fmt.Errorf("tree model: node %d: feature index %d out of range", i, n.Feature)
		}
		// Children always follow their parent, so traversal terminates.
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(a.Nodes) {
				return nil, fmt.Errorf("tree model: node %d: invalid child %d", i, child)
			}
		}
	}

	nodes := make([]TreeNode, len(a.Nodes))
	copy(nodes, a.Nodes)
	return &Tree{name: a.Name, features: cloneFeatures(a.Features), nodes: nodes}, nil
}

func (t *Tree) Name() string       { return t.name }
func (t *Tree) Features() []string { return cloneFeatures(t.features) }

func (t *Tree) Predict(values []float64) (float64, error) {
	if err := checkArity(t.features, values); err != nil {
		return 0, err
	}
	idx := 0
	for {
		node := t.nodes[idx]
		if node.Leaf {
			return node.Value, nil
		}
		if values[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}
