package routingalgorithm

import "github.com/lintang-b-s/offlinenav/pkg/datastructure"

type Graph interface {
	NumNodes() int
	GetNode(idx int32) datastructure.Node
	Neighbors(idx int32) []datastructure.Arc
	HeuristicSafe() bool
}
