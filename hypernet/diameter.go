package hypernet

import (
	"fmt"
	"math"

	fibHeap "github.com/starwander/GoFibonacciHeap"
)

// INF is the unit-distance sentinel for the diameter computation.
const INF = 0x3f3f3f3f

type disElement struct {
	distance float64
	id       int
}

func (d *disElement) Tag() interface{} {
	return d.id
}

func (d *disElement) Key() float64 {
	return d.distance
}

// twoSectionAdjacency expands every channel into the clique on its
// members and returns, per member index, the neighbour indices in
// first-encounter order.
func (n *HyperNetwork) twoSectionAdjacency() [][]int {
	index := make(map[*Member]int, len(n.members))
	for i, member := range n.members {
		index[member] = i
	}

	adjacency := make([][]int, len(n.members))
	seen := make([]map[int]struct{}, len(n.members))
	for i := range seen {
		seen[i] = make(map[int]struct{})
	}

	addEdge := func(a, b int) {
		if _, ok := seen[a][b]; !ok {
			seen[a][b] = struct{}{}
			adjacency[a] = append(adjacency[a], b)
		}
	}

	for _, channel := range n.channels {
		for i, m1 := range channel.members {
			for _, m2 := range channel.members[i+1:] {
				a, b := index[m1], index[m2]
				addEdge(a, b)
				addEdge(b, a)
			}
		}
	}

	return adjacency
}

// eccentricity returns the largest unit-weight distance from source, or
// INF if some member is unreachable from it.
func eccentricity(adjacency [][]int, source int) float64 {
	distance := make([]float64, len(adjacency))
	settled := make([]bool, len(adjacency))

	heap := fibHeap.NewFibHeap()
	for id := range adjacency {
		distance[id] = INF
		err := heap.InsertValue(&disElement{INF, id})
		if err != nil {
			fmt.Printf("insert value faced err :%v", err)
		}
	}

	distance[source] = 0
	err := heap.DecreaseKey(source, 0)
	if err != nil {
		fmt.Printf("decrease value faced err :%v", err)
	}

	ecc := float64(0)
	for i := 0; i < len(adjacency); i++ {
		tmpK, min := heap.ExtractMin()
		if min >= INF {
			return INF
		}
		k := tmpK.(int)
		settled[k] = true
		if min > ecc {
			ecc = min
		}

		for _, neighbour := range adjacency[k] {
			tmp := min + 1
			if !settled[neighbour] && tmp < distance[neighbour] {
				distance[neighbour] = tmp
				err := heap.DecreaseKey(neighbour, tmp)
				if err != nil {
					fmt.Printf("decrease value faced err :%v", err)
				}
			}
		}
	}

	return ecc
}

// Diameter returns the diameter of the network's 2-section: the
// largest unit-weight shortest-path distance between any two members.
// A disconnected network has an infinite diameter.
func (n *HyperNetwork) Diameter() float64 {
	if len(n.members) == 0 {
		return 0
	}

	adjacency := n.twoSectionAdjacency()

	diameter := float64(0)
	for source := range adjacency {
		ecc := eccentricity(adjacency, source)
		if ecc >= INF {
			return math.Inf(1)
		}
		if ecc > diameter {
			diameter = ecc
		}
	}
	return diameter
}
