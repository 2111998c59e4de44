package interact

import (
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/DipokalLab/intellect/pkg/filter"
)

// ConnectionPath returns the node ids of the shortest chain that links the
// given persons in order over the visible graph. Consecutive legs share
// their endpoint. It reports false when fewer than two ids are given, an id
// is not visible, or some leg has no path.
func ConnectionPath(sub *filter.Subgraph, ids []string) ([]string, bool) {
	if len(ids) < 2 {
		return nil, false
	}

	g := simple.NewUndirectedGraph()
	nodeIDs := sub.NodeIDs()
	index := make(map[string]int64, len(nodeIDs))
	for i, id := range nodeIDs {
		index[id] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, e := range sub.Edges {
		u, uok := index[e.Source]
		v, vok := index[e.Target]
		if !uok || !vok || u == v {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(u), g.Node(v)))
	}

	var out []string
	for i := 0; i+1 < len(ids); i++ {
		from, fok := index[ids[i]]
		to, tok := index[ids[i+1]]
		if !fok || !tok {
			return nil, false
		}
		leg, _ := path.DijkstraFrom(g.Node(from), g).To(to)
		if len(leg) == 0 {
			return nil, false
		}
		if len(out) > 0 {
			leg = leg[1:]
		}
		for _, n := range leg {
			out = append(out, nodeIDs[n.ID()])
		}
	}
	return out, true
}
