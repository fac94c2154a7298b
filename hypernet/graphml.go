package hypernet

import (
	"fmt"
	"strings"
)

const graphMLHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
	"<graphml xmlns=\"http://graphml.graphdrawing.org/xmlns\" >\n" +
	"<graph id=\"G\" edgedefault=\"undirected\">\n"

const graphMLFooter = "</graph>\n</graphml>\n"

// ToGraphML renders the network as a GraphML hypergraph: one node per
// member and one hyperedge per channel with an endpoint per member in
// membership insertion order.
func (n *HyperNetwork) ToGraphML() string {
	var b strings.Builder
	b.WriteString(graphMLHeader)

	memberNumbers := n.writeNodes(&b)

	for _, channel := range n.channels {
		b.WriteString("<hyperedge>\n")
		for _, member := range channel.members {
			fmt.Fprintf(&b, "<endpoint node=\"n%d\"/>\n", memberNumbers[member])
		}
		b.WriteString("</hyperedge>\n")
	}

	b.WriteString(graphMLFooter)
	return b.String()
}

// ToGraphMLWithCliques renders the network as a GraphML graph where
// each channel is replaced by the clique on its members.
func (n *HyperNetwork) ToGraphMLWithCliques() string {
	var b strings.Builder
	b.WriteString(graphMLHeader)

	memberNumbers := n.writeNodes(&b)

	edgeCounter := 0
	for _, channel := range n.channels {
		members := channel.members
		if len(members) < 2 {
			continue
		}

		for i, m1 := range members {
			for _, m2 := range members[i+1:] {
				edgeCounter++
				fmt.Fprintf(&b, "<edge id=\"e%d\" source=\"n%d\" target=\"n%d\"/>\n",
					edgeCounter, memberNumbers[m1], memberNumbers[m2])
			}
		}
	}

	b.WriteString(graphMLFooter)
	return b.String()
}

// writeNodes emits one node element per member and returns the 1-based
// node numbering.
func (n *HyperNetwork) writeNodes(b *strings.Builder) map[*Member]int {
	memberNumbers := make(map[*Member]int, len(n.members))
	for i, member := range n.members {
		memberNumbers[member] = i + 1
		fmt.Fprintf(b, "<node id=\"n%d\"/>\n", i+1)
	}
	return memberNumbers
}
