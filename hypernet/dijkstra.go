package hypernet

import (
	"container/heap"
	"math"

	"github.com/hyperln/simulator/utils"
)

// INF_DISTANCE represents an unreachable member. All realistic route
// costs compare below it.
const INF_DISTANCE = utils.Amount(math.MaxInt64)

// queueItem is a priority-queue entry. Entries are never updated in
// place: improving a member's distance pushes a fresh entry and the
// stale one is skipped when popped.
type queueItem struct {
	member *Member
	dist   utils.Amount
	seq    int
}

// routeQueue orders items by distance, ties by the order the distance
// was attained.
type routeQueue []*queueItem

func (q routeQueue) Len() int { return len(q) }

func (q routeQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}

func (q routeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *routeQueue) Push(x interface{}) {
	*q = append(*q, x.(*queueItem))
}

func (q *routeQueue) Pop() interface{} {
	old := *q
	item := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return item
}

// CheapestRoute returns the cheapest feasible route for a payment of
// amount from origin to destination, or nil if there is none.
//
// The search is a modified Dijkstra running backwards from the payee.
// A channel's cost depends on the amount it has to transact (the
// payee's amount plus all downstream fees) and on how many channels
// already lie between it and the payee, so edge weights are only known
// relative to the partial path, which a per-member channel stack
// carries along.
func (n *HyperNetwork) CheapestRoute(origin, destination *Member,
	amount utils.Amount) *PaymentRoute {

	if _, ok := n.memberSet[origin]; !ok {
		panic("CheapestRoute called with an origin outside the network")
	}
	if _, ok := n.memberSet[destination]; !ok {
		panic("CheapestRoute called with a destination outside the network")
	}

	distances := make(map[*Member]utils.Amount, len(n.members))
	previous := make(map[*Member]*Member, len(n.members))
	channelStacks := make(map[*Member][]*HyperChannel, len(n.members))

	distances[destination] = 0
	previous[destination] = destination
	channelStacks[destination] = nil

	queue := make(routeQueue, 0, len(n.members))
	seq := 0
	for _, member := range n.members {
		if member != destination {
			distances[member] = INF_DISTANCE
		}
		heap.Push(&queue, &queueItem{member: member, dist: distances[member], seq: seq})
		seq++
	}

	for queue.Len() > 0 {
		item := heap.Pop(&queue).(*queueItem)
		u := item.member

		if item.dist != distances[u] {
			// Stale entry; the member was reached cheaper in the meantime.
			continue
		}
		if distances[u] == INF_DISTANCE {
			// Everything still queued is unreachable.
			break
		}

		uStack := channelStacks[u]

		for _, channel := range u.networkChannels(n) {
			if channelOnStack(uStack, channel) {
				// Going through the same channel twice never pays.
				continue
			}

			for _, v := range channel.members {
				if v == u {
					continue
				}

				additionalFee := channel.GetFee(v, u, amount+distances[u],
					len(uStack))
				if additionalFee == -1 {
					// Channel cannot carry the transaction at this point.
					continue
				}

				alternative := distances[u] + additionalFee
				if alternative < distances[v] {
					distances[v] = alternative
					previous[v] = u

					stack := make([]*HyperChannel, 0, len(uStack)+1)
					stack = append(stack, channel)
					stack = append(stack, uStack...)
					channelStacks[v] = stack

					heap.Push(&queue, &queueItem{member: v, dist: alternative, seq: seq})
					seq++
				}
			}
		}
	}

	if distances[origin] == INF_DISTANCE {
		return nil
	}

	hops := []*Member{origin}
	current := origin
	for previous[current] != current {
		current = previous[current]
		hops = append(hops, current)
	}

	return NewPaymentRoute(hops, channelStacks[origin])
}

func channelOnStack(stack []*HyperChannel, channel *HyperChannel) bool {
	for _, c := range stack {
		if c == channel {
			return true
		}
	}
	return false
}
