package hypernet

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/hyperln/simulator/utils"
)

func TestCheapestRouteSimpleConnection(t *testing.T) {
	network, members := newTestNetwork(10)

	c1, err := NewHyperChannel(network, []*Member{members[0], members[1]},
		[]utils.Amount{70_000_000, 30_000_000})
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}

	route := network.CheapestRoute(members[0], members[1], 10_000_000)
	if route == nil {
		t.Fatalf("no route found")
	}

	hops := route.Hops()
	if len(hops) != 2 || hops[0] != members[0] || hops[1] != members[1] {
		t.Fatalf("wrong hops: %v", spew.Sdump(hops))
	}

	channels := route.Channels()
	if len(channels) != 1 || channels[0] != c1 {
		t.Fatalf("wrong channels: %v", spew.Sdump(channels))
	}
}

func TestCheapestRouteUnconnectedMembers(t *testing.T) {
	network, members := newTestNetwork(10)

	_, err := NewHyperChannel(network, []*Member{members[0], members[1]},
		[]utils.Amount{70_000_000, 30_000_000})
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}

	if route := network.CheapestRoute(members[0], members[4],
		10_000_000); route != nil {
		t.Fatalf("found a route between unconnected members: %v",
			spew.Sdump(route))
	}
}

// buildHyperFixture wires ten members into a chain of hyper channels:
// m8 -h1- m0 -h2- m1 -h3- {m3,m4} -h4- m2 -h5- m6.
func buildHyperFixture(t *testing.T) (*HyperNetwork, []*Member, []*HyperChannel) {
	t.Helper()
	network, members := newTestNetwork(10)

	mustChannel := func(ms []*Member, deposits []utils.Amount) *HyperChannel {
		c, err := NewHyperChannel(network, ms, deposits)
		if err != nil {
			t.Fatalf("faced error:%v", err)
		}
		return c
	}

	h1 := mustChannel([]*Member{members[0], members[8]},
		[]utils.Amount{70_000_000, 30_000_000})
	h2 := mustChannel([]*Member{members[9], members[1], members[0]},
		[]utils.Amount{70_000_000, 30_000_000, 11_000_000})
	h3 := mustChannel([]*Member{members[1], members[3], members[4]},
		[]utils.Amount{90_000_000, 30_000_000, 60_000_000})
	h4 := mustChannel([]*Member{members[2], members[3], members[4]},
		[]utils.Amount{220_000_000, 80_000_000, 110_000_000})
	h5 := mustChannel([]*Member{members[7], members[6], members[2], members[5]},
		[]utils.Amount{380_000_000, 370_000_000, 130_000_000, 120_000_000})

	// Registering again in a different order is a no-op.
	network.AddChannel(h2)
	network.AddChannel(h4)
	network.AddChannel(h5)
	network.AddChannel(h3)
	network.AddChannel(h1)

	return network, members, []*HyperChannel{h1, h2, h3, h4, h5}
}

func TestCheapestRouteHyperChannelConnection(t *testing.T) {
	network, members, channels := buildHyperFixture(t)

	route := network.CheapestRoute(members[8], members[6], 10_000_000)
	if route == nil {
		t.Fatalf("no route found")
	}

	hops := route.Hops()
	if len(hops) != 6 {
		t.Fatalf("wrong hop count: %v", spew.Sdump(hops))
	}
	if hops[0] != members[8] || hops[1] != members[0] || hops[2] != members[1] {
		t.Fatalf("wrong route head: %v", spew.Sdump(hops))
	}
	if hops[3] != members[3] && hops[3] != members[4] {
		t.Fatalf("wrong route middle: %v", spew.Sdump(hops))
	}
	if hops[4] != members[2] || hops[5] != members[6] {
		t.Fatalf("wrong route tail: %v", spew.Sdump(hops))
	}

	taken := route.Channels()
	if len(taken) != 5 {
		t.Fatalf("wrong channel count: %v", len(taken))
	}
	for i, channel := range taken {
		if channel != channels[i] {
			t.Fatalf("wrong channel at position %v", i)
		}
	}
}

func TestRouteValidity(t *testing.T) {
	network, members, _ := buildHyperFixture(t)
	amount := utils.Amount(10_000_000)

	route := network.CheapestRoute(members[8], members[6], amount)
	if route == nil {
		t.Fatalf("no route found")
	}

	hops := route.Hops()
	channels := route.Channels()
	if len(hops) != len(channels)+1 {
		t.Fatalf("hop and channel counts inconsistent")
	}

	// Every channel connects its two hops and no channel repeats.
	seen := make(map[*HyperChannel]struct{})
	for i, channel := range channels {
		if !channel.IsMember(hops[i]) || !channel.IsMember(hops[i+1]) {
			t.Fatalf("channel %v does not connect its hops", i)
		}
		if _, ok := seen[channel]; ok {
			t.Fatalf("channel appears twice on the route")
		}
		seen[channel] = struct{}{}
	}

	// Every hop's fee is defined for the amount it has to transact.
	carried := amount
	for i := len(channels) - 1; i >= 0; i-- {
		fee := channels[i].GetFee(hops[i], hops[i+1], carried, i)
		if fee < 0 {
			t.Fatalf("fee rejected at hop %v", i)
		}
		carried += fee
	}
}

func TestPerformPaymentPreservesChannelSums(t *testing.T) {
	network, members, channels := buildHyperFixture(t)

	fee, err := network.PerformPayment(members[8], members[6], 10_000_000)
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}
	if fee < 0 {
		t.Fatalf("negative total fee: %v", fee)
	}

	for i, channel := range channels {
		if channelSum(channel) != channel.FundingAmount() {
			t.Fatalf("channel %v sum diverged from funding amount", i)
		}
		for _, balance := range channel.Balances() {
			if balance < 0 {
				t.Fatalf("channel %v holds a negative balance", i)
			}
		}
	}
}

func TestPerformPaymentUnroutable(t *testing.T) {
	network, members := newTestNetwork(4)

	_, err := NewHyperChannel(network, []*Member{members[0], members[1]},
		[]utils.Amount{70_000_000, 30_000_000})
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}

	fee, err := network.PerformPayment(members[0], members[3], 1_000_000)
	if err == nil {
		t.Fatalf("unroutable payment reported success")
	}
	if fee != -1 {
		t.Fatalf("unroutable payment reported fee %v", fee)
	}
	paymentErr, ok := err.(*PaymentError)
	if !ok || paymentErr.Code != FIND_PATH_FAILED {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPerformPaymentMovesWealth(t *testing.T) {
	network, members, _ := buildHyperFixture(t)

	totalBefore := utils.Amount(0)
	for _, member := range members {
		totalBefore += member.Fortune(network)
	}
	originBefore := members[8].Fortune(network)
	destinationBefore := members[6].Fortune(network)
	amount := utils.Amount(10_000_000)

	if _, err := network.PerformPayment(members[8], members[6],
		amount); err != nil {
		t.Fatalf("faced error:%v", err)
	}

	// Channel sums are invariant, so total wealth is too; the payee
	// gains at least the payment amount and the sender loses money.
	totalAfter := utils.Amount(0)
	for _, member := range members {
		totalAfter += member.Fortune(network)
	}
	if totalBefore != totalAfter {
		t.Fatalf("total wealth changed: %v != %v", totalBefore, totalAfter)
	}
	if delta := members[6].Fortune(network) - destinationBefore; delta < amount {
		t.Fatalf("destination gained only %v of %v", delta, amount)
	}
	if delta := members[8].Fortune(network) - originBefore; delta >= 0 {
		t.Fatalf("origin wealth did not decrease: %v", delta)
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	network, members := newTestNetwork(3)

	network.AddMember(members[0])
	network.AddMember(members[0])

	if got := len(network.Members()); got != 3 {
		t.Fatalf("wrong member count: %v", got)
	}
}
