package netpair

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/hyperln/simulator/hypernet"
)

func generateTestPair(t *testing.T, seed int64) *Pair {
	t.Helper()
	pair, err := NewBuilder(seed).
		SetNumMembers(100).
		SetNumClassicChannels(120).
		SetAvoidanceMinConnectivity(20).
		Generate()
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}
	if err := pair.Init(); err != nil {
		t.Fatalf("faced error:%v", err)
	}
	return pair
}

func TestEqualFortunes(t *testing.T) {
	pair, err := NewBuilder(0).Generate()
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}
	if err := pair.Init(); err != nil {
		t.Fatalf("faced error:%v", err)
	}

	cln := pair.ClassicNetwork()
	hln := pair.HyperNetwork()

	clnMembers := cln.Members()
	hlnMembers := hln.Members()
	if len(clnMembers) != len(hlnMembers) {
		t.Fatalf("member counts differ: %v != %v", len(clnMembers),
			len(hlnMembers))
	}
	for i := range clnMembers {
		if clnMembers[i] != hlnMembers[i] {
			t.Fatalf("member %v differs between the networks", i)
		}
	}

	for i, member := range clnMembers {
		if member.Fortune(cln) != member.Fortune(hln) {
			t.Fatalf("member %v has mismatching fortunes: %v != %v",
				i, member.Fortune(cln), member.Fortune(hln))
		}
	}
}

func TestClassicConstruction(t *testing.T) {
	pair := generateTestPair(t, 1)
	cln := pair.ClassicNetwork()

	if got := len(cln.Members()); got != 100 {
		t.Fatalf("wrong member count: %v", got)
	}
	if got := cln.NumChannels(); got != 120 {
		t.Fatalf("wrong channel count: %v", got)
	}

	for i, channel := range cln.Channels() {
		if channel.NumMembers() != 2 {
			t.Fatalf("classic channel %v has %v members", i,
				channel.NumMembers())
		}
		for _, balance := range channel.Balances() {
			if balance < 10_000_000 || balance > 10_000_000_000 {
				t.Fatalf("deposit %v outside the configured bounds", balance)
			}
		}
	}
}

func TestHyperChannelSizeCap(t *testing.T) {
	pair, err := NewBuilder(3).Generate()
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}
	if err := pair.Init(); err != nil {
		t.Fatalf("faced error:%v", err)
	}

	for i, channel := range pair.HyperNetwork().Channels() {
		if channel.NumMembers() < 2 || channel.NumMembers() > 30 {
			t.Fatalf("hyper channel %v has %v members", i, channel.NumMembers())
		}
	}
}

func TestDeterminism(t *testing.T) {
	pair1 := generateTestPair(t, 42)
	pair2 := generateTestPair(t, 42)

	for _, networks := range [][2]*hypernet.HyperNetwork{
		{pair1.ClassicNetwork(), pair2.ClassicNetwork()},
		{pair1.HyperNetwork(), pair2.HyperNetwork()},
	} {
		net1, net2 := networks[0], networks[1]

		if len(net1.Members()) != len(net2.Members()) {
			t.Fatalf("member counts differ")
		}

		channels1 := net1.Channels()
		channels2 := net2.Channels()
		if len(channels1) != len(channels2) {
			t.Fatalf("channel counts differ: %v != %v", len(channels1),
				len(channels2))
		}

		index1 := memberIndex(net1)
		index2 := memberIndex(net2)

		for i := range channels1 {
			members1 := channels1[i].Members()
			members2 := channels2[i].Members()
			if len(members1) != len(members2) {
				t.Fatalf("channel %v sizes differ: %v != %v", i,
					len(members1), len(members2))
			}
			for j := range members1 {
				if index1[members1[j]] != index2[members2[j]] {
					t.Fatalf("channel %v member %v differs: %v",
						i, j, spew.Sdump(index1[members1[j]],
							index2[members2[j]]))
				}
				if channels1[i].BalanceOf(members1[j]) !=
					channels2[i].BalanceOf(members2[j]) {
					t.Fatalf("channel %v balance %v differs", i, j)
				}
			}
		}
	}
}

func memberIndex(network *hypernet.HyperNetwork) map[*hypernet.Member]int {
	index := make(map[*hypernet.Member]int)
	for i, member := range network.Members() {
		index[member] = i
	}
	return index
}

func TestWealthConservedByParsimony(t *testing.T) {
	pair, err := NewBuilder(5).
		SetNumMembers(100).
		SetNumClassicChannels(120).
		SetParsimony(true).
		Generate()
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}
	if err := pair.Init(); err != nil {
		t.Fatalf("faced error:%v", err)
	}

	cln := pair.ClassicNetwork()
	hln := pair.HyperNetwork()
	for i, member := range cln.Members() {
		if member.Fortune(cln) != member.Fortune(hln) {
			t.Fatalf("member %v has mismatching fortunes under parsimony", i)
		}
	}
}

func TestTooFewChannelsRejected(t *testing.T) {
	_, err := NewBuilder(0).
		SetNumMembers(100).
		SetNumClassicChannels(50).
		Generate()
	if err == nil {
		t.Fatalf("invalid channel count accepted")
	}
}

func TestSetterAfterGeneratePanics(t *testing.T) {
	builder := NewBuilder(0).SetNumMembers(100).SetNumClassicChannels(120)
	if _, err := builder.Generate(); err != nil {
		t.Fatalf("faced error:%v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("setter after Generate() did not panic")
		}
	}()
	builder.SetNumMembers(200)
}

func TestDoubleInitRejected(t *testing.T) {
	pair := generateTestPair(t, 0)
	if err := pair.Init(); err == nil {
		t.Fatalf("second Init() accepted")
	}
}

func TestNetworkAccessBeforeInitPanics(t *testing.T) {
	pair, err := NewBuilder(0).Generate()
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("network access before Init() did not panic")
		}
	}()
	pair.ClassicNetwork()
}
