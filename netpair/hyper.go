package netpair

import (
	"math"
	"sort"

	"github.com/hyperln/simulator/hypernet"
	"github.com/hyperln/simulator/utils"
)

// protoChannel is an in-progress hyper channel description: members in
// insertion order plus their accumulated balances.
type protoChannel struct {
	members []*hypernet.Member
	assets  map[*hypernet.Member]utils.Amount
}

func newProtoChannel() *protoChannel {
	return &protoChannel{
		members: make([]*hypernet.Member, 0),
		assets:  make(map[*hypernet.Member]utils.Amount),
	}
}

func (pc *protoChannel) contains(member *hypernet.Member) bool {
	for _, m := range pc.members {
		if m == member {
			return true
		}
	}
	return false
}

// constructHyperNetwork derives the hyper network from the classic one.
// Dead-end chains are fused into channels around their connectors,
// channels at poorly connected members are contracted, proto-channels
// are greedily unified under the size cap, and everything else is
// carried over untouched. Per-member wealth is preserved throughout.
func (p *Pair) constructHyperNetwork() error {
	working := p.classic.Channels()

	// Fuse dead ends: group members with a single incident channel by
	// the member on the other side.
	connectors := make([]*hypernet.Member, 0)
	deadEndAttachments := make(map[*hypernet.Member][]*hypernet.Member)

	for _, deadEnd := range p.members {
		if p.neighborCounts[deadEnd] != 1 {
			continue
		}

		channel := deadEnd.Channels(p.classic)[0]
		working = removeChannel(working, channel)

		var connector *hypernet.Member
		for _, member := range channel.Members() {
			if member != deadEnd {
				connector = member
			}
		}

		if _, ok := deadEndAttachments[connector]; !ok {
			connectors = append(connectors, connector)
			deadEndAttachments[connector] = make([]*hypernet.Member, 0)
		}
		deadEndAttachments[connector] = append(deadEndAttachments[connector],
			deadEnd)
	}

	protoChannels := make([]*protoChannel, 0)

	for _, connector := range connectors {
		deadEnds := deadEndAttachments[connector]

		// Split the dead ends over as few proto-channels as the size cap
		// allows, each containing the connector.
		fractions := int(math.Ceil(float64(len(deadEnds)) /
			float64(p.maxChannelSize-1)))
		idealMaxSize := 1 + int(math.Ceil(float64(len(deadEnds))/
			float64(fractions)))

		idx := 0
		for idx < len(deadEnds) {
			proto := newProtoChannel()
			proto.members = append(proto.members, connector)
			proto.assets[connector] = 0
			protoChannels = append(protoChannels, proto)

			for i := 1; i < idealMaxSize && idx < len(deadEnds); i++ {
				deadEnd := deadEnds[idx]
				idx++

				channel := deadEnd.Channels(p.classic)[0]
				proto.members = append(proto.members, deadEnd)
				proto.assets[deadEnd] = channel.BalanceOf(deadEnd)
				proto.assets[connector] += channel.BalanceOf(connector)
			}
		}
	}

	protoChannels = p.unifyProtoChannels(protoChannels)

	if !p.parsimony {
		// Contract paths: any remaining channel with a poorly connected
		// endpoint becomes a proto-channel. Connectivity is measured
		// against the untouched classic network, not the shrinking
		// working set.
		kept := make([]*hypernet.HyperChannel, 0, len(working))
		for _, channel := range working {
			members := channel.Members()
			member1, member2 := members[0], members[1]

			if len(member1.Channels(p.classic)) < p.avoidanceMinConnectivity ||
				len(member2.Channels(p.classic)) < p.avoidanceMinConnectivity {

				proto := newProtoChannel()
				proto.members = append(proto.members, member1, member2)
				proto.assets[member1] = channel.BalanceOf(member1)
				proto.assets[member2] = channel.BalanceOf(member2)
				protoChannels = append(protoChannels, proto)
				continue
			}
			kept = append(kept, channel)
		}
		working = kept

		protoChannels = p.unifyProtoChannels(protoChannels)
	}

	// Carry over what is left as two-member channels.
	for _, channel := range working {
		members := channel.Members()
		member1, member2 := members[0], members[1]

		proto := newProtoChannel()
		proto.members = append(proto.members, member1, member2)
		proto.assets[member1] = channel.BalanceOf(member1)
		proto.assets[member2] = channel.BalanceOf(member2)
		protoChannels = append(protoChannels, proto)
	}

	p.hyper = hypernet.NewHyperNetwork()
	p.hyper.AddMembers(p.members)

	for _, proto := range protoChannels {
		deposits := make([]utils.Amount, len(proto.members))
		for i, member := range proto.members {
			deposits[i] = proto.assets[member]
		}
		if _, err := hypernet.NewHyperChannel(p.hyper, proto.members,
			deposits); err != nil {
			return err
		}
	}

	return nil
}

// unifyProtoChannels greedily merges proto-channels under the size cap:
// the smallest is merged into the largest it fits into, repeatedly,
// until the smallest fits nowhere. Balances of shared members are
// summed. This is a best-fit pass, not a global optimum.
func (p *Pair) unifyProtoChannels(protoChannels []*protoChannel) []*protoChannel {
	sort.SliceStable(protoChannels, func(i, j int) bool {
		return len(protoChannels[i].members) < len(protoChannels[j].members)
	})

	if len(protoChannels) == 0 {
		return protoChannels
	}

outer:
	for {
		smallest := protoChannels[0]

		for i := len(protoChannels) - 1; i >= 0; i-- {
			larger := protoChannels[i]
			if larger == smallest {
				break outer
			}

			if len(smallest.members)+len(larger.members) <= p.maxChannelSize {
				protoChannels = protoChannels[1:]

				for _, member := range smallest.members {
					if !larger.contains(member) {
						larger.members = append(larger.members, member)
					}
					larger.assets[member] += smallest.assets[member]
				}
				break
			}
		}
	}

	return protoChannels
}

// removeChannel removes the first occurrence of channel from channels,
// preserving order.
func removeChannel(channels []*hypernet.HyperChannel,
	channel *hypernet.HyperChannel) []*hypernet.HyperChannel {

	for i, c := range channels {
		if c == channel {
			return append(channels[:i:i], channels[i+1:]...)
		}
	}
	return channels
}
