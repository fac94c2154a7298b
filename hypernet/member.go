package hypernet

import (
	"fmt"

	"github.com/hyperln/simulator/utils"
)

// Member is a participant in one or more networks. A member carries no
// intrinsic attributes; its identity is its pointer. Per network it
// keeps the insertion-ordered list of channels it belongs to, and the
// lists in different networks are independent.
type Member struct {
	networks []*HyperNetwork
	channels map[*HyperNetwork][]*HyperChannel
}

// NewMember creates a member and registers it with network.
func NewMember(network *HyperNetwork) *Member {
	m := &Member{
		channels: make(map[*HyperNetwork][]*HyperChannel),
	}
	m.AddToNetwork(network)
	return m
}

// AddToNetwork registers this member with network. Registering with a
// network the member already belongs to resets its channel list there.
func (m *Member) AddToNetwork(network *HyperNetwork) {
	if !m.BelongsTo(network) {
		m.networks = append(m.networks, network)
	}
	m.channels[network] = make([]*HyperChannel, 0)
	network.AddMember(m)
}

// BelongsTo reports whether this member is registered with network.
func (m *Member) BelongsTo(network *HyperNetwork) bool {
	for _, n := range m.networks {
		if n == network {
			return true
		}
	}
	return false
}

// Networks returns the networks this member belongs to.
func (m *Member) Networks() []*HyperNetwork {
	networks := make([]*HyperNetwork, len(m.networks))
	copy(networks, m.networks)
	return networks
}

// Channels returns the channels this member belongs to in network, in
// membership insertion order.
func (m *Member) Channels(network *HyperNetwork) []*HyperChannel {
	chs := m.networkChannels(network)
	res := make([]*HyperChannel, len(chs))
	copy(res, chs)
	return res
}

func (m *Member) networkChannels(network *HyperNetwork) []*HyperChannel {
	chs, ok := m.channels[network]
	if !ok {
		panic(fmt.Sprintf("member %p is not registered with the given network", m))
	}
	return chs
}

// Fortune returns the member's total wealth in network: the sum of its
// balances over all channels it belongs to there.
func (m *Member) Fortune(network *HyperNetwork) utils.Amount {
	fortune := utils.Amount(0)
	for _, ch := range m.networkChannels(network) {
		fortune += ch.BalanceOf(m)
	}
	return fortune
}

// MaximumReceipt returns the maximum amount this member can receive in
// network: per channel, the funding amount minus the member's balance.
func (m *Member) MaximumReceipt(network *HyperNetwork) utils.Amount {
	receipt := utils.Amount(0)
	for _, ch := range m.networkChannels(network) {
		receipt += ch.FundingAmount() - ch.BalanceOf(m)
	}
	return receipt
}

// makeMemberOfChannel records that this member belongs to channel in
// network. The channel must already list the member on its side.
func (m *Member) makeMemberOfChannel(network *HyperNetwork, channel *HyperChannel) {
	if !channel.IsMember(m) {
		panic("channel membership must be established by the channel first")
	}
	m.channels[network] = append(m.channels[network], channel)
}
