package hypernet

import (
	"fmt"
	"strings"

	"github.com/hyperln/simulator/utils"
)

// HyperNetwork owns members and channels. All of its collections
// iterate in insertion order; this is what makes seeded simulations
// reproducible.
type HyperNetwork struct {
	members    []*Member
	memberSet  map[*Member]struct{}
	channels   []*HyperChannel
	channelSet map[*HyperChannel]struct{}
	feeIntakes map[*Member]utils.Amount
}

func NewHyperNetwork() *HyperNetwork {
	return &HyperNetwork{
		members:    make([]*Member, 0),
		memberSet:  make(map[*Member]struct{}),
		channels:   make([]*HyperChannel, 0),
		channelSet: make(map[*HyperChannel]struct{}),
		feeIntakes: make(map[*Member]utils.Amount),
	}
}

// AddMember registers member with this network. Adding a member twice
// is a no-op.
func (n *HyperNetwork) AddMember(member *Member) {
	if !member.BelongsTo(n) {
		member.AddToNetwork(n)
	}

	if _, ok := n.memberSet[member]; !ok {
		n.members = append(n.members, member)
		n.memberSet[member] = struct{}{}
		n.feeIntakes[member] = 0
	}
}

// AddMembers registers all of members in order.
func (n *HyperNetwork) AddMembers(members []*Member) {
	for _, member := range members {
		n.AddMember(member)
	}
}

// AddChannel registers channel with this network. Adding a channel
// twice is a no-op.
func (n *HyperNetwork) AddChannel(channel *HyperChannel) {
	if _, ok := n.channelSet[channel]; !ok {
		n.channels = append(n.channels, channel)
		n.channelSet[channel] = struct{}{}
	}
}

// Members returns the network's members in insertion order.
func (n *HyperNetwork) Members() []*Member {
	members := make([]*Member, len(n.members))
	copy(members, n.members)
	return members
}

// Channels returns the network's channels in insertion order.
func (n *HyperNetwork) Channels() []*HyperChannel {
	channels := make([]*HyperChannel, len(n.channels))
	copy(channels, n.channels)
	return channels
}

// FeeIntakes returns a snapshot of how much each member made or lost
// due to fees.
func (n *HyperNetwork) FeeIntakes() map[*Member]utils.Amount {
	intakes := make(map[*Member]utils.Amount, len(n.feeIntakes))
	for member, intake := range n.feeIntakes {
		intakes[member] = intake
	}
	return intakes
}

// reportFeeIntake credits member's fee ledger by amount. amount may be
// negative.
func (n *HyperNetwork) reportFeeIntake(member *Member, amount utils.Amount) {
	n.feeIntakes[member] += amount
}

// NumChannels returns the number of channels in this network.
func (n *HyperNetwork) NumChannels() int {
	return len(n.channels)
}

// NumChannelMemberships returns the sum of the membership counts of
// all channels.
func (n *HyperNetwork) NumChannelMemberships() int {
	sum := 0
	for _, channel := range n.channels {
		sum += channel.NumMembers()
	}
	return sum
}

// NumClassicChannels returns the number of two-member channels.
func (n *HyperNetwork) NumClassicChannels() int {
	count := 0
	for _, channel := range n.channels {
		if channel.NumMembers() == 2 {
			count++
		}
	}
	return count
}

// NumProperHyperChannels returns the number of channels with more than
// two members.
func (n *HyperNetwork) NumProperHyperChannels() int {
	count := 0
	for _, channel := range n.channels {
		if channel.NumMembers() > 2 {
			count++
		}
	}
	return count
}

// PerformPayment routes a payment of amount from origin to destination
// along the cheapest feasible route and settles it channel by channel,
// payee side first. It returns the total fee the origin paid on top of
// amount. If no route exists, the fee is -1, a FIND_PATH_FAILED error
// is returned and the network is left unchanged.
func (n *HyperNetwork) PerformPayment(origin, destination *Member,
	amount utils.Amount) (utils.Amount, error) {

	route := n.CheapestRoute(origin, destination, amount)
	if route == nil {
		return -1, &PaymentError{
			Code:        FIND_PATH_FAILED,
			Description: "no feasible payment route",
		}
	}

	fees := route.TotalFees(amount)
	amount += fees

	channels := route.Channels()
	hops := route.Hops()

	// amount starts as the payee's amount plus all route fees. Walking
	// from the payee side, each channel's fee is quoted on the amount
	// still carried and taken off before that channel transacts, so
	// channel i moves the total minus the fees of channel i and of every
	// channel between it and the payee, i.e. the payee's amount plus the
	// fees of the channels on the sender's side of channel i.
	for i := len(channels) - 1; i >= 0; i-- {
		channel := channels[i]
		in := hops[i]
		out := hops[i+1]

		fee := channel.GetFee(in, out, amount, i)
		amount -= fee

		channel.PerformPayment(in, out, amount, i)
	}

	return fees, nil
}

// String lists the network's channels and their members.
func (n *HyperNetwork) String() string {
	memberNumbers := make(map[*Member]int, len(n.members))
	for i, member := range n.members {
		memberNumbers[member] = i + 1
	}

	var b strings.Builder
	for i, channel := range n.channels {
		fmt.Fprintf(&b, "C%d:\t", i+1)
		for j, member := range channel.Members() {
			if j > 0 {
				b.WriteString(",\t")
			}
			fmt.Fprintf(&b, "M%d", memberNumbers[member])
		}
		b.WriteString("\n")
	}
	return b.String()
}
