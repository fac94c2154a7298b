package hypernet

import "github.com/hyperln/simulator/utils"

// PaymentRoute is a path through the network: hops[0] is the sender,
// hops[len-1] the payee, and channels[i] connects hops[i] with
// hops[i+1]. A channel never appears twice on the same route.
type PaymentRoute struct {
	hops     []*Member
	channels []*HyperChannel
}

func NewPaymentRoute(hops []*Member, channels []*HyperChannel) *PaymentRoute {
	r := &PaymentRoute{
		hops:     make([]*Member, len(hops)),
		channels: make([]*HyperChannel, len(channels)),
	}
	copy(r.hops, hops)
	copy(r.channels, channels)
	return r
}

// Hops returns the members this route passes through, sender first.
func (r *PaymentRoute) Hops() []*Member {
	hops := make([]*Member, len(r.hops))
	copy(hops, r.hops)
	return hops
}

// Channels returns the channels this route passes through, ordered
// from the sender's side to the payee's side.
func (r *PaymentRoute) Channels() []*HyperChannel {
	channels := make([]*HyperChannel, len(r.channels))
	copy(channels, r.channels)
	return channels
}

// TotalFees returns the sum of the fees due on this route when the
// payee receives amount. The sender pays amount plus this sum.
func (r *PaymentRoute) TotalFees(amount utils.Amount) utils.Amount {
	sum := utils.Amount(0)

	// Walk from the payee towards the sender; every channel has to
	// transact the downstream fees on top of the payee's amount.
	for i := len(r.channels) - 1; i >= 0; i-- {
		fee := r.channels[i].GetFee(r.hops[i], r.hops[i+1], amount, i)
		sum += fee
		amount += fee
	}

	return sum
}
