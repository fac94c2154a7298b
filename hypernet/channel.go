package hypernet

import (
	"fmt"
	"math"

	"github.com/hyperln/simulator/utils"
)

// Fee model constants. All flat amounts are in the network's base unit.
const (
	// INTAKE_PER_TX_PER_MEMBER is the flat intake each member earns per
	// transaction crossing the channel.
	INTAKE_PER_TX_PER_MEMBER = 40

	// INTAKE_BONUS_FOR_SENDER is added on top of the fee paid by the
	// origin of a transaction.
	INTAKE_BONUS_FOR_SENDER = 10_000

	// INTEREST_IN_AVAILABILITY_PER_MEMBER is the per-member component of
	// the funds-time-value.
	INTEREST_IN_AVAILABILITY_PER_MEMBER = 10

	// INV_INTEREST_PER_TX_TIME_UNIT divides a balance into its
	// per-transaction-time-unit time value.
	INV_INTEREST_PER_TX_TIME_UNIT = 12_000_000

	// DEVIATION_PENALTY weighs the change of the balance standard
	// deviation a transaction causes.
	DEVIATION_PENALTY = 1e-5
)

// HyperChannel is a payment channel shared by two or more members. It
// holds a fixed funding pool and a balance per member; the balances
// always sum to the funding amount.
type HyperChannel struct {
	network       *HyperNetwork
	members       []*Member
	balances      map[*Member]utils.Amount
	fundingAmount utils.Amount
}

// NewHyperChannel opens a channel between members with the given
// deposits and registers it with network. members and deposits must be
// equal in length, members must be at least two distinct members
// already registered with network, and deposits must be non-negative.
func NewHyperChannel(network *HyperNetwork, members []*Member,
	deposits []utils.Amount) (*HyperChannel, error) {

	if network == nil || members == nil || deposits == nil {
		return nil, fmt.Errorf("network, members and deposits must not be nil")
	}
	if len(members) != len(deposits) {
		return nil, fmt.Errorf("members and deposits must be equal in "+
			"size, but got %v members and %v deposits", len(members), len(deposits))
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("a channel needs at least 2 members, got %v",
			len(members))
	}
	for _, deposit := range deposits {
		if deposit < 0 {
			return nil, fmt.Errorf("deposits must not be negative, got %v", deposit)
		}
	}
	seen := make(map[*Member]struct{}, len(members))
	for _, member := range members {
		if _, ok := seen[member]; ok {
			return nil, fmt.Errorf("channel members must be distinct")
		}
		seen[member] = struct{}{}
		if !member.BelongsTo(network) {
			return nil, fmt.Errorf("channel members must belong to the " +
				"channel's network")
		}
	}

	c := &HyperChannel{
		network:  network,
		members:  make([]*Member, len(members)),
		balances: make(map[*Member]utils.Amount, len(members)),
	}
	copy(c.members, members)

	for i, member := range members {
		c.balances[member] = deposits[i]
		c.fundingAmount += deposits[i]
		member.makeMemberOfChannel(network, c)
	}

	network.AddChannel(c)
	return c, nil
}

// BalanceOf returns member's current balance in this channel.
func (c *HyperChannel) BalanceOf(member *Member) utils.Amount {
	if !c.IsMember(member) {
		panic("BalanceOf called for a non-member")
	}
	return c.balances[member]
}

// Balances returns a snapshot copy of the balances.
func (c *HyperChannel) Balances() map[*Member]utils.Amount {
	balances := make(map[*Member]utils.Amount, len(c.balances))
	for member, balance := range c.balances {
		balances[member] = balance
	}
	return balances
}

// Members returns the channel's members in insertion order.
func (c *HyperChannel) Members() []*Member {
	members := make([]*Member, len(c.members))
	copy(members, c.members)
	return members
}

// FundingAmount returns the total amount of money this channel controls.
func (c *HyperChannel) FundingAmount() utils.Amount {
	return c.fundingAmount
}

// NumMembers returns the number of members of this channel.
func (c *HyperChannel) NumMembers() int {
	return len(c.members)
}

// IsMember reports whether member belongs to this channel.
func (c *HyperChannel) IsMember(member *Member) bool {
	for _, m := range c.members {
		if m == member {
			return true
		}
	}
	return false
}

// MinOnChainBytes returns the minimum amount of on-chain storage, in
// bytes, required to fund this channel's wallet and distribute its
// funds back to its members.
func (c *HyperChannel) MinOnChainBytes() int {
	const (
		fixedSize            = 10
		inputSize            = 180
		signatureSize        = 73
		receivingAddressSize = 34
	)

	return fixedSize + 1*inputSize + len(c.members)*(signatureSize+receivingAddressSize)
}

// TimeValueOfFunds returns how much the members value this channel not
// being locked, per time a transaction takes per hop.
func (c *HyperChannel) TimeValueOfFunds() utils.Amount {
	return c.fundingAmount/INV_INTEREST_PER_TX_TIME_UNIT +
		utils.Amount(len(c.members))*INTEREST_IN_AVAILABILITY_PER_MEMBER
}

// balanceVector returns the balances in member insertion order.
func (c *HyperChannel) balanceVector() []utils.Amount {
	vector := make([]utils.Amount, len(c.members))
	for i, member := range c.members {
		vector[i] = c.balances[member]
	}
	return vector
}

// imbalanceCompensation weighs how much a payment of amount from origin
// to destination changes the standard deviation of the balances. The
// result is zero or negative for payments that make the channel more
// balanced; it is only negative once the weighted drop rounds to at
// least one unit.
func (c *HyperChannel) imbalanceCompensation(origin, destination *Member,
	amount utils.Amount) utils.Amount {

	before := utils.NewStatistics(c.balanceVector())

	after := make([]utils.Amount, len(c.members))
	for i, member := range c.members {
		balance := c.balances[member]
		if member == origin {
			balance -= amount
		}
		if member == destination {
			balance += amount
		}
		after[i] = balance
	}

	diff := utils.NewStatistics(after).StdDev() - before.StdDev()
	return utils.Amount(math.Floor(diff*DEVIATION_PENALTY + 0.5))
}

// feeBalanceChanges returns the balance change per member caused by the
// fees of the described payment. The origin's change is corrected by
// the negated total so the vector sums to zero.
func (c *HyperChannel) feeBalanceChanges(origin, destination *Member,
	amount utils.Amount, numHops int) map[*Member]utils.Amount {

	imbalance := c.imbalanceCompensation(origin, destination, amount)

	changes := make(map[*Member]utils.Amount, len(c.members))
	for _, member := range c.members {
		changes[member] = INTAKE_PER_TX_PER_MEMBER +
			utils.Amount(1+2*numHops)*
				(c.balances[member]/INV_INTEREST_PER_TX_TIME_UNIT+
					INTEREST_IN_AVAILABILITY_PER_MEMBER) +
			imbalance/utils.Amount(len(c.members))
	}

	sum := utils.Amount(0)
	for _, member := range c.members {
		sum += changes[member]
	}
	changes[origin] -= sum

	return changes
}

// newBalancesAfterPayment returns the balances and fee changes the
// described payment would result in, or ok == false if it would drive
// any balance negative.
func (c *HyperChannel) newBalancesAfterPayment(origin, destination *Member,
	amount utils.Amount, numHops int) (map[*Member]utils.Amount,
	map[*Member]utils.Amount, bool) {

	feeChanges := c.feeBalanceChanges(origin, destination, amount, numHops)

	newBalances := make(map[*Member]utils.Amount, len(c.members))
	for _, member := range c.members {
		newBalances[member] = c.balances[member] + feeChanges[member]
	}

	newBalances[origin] -= amount
	newBalances[destination] += amount

	for _, member := range c.members {
		if newBalances[member] < 0 {
			return nil, nil, false
		}
	}

	return newBalances, feeChanges, true
}

// GetFee returns the fee the origin pays to transact amount to
// destination through this channel, with numHops channels between this
// one and the payee (0 if the payee is in this channel). Returns -1 if
// the payment cannot be performed at any fee.
//
// The fee grows with numHops because a channel closer to the sender
// stays locked for longer.
func (c *HyperChannel) GetFee(origin, destination *Member, amount utils.Amount,
	numHops int) utils.Amount {

	if !c.IsMember(origin) || !c.IsMember(destination) {
		panic("GetFee called with a non-member")
	}

	if _, _, ok := c.newBalancesAfterPayment(origin, destination, amount,
		numHops); !ok {
		return -1
	}

	fee := -c.feeBalanceChanges(origin, destination, amount, numHops)[origin] +
		INTAKE_BONUS_FOR_SENDER
	if fee < 0 {
		return 0
	}
	return fee
}

// PerformPayment transacts amount from origin to destination through
// this channel and reports the members' fee intakes to the network.
// If the payment cannot be performed, the channel is left unchanged
// and false is returned.
func (c *HyperChannel) PerformPayment(origin, destination *Member,
	amount utils.Amount, numHops int) bool {

	if !c.IsMember(origin) || !c.IsMember(destination) {
		panic("PerformPayment called with a non-member")
	}

	newBalances, feeChanges, ok := c.newBalancesAfterPayment(origin,
		destination, amount, numHops)
	if !ok {
		return false
	}

	for _, member := range c.members {
		c.network.reportFeeIntake(member, feeChanges[member])
	}
	c.network.reportFeeIntake(origin, INTAKE_BONUS_FOR_SENDER)

	c.balances = newBalances
	return true
}
