// Package netpair deterministically generates pairs of payment
// networks from a seed: a scale-free classic network in which every
// channel has exactly two members, and a hyper network derived from it
// in which channels may pool up to a configured number of members while
// every member keeps the same wealth.
package netpair

import (
	"fmt"
	"math/rand"

	"github.com/hyperln/simulator/hypernet"
	"github.com/hyperln/simulator/utils"
)

// Pair holds a generated classic network and the hyper network derived
// from it.
type Pair struct {
	fundingContributionMin           utils.Amount
	fundingContributionMax           utils.Amount
	fundingContributionExponentRange float64
	maxChannelSize                   int
	numMembers                       int
	numClassicChannels               int
	avoidanceMinConnectivity         int
	parsimony                        bool

	seed int64
	rng  *rand.Rand

	initialized bool
	classic     *hypernet.HyperNetwork
	hyper       *hypernet.HyperNetwork

	members []*hypernet.Member
	// neighborCounts tracks per member the number of incident channels
	// in the classic network. A member with exactly one is a dead end.
	neighborCounts map[*hypernet.Member]int
}

// Builder configures and creates a Pair. Setters may be used until
// Generate is called; afterwards they panic.
type Builder struct {
	pair      *Pair
	generated bool
	seed      int64
	rng       *rand.Rand
}

// NewBuilder returns a Pair builder seeded with seed.
func NewBuilder(seed int64) *Builder {
	return &Builder{
		pair: &Pair{
			fundingContributionMin:   10_000_000,
			fundingContributionMax:   10_000_000_000,
			maxChannelSize:           30,
			numMembers:               1_000,
			numClassicChannels:       1_200,
			avoidanceMinConnectivity: 5,
		},
		seed: seed,
		rng:  utils.NewRand(seed),
	}
}

func (b *Builder) checkSetterAvailability() {
	if b.generated {
		panic("setters may not be used on Builder after Generate() has been called")
	}
}

func (b *Builder) SetFundingContributionMin(min utils.Amount) *Builder {
	b.checkSetterAvailability()
	b.pair.fundingContributionMin = min
	return b
}

func (b *Builder) SetFundingContributionMax(max utils.Amount) *Builder {
	b.checkSetterAvailability()
	b.pair.fundingContributionMax = max
	return b
}

func (b *Builder) SetNumMembers(numMembers int) *Builder {
	b.checkSetterAvailability()
	b.pair.numMembers = numMembers
	return b
}

func (b *Builder) SetNumClassicChannels(numClassicChannels int) *Builder {
	b.checkSetterAvailability()
	b.pair.numClassicChannels = numClassicChannels
	return b
}

func (b *Builder) SetMaxChannelSize(maxChannelSize int) *Builder {
	b.checkSetterAvailability()
	b.pair.maxChannelSize = maxChannelSize
	return b
}

func (b *Builder) SetAvoidanceMinConnectivity(minConnectivity int) *Builder {
	b.checkSetterAvailability()
	b.pair.avoidanceMinConnectivity = minConnectivity
	return b
}

func (b *Builder) SetParsimony(parsimony bool) *Builder {
	b.checkSetterAvailability()
	b.pair.parsimony = parsimony
	return b
}

// Generate validates the configuration and returns the built Pair.
// It may only be called once per builder.
func (b *Builder) Generate() (*Pair, error) {
	if b.generated {
		panic("Generate() may only be called once")
	}

	p := b.pair
	if p.numMembers < 2 {
		return nil, fmt.Errorf("a network needs at least 2 members, got %v",
			p.numMembers)
	}
	if p.numClassicChannels < p.numMembers-1 {
		return nil, fmt.Errorf("number of classic channels (%v) may not be "+
			"smaller than number of members minus 1 (%v)",
			p.numClassicChannels, p.numMembers-1)
	}
	if p.maxChannelSize < 2 {
		return nil, fmt.Errorf("maximum channel size must be at least 2, got %v",
			p.maxChannelSize)
	}
	if p.fundingContributionMin <= 0 || p.fundingContributionMax < p.fundingContributionMin {
		return nil, fmt.Errorf("invalid funding contribution bounds [%v, %v]",
			p.fundingContributionMin, p.fundingContributionMax)
	}

	p.seed = b.seed
	p.rng = b.rng
	p.fundingContributionExponentRange = utils.ExponentRange(
		p.fundingContributionMin, p.fundingContributionMax)

	b.generated = true
	return p, nil
}

// Seed returns the seed this pair was generated from.
func (p *Pair) Seed() int64 {
	return p.seed
}

// Init generates both networks. It may only be called once.
func (p *Pair) Init() error {
	if p.initialized {
		return fmt.Errorf("a Pair may only be initialized once")
	}

	p.constructClassicNetwork()
	if err := p.constructHyperNetwork(); err != nil {
		return err
	}

	p.initialized = true
	return nil
}

// ClassicNetwork returns the generated classic network. The pair must
// be initialized.
func (p *Pair) ClassicNetwork() *hypernet.HyperNetwork {
	if !p.initialized {
		panic("ClassicNetwork() may only be called on initialized Pairs")
	}
	return p.classic
}

// HyperNetwork returns the generated hyper network. The pair must be
// initialized.
func (p *Pair) HyperNetwork() *hypernet.HyperNetwork {
	if !p.initialized {
		panic("HyperNetwork() may only be called on initialized Pairs")
	}
	return p.hyper
}

func (p *Pair) randomFundingContribution() utils.Amount {
	return utils.LogUniform(p.rng, p.fundingContributionMax,
		p.fundingContributionExponentRange)
}

// constructClassicNetwork builds a scale-free network by preferential
// attachment: each new channel connects the next queued member to a
// partner drawn uniformly from a multiset in which every member occurs
// once per channel it already belongs to.
func (p *Pair) constructClassicNetwork() {
	p.classic = hypernet.NewHyperNetwork()
	p.members = make([]*hypernet.Member, 0, p.numMembers)
	p.neighborCounts = make(map[*hypernet.Member]int, p.numMembers)
	attachments := make([]*hypernet.Member, 0, 2*p.numClassicChannels)

	for i := 0; i < p.numMembers; i++ {
		member := hypernet.NewMember(p.classic)
		p.members = append(p.members, member)
		p.neighborCounts[member] = 0
	}

	memberQueue := make([]*hypernet.Member, len(p.members))
	copy(memberQueue, p.members)

	member1 := memberQueue[0]
	member2 := memberQueue[1]
	memberQueue = memberQueue[2:]

	contribution1 := p.randomFundingContribution()
	contribution2 := p.randomFundingContribution()
	p.openClassicChannel(member1, member2, contribution1, contribution2)
	attachments = append(attachments, member1, member2)

	for opened := 1; opened < p.numClassicChannels; opened++ {
		if len(memberQueue) == 0 {
			memberQueue = make([]*hypernet.Member, len(p.members))
			copy(memberQueue, p.members)
		}

		member := memberQueue[0]
		memberQueue = memberQueue[1:]

		var partner *hypernet.Member
		for partner == nil || partner == member {
			partner = attachments[p.rng.Intn(len(attachments))]
		}

		memberContribution := p.randomFundingContribution()
		partnerContribution := p.randomFundingContribution()
		p.openClassicChannel(member, partner, memberContribution,
			partnerContribution)
		attachments = append(attachments, member, partner)
	}
}

func (p *Pair) openClassicChannel(member, partner *hypernet.Member,
	memberContribution, partnerContribution utils.Amount) {

	_, err := hypernet.NewHyperChannel(p.classic,
		[]*hypernet.Member{member, partner},
		[]utils.Amount{memberContribution, partnerContribution})
	if err != nil {
		// Contributions are sampled non-negative and both members are
		// registered, so this is an internal invariant violation.
		panic(err)
	}

	p.neighborCounts[member]++
	p.neighborCounts[partner]++
}
