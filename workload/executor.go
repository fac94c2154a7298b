// Package workload generates and executes seeded payment sequences
// against a network and records which payments failed and what fees
// the successful ones paid.
package workload

import (
	"fmt"
	"math/rand"

	"github.com/hyperln/simulator/hypernet"
	"github.com/hyperln/simulator/utils"
)

// Payment transfers Amount from Origin to Destination.
type Payment struct {
	Origin      *hypernet.Member
	Destination *hypernet.Member
	Amount      utils.Amount
}

// Executor generates a deterministic sequence of payments for its
// network and executes them in generation order. For equal seeds and
// equal member wealths the sequence is identical between runs.
type Executor struct {
	paymentSizeMin           utils.Amount
	paymentSizeMax           utils.Amount
	paymentSizeExponentRange float64
	minMonthlyPay            utils.Amount
	numPayments              int
	companyWealthMin         utils.Amount
	monthlyPayProbability    float64

	seed int64
	rng  *rand.Rand

	network     *hypernet.HyperNetwork
	initialized bool

	memberList     []*hypernet.Member
	companies      []*hypernet.Member
	payments       []Payment
	failedPayments []Payment
	paidFees       []utils.Amount
}

// Builder configures and creates an Executor. Setters may be used
// until Generate is called; afterwards they panic.
type Builder struct {
	executor  *Executor
	generated bool
	seed      int64
	rng       *rand.Rand
}

// NewBuilder returns an Executor builder for network, seeded with seed.
func NewBuilder(network *hypernet.HyperNetwork, seed int64) *Builder {
	return &Builder{
		executor: &Executor{
			paymentSizeMin:        2_000_000,
			paymentSizeMax:        10_000_000_000,
			minMonthlyPay:         1_500_000_000,
			numPayments:           1_000,
			companyWealthMin:      20_000_000_000,
			monthlyPayProbability: 0.02,
			network:               network,
			memberList:            network.Members(),
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

func (b *Builder) SetPaymentSizeMin(min utils.Amount) *Builder {
	b.checkSetterAvailability()
	b.executor.paymentSizeMin = min
	return b
}

func (b *Builder) SetPaymentSizeMax(max utils.Amount) *Builder {
	b.checkSetterAvailability()
	b.executor.paymentSizeMax = max
	return b
}

func (b *Builder) SetMinMonthlyPay(min utils.Amount) *Builder {
	b.checkSetterAvailability()
	b.executor.minMonthlyPay = min
	return b
}

func (b *Builder) SetNumPayments(numPayments int) *Builder {
	b.checkSetterAvailability()
	b.executor.numPayments = numPayments
	return b
}

func (b *Builder) SetCompanyWealthMin(min utils.Amount) *Builder {
	b.checkSetterAvailability()
	b.executor.companyWealthMin = min
	return b
}

func (b *Builder) SetMonthlyPayProbability(probability float64) *Builder {
	b.checkSetterAvailability()
	b.executor.monthlyPayProbability = probability
	return b
}

// Seed returns the seed this builder gives to its Executor.
func (b *Builder) Seed() int64 {
	return b.seed
}

// Generate validates the configuration and returns the built Executor.
// It may only be called once per builder.
func (b *Builder) Generate() (*Executor, error) {
	if b.generated {
		panic("Generate() may only be called once")
	}

	e := b.executor
	if e.numPayments < 0 {
		return nil, fmt.Errorf("number of payments must not be smaller than "+
			"zero, got %v", e.numPayments)
	}
	if e.numPayments != 0 && len(e.memberList) < 2 {
		return nil, fmt.Errorf("cannot execute payments on a network with " +
			"less than two members")
	}

	e.seed = b.seed
	e.rng = b.rng
	e.paymentSizeExponentRange = utils.ExponentRange(e.paymentSizeMin,
		e.paymentSizeMax)

	b.generated = true
	return e, nil
}

// Seed returns the seed this Executor uses.
func (e *Executor) Seed() int64 {
	return e.seed
}

// Init determines the payment sequence and executes it. It may only be
// called once.
func (e *Executor) Init() error {
	if e.initialized {
		return fmt.Errorf("an Executor may only be initialized once")
	}

	e.determineCompanies()
	e.determinePayments()
	e.performPayments()

	e.initialized = true
	return nil
}

// determineCompanies collects members whose initial wealth qualifies
// them as monthly-pay origins.
func (e *Executor) determineCompanies() {
	for _, member := range e.memberList {
		if member.Fortune(e.network) >= e.companyWealthMin {
			e.companies = append(e.companies, member)
		}
	}
}

func (e *Executor) randomPaymentAmount() utils.Amount {
	return utils.LogUniform(e.rng, e.paymentSizeMax, e.paymentSizeExponentRange)
}

// determinePayments generates the payment list. Origins and
// destinations are drawn uniformly, amounts log-uniformly; a payment
// is occasionally a monthly pay, which must be large and originate
// from a company. A shadow ledger keeps every generated payment
// affordable by its origin's wealth.
func (e *Executor) determinePayments() {
	fortunes := make(map[*hypernet.Member]utils.Amount, len(e.memberList))
	for _, member := range e.memberList {
		fortunes[member] = member.Fortune(e.network)
	}

	for generated := 0; generated < e.numPayments; {
		isMonthlyPay := e.rng.Float64() <= e.monthlyPayProbability

		var amount utils.Amount
		if isMonthlyPay {
			for amount = e.randomPaymentAmount(); amount < e.minMonthlyPay; amount = e.randomPaymentAmount() {
			}
		} else {
			amount = e.randomPaymentAmount()
		}

		originCandidates := e.memberList
		if isMonthlyPay && len(e.companies) > 0 {
			originCandidates = e.companies
		}
		origin := originCandidates[e.rng.Intn(len(originCandidates))]

		destination := e.memberList[e.rng.Intn(len(e.memberList))]
		for destination == origin {
			destination = e.memberList[e.rng.Intn(len(e.memberList))]
		}

		if fortunes[origin] >= amount {
			// Recipients immediately spend what they receive, so the
			// destination's shadow balance decreases as well.
			fortunes[origin] -= amount
			fortunes[destination] -= amount

			e.payments = append(e.payments, Payment{
				Origin:      origin,
				Destination: destination,
				Amount:      amount,
			})
			generated++
		}
	}
}

// performPayments executes the generated payments in order.
func (e *Executor) performPayments() {
	for _, payment := range e.payments {
		fee, err := e.network.PerformPayment(payment.Origin,
			payment.Destination, payment.Amount)
		if err != nil {
			e.failedPayments = append(e.failedPayments, payment)
			continue
		}
		e.paidFees = append(e.paidFees, fee)
	}
}

// Payments returns the generated payments in execution order.
func (e *Executor) Payments() []Payment {
	payments := make([]Payment, len(e.payments))
	copy(payments, e.payments)
	return payments
}

// PaidFees returns the fees of the successful payments in execution
// order.
func (e *Executor) PaidFees() []utils.Amount {
	fees := make([]utils.Amount, len(e.paidFees))
	copy(fees, e.paidFees)
	return fees
}

// NumFailedPayments returns how many payments were unroutable.
func (e *Executor) NumFailedPayments() int {
	return len(e.failedPayments)
}

// AverageFailedPaymentSize returns the mean amount of the failed
// payments, or 0 if none failed.
func (e *Executor) AverageFailedPaymentSize() float64 {
	if len(e.failedPayments) == 0 {
		return 0
	}

	sum := float64(0)
	for _, payment := range e.failedPayments {
		sum += float64(payment.Amount)
	}
	return sum / float64(len(e.failedPayments))
}
