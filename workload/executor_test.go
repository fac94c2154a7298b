package workload

import (
	"testing"

	"github.com/hyperln/simulator/hypernet"
	"github.com/hyperln/simulator/netpair"
	"github.com/hyperln/simulator/utils"
)

func generateDefaultPair(t *testing.T, seed int64) *netpair.Pair {
	t.Helper()
	pair, err := netpair.NewBuilder(seed).Generate()
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}
	if err := pair.Init(); err != nil {
		t.Fatalf("faced error:%v", err)
	}
	return pair
}

func runWorkload(t *testing.T, network *hypernet.HyperNetwork, seed int64,
	numPayments int) *Executor {

	t.Helper()
	executor, err := NewBuilder(network, seed).
		SetNumPayments(numPayments).
		Generate()
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}
	if err := executor.Init(); err != nil {
		t.Fatalf("faced error:%v", err)
	}
	return executor
}

func validateChannelSums(t *testing.T, network *hypernet.HyperNetwork) {
	t.Helper()
	for i, channel := range network.Channels() {
		sum := utils.Amount(0)
		for _, balance := range channel.Balances() {
			sum += balance
		}
		if sum != channel.FundingAmount() {
			t.Fatalf("channel %v sum %v diverged from funding amount %v",
				i, sum, channel.FundingAmount())
		}
	}
}

func TestWorkloadPreservesChannelSums(t *testing.T) {
	pair := generateDefaultPair(t, 0)

	for _, network := range []*hypernet.HyperNetwork{
		pair.ClassicNetwork(), pair.HyperNetwork(),
	} {
		validateChannelSums(t, network)
		runWorkload(t, network, 0, 100)
		validateChannelSums(t, network)
	}
}

func TestWorkloadRecordsOutcomes(t *testing.T) {
	pair := generateDefaultPair(t, 0)

	executor := runWorkload(t, pair.HyperNetwork(), 0, 100)

	if got := len(executor.Payments()); got != 100 {
		t.Fatalf("generated %v payments instead of 100", got)
	}
	if len(executor.PaidFees())+executor.NumFailedPayments() != 100 {
		t.Fatalf("outcome counts inconsistent: %v paid, %v failed",
			len(executor.PaidFees()), executor.NumFailedPayments())
	}
	for i, fee := range executor.PaidFees() {
		if fee < 0 {
			t.Fatalf("negative fee %v recorded at %v", fee, i)
		}
	}
}

func TestWorkloadDeterminism(t *testing.T) {
	pair1 := generateDefaultPair(t, 7)
	pair2 := generateDefaultPair(t, 7)

	executor1 := runWorkload(t, pair1.HyperNetwork(), 7, 50)
	executor2 := runWorkload(t, pair2.HyperNetwork(), 7, 50)

	index1 := memberIndex(pair1.HyperNetwork())
	index2 := memberIndex(pair2.HyperNetwork())

	payments1 := executor1.Payments()
	payments2 := executor2.Payments()
	if len(payments1) != len(payments2) {
		t.Fatalf("payment counts differ")
	}
	for i := range payments1 {
		if payments1[i].Amount != payments2[i].Amount ||
			index1[payments1[i].Origin] != index2[payments2[i].Origin] ||
			index1[payments1[i].Destination] != index2[payments2[i].Destination] {
			t.Fatalf("payment %v differs between runs", i)
		}
	}

	fees1 := executor1.PaidFees()
	fees2 := executor2.PaidFees()
	if len(fees1) != len(fees2) {
		t.Fatalf("paid fee counts differ")
	}
	for i := range fees1 {
		if fees1[i] != fees2[i] {
			t.Fatalf("fee %v differs between runs: %v != %v", i, fees1[i],
				fees2[i])
		}
	}
	if executor1.NumFailedPayments() != executor2.NumFailedPayments() {
		t.Fatalf("failure counts differ")
	}
}

func TestPaymentsRespectInitialWealth(t *testing.T) {
	pair := generateDefaultPair(t, 3)
	network := pair.HyperNetwork()

	initial := make(map[*hypernet.Member]utils.Amount)
	for _, member := range network.Members() {
		initial[member] = member.Fortune(network)
	}

	executor, err := NewBuilder(network, 3).SetNumPayments(200).Generate()
	if err != nil {
		t.Fatalf("faced error:%v", err)
	}
	if err := executor.Init(); err != nil {
		t.Fatalf("faced error:%v", err)
	}

	// The shadow ledger admits a payment only while its origin's balance
	// covers it, so per origin the admitted amounts never exceed the
	// initial wealth.
	spent := make(map[*hypernet.Member]utils.Amount)
	for _, payment := range executor.Payments() {
		spent[payment.Origin] += payment.Amount
	}
	for origin, amount := range spent {
		if amount > initial[origin] {
			t.Fatalf("origin spent %v of an initial wealth of %v",
				amount, initial[origin])
		}
	}
}

func TestSetterAfterGeneratePanics(t *testing.T) {
	pair := generateDefaultPair(t, 0)

	builder := NewBuilder(pair.ClassicNetwork(), 0).SetNumPayments(10)
	if _, err := builder.Generate(); err != nil {
		t.Fatalf("faced error:%v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("setter after Generate() did not panic")
		}
	}()
	builder.SetNumPayments(20)
}

func TestDoubleInitRejected(t *testing.T) {
	pair := generateDefaultPair(t, 0)

	executor := runWorkload(t, pair.ClassicNetwork(), 0, 10)
	if err := executor.Init(); err == nil {
		t.Fatalf("second Init() accepted")
	}
}

func memberIndex(network *hypernet.HyperNetwork) map[*hypernet.Member]int {
	index := make(map[*hypernet.Member]int)
	for i, member := range network.Members() {
		index[member] = i
	}
	return index
}
