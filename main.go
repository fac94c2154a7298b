package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/hyperln/simulator/hypernet"
	"github.com/hyperln/simulator/netpair"
	"github.com/hyperln/simulator/utils"
)

func main() {

	app := cli.NewApp()
	app.Name = "hyperln-sim"
	app.Usage = "compare classic and hyper payment-channel networks"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "experiment",
			Value: "stats",
			Usage: "experiment to run: stats, graphml, hypergraphml, fees, intakes, compare, sweep",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 0,
			Usage: "seed for network generation and workloads",
		},
		cli.IntFlag{
			Name:  "members",
			Value: 1_000,
			Usage: "number of members per network",
		},
		cli.IntFlag{
			Name:  "channels",
			Value: 1_200,
			Usage: "number of channels in the classic network",
		},
		cli.IntFlag{
			Name:  "max-channel-size",
			Value: 30,
			Usage: "maximum number of members per hyper channel",
		},
		cli.IntFlag{
			Name:  "min-connectivity",
			Value: 5,
			Usage: "connectivity at which channels are no longer contracted",
		},
		cli.BoolFlag{
			Name:  "parsimony",
			Usage: "keep the number of hyper channels low (skip path contraction)",
		},
		cli.IntFlag{
			Name:  "payments",
			Value: 1_000,
			Usage: "number of payments per workload",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a TOML config file overriding the flags",
		},
	}

	app.Action = func(c *cli.Context) error {
		cfg := &Config{
			Experiment:             c.String("experiment"),
			Seed:                   c.Int64("seed"),
			NumMembers:             c.Int("members"),
			NumClassicChannels:     c.Int("channels"),
			MaxChannelSize:         c.Int("max-channel-size"),
			MinConnectivity:        c.Int("min-connectivity"),
			Parsimony:              c.Bool("parsimony"),
			FundingContributionMin: 10_000_000,
			FundingContributionMax: 10_000_000_000,
			NumPayments:            c.Int("payments"),
		}
		if path := c.String("config"); path != "" {
			if err := loadConfig(path, cfg); err != nil {
				return err
			}
		}

		switch cfg.Experiment {
		case "stats":
			return runStats(cfg)
		case "graphml":
			return runGraphML(cfg, false)
		case "hypergraphml":
			return runGraphML(cfg, true)
		case "fees":
			return runFees(cfg)
		case "intakes":
			return runIntakes(cfg)
		case "compare":
			return runCompare(cfg)
		case "sweep":
			return runSweep(cfg)
		default:
			return fmt.Errorf("unknown experiment %q", cfg.Experiment)
		}
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// buildPair generates and initializes a network pair per cfg.
func buildPair(cfg *Config) (*netpair.Pair, error) {
	pair, err := netpair.NewBuilder(cfg.Seed).
		SetNumMembers(cfg.NumMembers).
		SetNumClassicChannels(cfg.NumClassicChannels).
		SetMaxChannelSize(cfg.MaxChannelSize).
		SetAvoidanceMinConnectivity(cfg.MinConnectivity).
		SetParsimony(cfg.Parsimony).
		SetFundingContributionMin(utils.Amount(cfg.FundingContributionMin)).
		SetFundingContributionMax(utils.Amount(cfg.FundingContributionMax)).
		Generate()
	if err != nil {
		return nil, err
	}
	if err := pair.Init(); err != nil {
		return nil, err
	}
	return pair, nil
}

func runStats(cfg *Config) error {
	pair, err := buildPair(cfg)
	if err != nil {
		return err
	}

	fmt.Println("CLN")
	fmt.Println(pair.ClassicNetwork().Stats())
	fmt.Println("HLN")
	fmt.Println(pair.HyperNetwork().Stats())
	return nil
}

func runGraphML(cfg *Config, hyperedges bool) error {
	pair, err := buildPair(cfg)
	if err != nil {
		return err
	}

	if hyperedges {
		fmt.Println(pair.ClassicNetwork().ToGraphML())
		fmt.Println(pair.HyperNetwork().ToGraphML())
	} else {
		fmt.Println(pair.ClassicNetwork().ToGraphMLWithCliques())
		fmt.Println(pair.HyperNetwork().ToGraphMLWithCliques())
	}
	return nil
}

func runFees(cfg *Config) error {
	pair, err := buildPair(cfg)
	if err != nil {
		return err
	}

	logger := initLogger()
	if _, err := workloadEval(logger, "classic", pair.ClassicNetwork(),
		cfg.Seed, cfg.NumPayments); err != nil {
		return err
	}
	if _, err := workloadEval(logger, "hyper", pair.HyperNetwork(),
		cfg.Seed, cfg.NumPayments); err != nil {
		return err
	}
	return nil
}

func runIntakes(cfg *Config) error {
	pair, err := buildPair(cfg)
	if err != nil {
		return err
	}

	logger := initLogger()
	cln := pair.ClassicNetwork()
	hln := pair.HyperNetwork()
	if _, err := workloadEval(logger, "classic", cln, cfg.Seed,
		cfg.NumPayments); err != nil {
		return err
	}
	if _, err := workloadEval(logger, "hyper", hln, cfg.Seed,
		cfg.NumPayments); err != nil {
		return err
	}

	clnIntakes := cln.FeeIntakes()
	hlnIntakes := hln.FeeIntakes()
	for _, member := range cln.Members() {
		fmt.Printf("%v\t%v\n", float64(clnIntakes[member])/1_000_000,
			float64(hlnIntakes[member])/1_000_000)
	}
	return nil
}

func runCompare(cfg *Config) error {
	pair, err := buildPair(cfg)
	if err != nil {
		return err
	}

	parsimonyCfg := *cfg
	parsimonyCfg.Parsimony = true
	parsimonyPair, err := buildPair(&parsimonyCfg)
	if err != nil {
		return err
	}

	fmt.Println(pair.ClassicNetwork().Stats())
	fmt.Println(pair.HyperNetwork().Stats())
	fmt.Println(parsimonyPair.HyperNetwork().Stats())

	logger := initLogger()
	networks := []struct {
		name string
		net  *hypernet.HyperNetwork
	}{
		{"classic", pair.ClassicNetwork()},
		{"hyper", pair.HyperNetwork()},
		{"hyper-parsimony", parsimonyPair.HyperNetwork()},
	}
	for _, entry := range networks {
		if _, err := workloadEval(logger, entry.name, entry.net, cfg.Seed,
			cfg.NumPayments); err != nil {
			return err
		}
	}
	return nil
}

func runSweep(cfg *Config) error {
	printedClassic := false

	for maxChannelSize := 3; maxChannelSize <= 40; maxChannelSize++ {
		sweepCfg := *cfg
		sweepCfg.MaxChannelSize = maxChannelSize
		pair, err := buildPair(&sweepCfg)
		if err != nil {
			return err
		}

		if !printedClassic {
			fmt.Println("CLN")
			fmt.Println(pair.ClassicNetwork().Stats())
			printedClassic = true
		}

		fmt.Println(maxChannelSize)
		fmt.Println(pair.HyperNetwork().Stats())
	}
	return nil
}
