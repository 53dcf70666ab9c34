package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/app"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/store"
	"github.com/iov-one/yieldshift/x/cash"
	"github.com/iov-one/yieldshift/x/sources"
	"gopkg.in/yaml.v3"
)

func cmdSimulate(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Replay a scenario against an in memory engine and print the allocation trace.

The scenario is a YAML document read from the given file or from stdin.
`)
		fl.PrintDefaults()
	}
	var (
		fileFl = fl.String("scenario", "", "Path to the scenario file. Stdin is read if not provided.")
	)
	fl.Parse(args)

	if *fileFl != "" {
		fd, err := os.Open(*fileFl)
		if err != nil {
			return fmt.Errorf("cannot open scenario: %s", err)
		}
		defer fd.Close()
		input = fd
	}
	var sc scenario
	if err := yaml.NewDecoder(input).Decode(&sc); err != nil {
		return fmt.Errorf("cannot decode scenario: %s", err)
	}
	return runScenario(output, sc)
}

// scenario describes a simulation. Parameters left out keep their defaults.
type scenario struct {
	Start  time.Time      `yaml:"start"`
	Params scenarioParams `yaml:"params"`
	Steps  []scenarioStep `yaml:"steps"`
}

type scenarioParams struct {
	BaseBps        uint32 `yaml:"base_bps"`
	MaxBps         uint32 `yaml:"max_bps"`
	StepBps        uint32 `yaml:"step_bps"`
	TargetRatioBps uint32 `yaml:"target_ratio_bps"`
	TWAPPeriod     string `yaml:"twap_period"`
}

// scenarioStep sets the pool sizes and runs the action Repeat times, Every
// apart. The first run happens After the previous step.
type scenarioStep struct {
	After      string `yaml:"after"`
	Every      string `yaml:"every"`
	Repeat     int    `yaml:"repeat"`
	Action     string `yaml:"action"`
	UserPool   uint64 `yaml:"user_pool"`
	HedgerPool uint64 `yaml:"hedger_pool"`
	Amount     uint64 `yaml:"amount"`
}

func parseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "invalid duration %q", raw)
	}
	return d, nil
}

// simPools serves the pool sizes set by the scenario.
type simPools struct {
	user, hedger yieldshift.Amount
}

func (p *simPools) UserPoolSize(context.Context, yieldshift.ReadOnlyKVStore) (yieldshift.Amount, error) {
	return yieldshift.NormAmount(p.user), nil
}

func (p *simPools) HedgerPoolSize(context.Context, yieldshift.ReadOnlyKVStore) (yieldshift.Amount, error) {
	return yieldshift.NormAmount(p.hedger), nil
}

const simCategory = "sim"

var (
	simOperator = yieldshift.NewAddress([]byte("operator"))
	simSource   = yieldshift.NewAddress([]byte("source"))
	simCustody  = yieldshift.NewAddress([]byte("custody"))
)

func runScenario(out io.Writer, sc scenario) error {
	if sc.Start.IsZero() {
		return errors.Field("Start", errors.ErrEmpty, "scenario start time required")
	}
	db := store.MemStore()
	gen, err := app.DefaultGenesis(yieldshift.AsUnixTime(sc.Start),
		yieldshift.NewAddress([]byte("user pool")),
		yieldshift.NewAddress([]byte("hedger pool")))
	if err != nil {
		return err
	}
	gen.Sources = []sources.Authorization{{Source: simSource, Category: simCategory}}
	gen.Wallets = []app.GenesisWallet{{Address: simSource, Balance: yieldshift.NewAmount(1 << 62)}}
	if err := app.InitGenesis(db, gen); err != nil {
		return err
	}

	auth := make(yieldshift.StaticRoles).
		Grant(yieldshift.RoleGovernance, simOperator).
		Grant(yieldshift.RoleEmergency, simOperator)
	pools := &simPools{}
	engine, err := app.NewEngine(app.Config{
		Store: db,
		Auth:  auth,
		Pools: pools,
		Funds: cash.NewCustody(cash.NewController(), simCustody),
	})
	if err != nil {
		return err
	}

	now := sc.Start
	if err := applyParams(engine, now, sc.Params); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tUSER\tHEDGER\tRATIO\tOPTIMAL\tALLOCATION\tPHASE")
	for i, step := range sc.Steps {
		after, err := parseDuration(step.After)
		if err != nil {
			return errors.Wrapf(err, "step %d", i)
		}
		every, err := parseDuration(step.Every)
		if err != nil {
			return errors.Wrapf(err, "step %d", i)
		}
		pools.user = yieldshift.NewAmount(step.UserPool)
		pools.hedger = yieldshift.NewAmount(step.HedgerPool)

		now = now.Add(after)
		repeat := step.Repeat
		if repeat < 1 {
			repeat = 1
		}
		for r := 0; r < repeat; r++ {
			if r > 0 {
				now = now.Add(every)
			}
			ctx := yieldshift.WithBlockTime(context.Background(), now)
			if err := runAction(ctx, tw, engine, step, now); err != nil {
				return errors.Wrapf(err, "step %d", i)
			}
		}
	}
	return tw.Flush()
}

func applyParams(e *app.Engine, now time.Time, sp scenarioParams) error {
	ctx := yieldshift.WithBlockTime(context.Background(), now)
	p, err := e.Params()
	if err != nil {
		return err
	}
	base, max, step := p.BaseBps, p.MaxBps, p.StepBps
	if sp.BaseBps != 0 {
		base = yieldshift.Bps(sp.BaseBps)
	}
	if sp.MaxBps != 0 {
		max = yieldshift.Bps(sp.MaxBps)
	}
	if sp.StepBps != 0 {
		step = yieldshift.Bps(sp.StepBps)
	}
	if err := e.SetControllerParameters(ctx, simOperator, base, max, step); err != nil {
		return err
	}
	if sp.TargetRatioBps != 0 {
		if err := e.SetTargetRatio(ctx, simOperator, yieldshift.Bps(sp.TargetRatioBps)); err != nil {
			return err
		}
	}
	if sp.TWAPPeriod != "" {
		d, err := parseDuration(sp.TWAPPeriod)
		if err != nil {
			return err
		}
		if err := e.SetTWAPPeriod(ctx, simOperator, d); err != nil {
			return err
		}
	}
	return nil
}

func runAction(ctx context.Context, out io.Writer, e *app.Engine, step scenarioStep, now time.Time) error {
	stamp := now.UTC().Format(time.RFC3339)
	switch step.Action {
	case "", "update":
		d, err := e.UpdateYieldDistribution(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\tupdate\t%d\t%d\t%s\t%d\t%d\t%s\n",
			stamp, step.UserPool, step.HedgerPool, ratioString(d.RatioBps), d.OptimalBps, d.AllocationBps, d.Phase())
	case "heartbeat":
		updated, err := e.CheckAndUpdateYieldDistribution(ctx)
		if err != nil {
			return err
		}
		st, err := e.ControllerState()
		if err != nil {
			return err
		}
		action := "skip"
		if updated {
			action = "heartbeat"
		}
		fmt.Fprintf(out, "%s\t%s\t%d\t%d\t-\t%d\t%d\t%s\n",
			stamp, action, step.UserPool, step.HedgerPool, st.TargetBps, st.AllocationBps, st.Phase())
	case "yield":
		user, hedger, err := e.AddYield(ctx, simSource, yieldshift.NewAmount(step.Amount), simCategory)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\tyield %d\t%s\t%s\t-\t-\t-\t-\n", stamp, step.Amount, user, hedger)
	default:
		return errors.Wrapf(errors.ErrInput, "unknown action %q", step.Action)
	}
	return nil
}

func ratioString(ratio uint64) string {
	if ratio == ^uint64(0) {
		return "inf"
	}
	return fmt.Sprintf("%d", ratio)
}
