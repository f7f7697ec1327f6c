package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/common/expfmt"

	"github.com/dd0wney/stratagem/pkg/compare"
	"github.com/dd0wney/stratagem/pkg/logging"
	"github.com/dd0wney/stratagem/pkg/metrics"
	"github.com/dd0wney/stratagem/pkg/scenario"
	"github.com/dd0wney/stratagem/pkg/solver"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.SetFlags(0)
		log.Fatalf("%s", errorStyle.Render("stratagem: "+err.Error()))
	}
}

type options struct {
	scenario string
	preset   string
	budget   float64
	alpha    float64
	beta     float64
	workers  int
	sweep    string
	json     bool
	metrics  bool
	logLevel string
	set      map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("stratagem", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.scenario, "scenario", "", "Scenario YAML file")
	fs.StringVar(&opts.preset, "preset", "small", "Built-in scenario ("+strings.Join(scenario.PresetNames(), ", ")+"), used when -scenario is empty")
	fs.Float64Var(&opts.budget, "budget", 0, "Override the scenario budget")
	fs.Float64Var(&opts.alpha, "alpha", 0, "Override the defender gain multiplier")
	fs.Float64Var(&opts.beta, "beta", 0, "Override the attacker loss multiplier")
	fs.IntVar(&opts.workers, "workers", 0, "Per-target solver workers (0 = all CPUs)")
	fs.StringVar(&opts.sweep, "sweep", "", "Budget sweep as lo:hi:count, e.g. 0:12:7")
	fs.BoolVar(&opts.json, "json", false, "Write reports as JSON")
	fs.BoolVar(&opts.metrics, "metrics", false, "Dump Prometheus metrics after the run")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level for stderr (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

func loadScenario(opts *options) (*scenario.Scenario, error) {
	var (
		s   *scenario.Scenario
		err error
	)
	if opts.scenario != "" {
		s, err = scenario.Load(opts.scenario)
	} else {
		s, err = scenario.Preset(opts.preset)
	}
	if err != nil {
		return nil, err
	}

	if opts.set["budget"] {
		s.Budget = opts.budget
	}
	if opts.set["alpha"] {
		s.Alpha = &opts.alpha
	}
	if opts.set["beta"] {
		s.Beta = &opts.beta
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// parseSweep reads "lo:hi:count".
func parseSweep(arg string) ([]float64, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("sweep %q: want lo:hi:count", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("sweep lo: %w", err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("sweep hi: %w", err)
	}
	count, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("sweep count: %w", err)
	}
	if count < 1 || hi < lo || lo < 0 {
		return nil, fmt.Errorf("sweep %q: need 0 <= lo <= hi and count >= 1", arg)
	}
	return compare.Budgets(lo, hi, count), nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := logging.NewJSONLogger(stderr, logging.ParseLevel(opts.logLevel))
	registry := metrics.NewRegistry()

	s, err := loadScenario(opts)
	if err != nil {
		return err
	}

	slv, err := solver.New(solver.Config{
		Workers: opts.workers,
		Logger:  logger,
		Metrics: registry,
	})
	if err != nil {
		return err
	}
	cmp := compare.New(slv)
	topo, catalog, params := s.Topology(), s.Catalog(), s.Params()

	logger.Info("scenario loaded",
		logging.String("scenario", s.Name),
		logging.Nodes(topo.Len()),
		logging.Budget(s.Budget),
		logging.String("catalog", catalog.String()))

	if opts.sweep != "" {
		budgets, err := parseSweep(opts.sweep)
		if err != nil {
			return err
		}
		reports, err := cmp.Sweep(topo, catalog, budgets, params)
		if err != nil {
			return err
		}
		if opts.json {
			err = writeJSON(stdout, reports)
		} else {
			fmt.Fprintln(stdout, titleStyle.Render(fmt.Sprintf("Stratagem budget sweep: %s (%d nodes)", s.Name, topo.Len())))
			fmt.Fprintln(stdout, renderSweep(reports))
		}
		if err != nil {
			return err
		}
	} else {
		report, err := cmp.Compare(topo, catalog, s.Budget, params)
		if err != nil {
			return err
		}
		if opts.json {
			if err := writeJSON(stdout, report); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(stdout, renderReport(s.Name, report))
		}
	}

	if opts.metrics {
		return dumpMetrics(stdout, registry)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dumpMetrics(w io.Writer, registry *metrics.Registry) error {
	registry.UpdateSystemMetrics()
	families, err := registry.GetPrometheusRegistry().Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
