package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/go-drift/gpslocation/cmd/gpslocation/internal/config"
	"github.com/go-drift/gpslocation/internal/simbridge"
	"github.com/go-drift/gpslocation/pkg/errors"
	"github.com/go-drift/gpslocation/pkg/geolocation"
	"github.com/go-drift/gpslocation/pkg/platform"
	"github.com/go-drift/gpslocation/pkg/telemetry"
)

func init() {
	RegisterCommand(&Command{
		Name:  "get",
		Short: "Request the current position",
		Long: `Request the current position from the simulated SimpleGPSLocation plugin.

Options are in milliseconds and accept the same loose values as the
JavaScript API: non-numeric values fall back to their defaults, a
negative timeout fails at once, and "Infinity" disables the timeout.

Flags:
  --maximum-age MS       Accept a cached fix up to MS old (default: 0)
  --timeout MS           Fail with TIMEOUT after MS (default: Infinity)
  --use-last-location    Let the plugin answer with its last known fix
  --count N              Issue N requests (default: 1)
  --parallel             Issue all requests at once instead of one after another
  --json                 Print one JSON object per request
  --deny                 Simulate a denied location permission
  --gps-disabled         Simulate a disabled GPS provider
  --delay DURATION       Simulated time to a fresh fix (default: 50ms)
  --trace                Print request spans to stderr
  --metrics              Print request metrics after the run

Examples:
  gpslocation get --timeout 5000
  gpslocation get --count 3 --maximum-age 60000
  gpslocation get --timeout 100 --delay 1s      # TIMEOUT`,
		Usage: "gpslocation get [--maximum-age MS] [--timeout MS] [--use-last-location] [--count N] [--parallel] [--json]",
		Run:   runGet,
	})
}

type getOptions struct {
	maximumAge      string
	timeout         string
	useLastLocation bool
	count           int
	parallel        bool
	json            bool
	trace           bool
	metrics         bool
}

type getResult struct {
	Request   int                        `json:"request"`
	Position  *geolocation.Position      `json:"position,omitempty"`
	Error     *geolocation.PositionError `json:"error,omitempty"`
	ElapsedMS int64                      `json:"elapsedMs"`
}

func runGet(env *Env, args []string) error {
	cfg, err := config.Resolve(env.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sim := cfg.Simulator
	var opts getOptions
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.StringVar(&opts.maximumAge, "maximum-age", "", "maximum cached fix age in milliseconds")
	fs.StringVar(&opts.timeout, "timeout", "", "request timeout in milliseconds")
	fs.BoolVar(&opts.useLastLocation, "use-last-location", false, "allow the plugin's last known fix")
	fs.IntVar(&opts.count, "count", 1, "number of requests")
	fs.BoolVar(&opts.parallel, "parallel", false, "issue all requests at once")
	fs.BoolVar(&opts.json, "json", false, "print JSON")
	fs.BoolVar(&opts.trace, "trace", cfg.Trace, "print request spans to stderr")
	fs.BoolVar(&opts.metrics, "metrics", cfg.Metrics, "print request metrics")
	fs.BoolVar(&sim.DenyPermission, "deny", sim.DenyPermission, "simulate a denied permission")
	fs.BoolVar(&sim.GPSDisabled, "gps-disabled", sim.GPSDisabled, "simulate a disabled GPS provider")
	fs.DurationVar(&sim.Delay, "delay", sim.Delay, "simulated time to a fresh fix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.count < 1 {
		return fmt.Errorf("--count must be at least 1 (got %d)", opts.count)
	}

	// Flags override the file's request options key by key.
	request := maps.Clone(cfg.Request)
	if request == nil {
		request = make(map[string]any)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "maximum-age":
			request["maximumAge"] = opts.maximumAge
		case "timeout":
			request["timeout"] = opts.timeout
		case "use-last-location":
			request["useLastLocation"] = opts.useLastLocation
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return getPositions(ctx, env, logger, sim, request, opts)
}

// getPositions runs the requests on a platform.Queue event loop backed by
// the simulated plugin and prints their outcomes.
func getPositions(ctx context.Context, env *Env, logger *slog.Logger, sim simbridge.Config, request map[string]any, opts getOptions) error {
	prevHandler := errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: logger.Enabled(ctx, slog.LevelDebug)})
	defer errors.SetHandler(prevHandler)

	queue := platform.NewQueue()
	platform.SetNativeBridge(simbridge.New(sim, simbridge.WithLogger(logger)))
	platform.RegisterDispatch(queue.Dispatch)
	defer func() {
		platform.RegisterDispatch(nil)
		platform.SetNativeBridge(nil)
	}()

	coordOpts := []geolocation.Option{geolocation.WithLogger(logger)}

	var registry *prometheus.Registry
	if opts.metrics {
		registry = prometheus.NewRegistry()
		metrics, err := telemetry.NewMetrics(registry)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		coordOpts = append(coordOpts, geolocation.WithMetrics(metrics))
	}

	if opts.trace {
		tp, err := telemetry.NewTracerProvider(env.Stderr, Version)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()
		coordOpts = append(coordOpts, geolocation.WithTracerProvider(tp))
	}

	coord := geolocation.New(geolocation.NewPluginNative(), coordOpts...)
	logger.Debug("requesting positions", "count", opts.count, "parallel", opts.parallel,
		"options", geolocation.ParseOptions(request).String())

	// Every callback runs on the queue goroutine, so results needs no lock.
	results := make([]getResult, opts.count)
	completed := 0
	var issue func(i int)
	record := func(i int, started time.Time, pos *geolocation.Position, perr *geolocation.PositionError) {
		results[i] = getResult{
			Request:   i + 1,
			Position:  pos,
			Error:     perr,
			ElapsedMS: time.Since(started).Milliseconds(),
		}
		completed++
		if completed == opts.count {
			queue.Close()
			return
		}
		if !opts.parallel {
			issue(i + 1)
		}
	}
	issue = func(i int) {
		started := time.Now()
		coord.GetCurrentPositionRaw(
			func(p geolocation.Position) { record(i, started, &p, nil) },
			func(e *geolocation.PositionError) { record(i, started, nil, e) },
			request,
		)
	}

	queue.Post(func() {
		if !opts.parallel {
			issue(0)
			return
		}
		for i := range opts.count {
			issue(i)
		}
	})
	if err := queue.Run(ctx); err != nil {
		return err
	}

	if err := printResults(env.Stdout, results, opts.json); err != nil {
		return err
	}
	if registry != nil {
		if err := printMetrics(env.Stdout, registry); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(results))
	}
	return nil
}

func printResults(w io.Writer, results []getResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(w, "#%d  %-20s %s (%dms)\n", r.Request, r.Error.Code, r.Error.Message, r.ElapsedMS)
			continue
		}
		accuracy := "?"
		if a := r.Position.Coords.Accuracy; a != nil {
			accuracy = fmt.Sprintf("%.0fm", *a)
		}
		fmt.Fprintf(w, "#%d  %s ±%s (%dms)\n", r.Request, r.Position, accuracy, r.ElapsedMS)
	}
	return nil
}

func printMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	fmt.Fprintln(w)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
