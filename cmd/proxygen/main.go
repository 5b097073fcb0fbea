// Command proxygen harvests, verifies, and streams working proxies.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	proxygen "github.com/grishkovelli/proxygen"
)

func main() {
	var (
		configPath       = pflag.StringP("config", "c", "", "path to a YAML config file")
		types            = pflag.StringArray("type", nil, "proxy type to accept (http, https, socks4, socks5); repeatable")
		includeCountries = pflag.StringArray("country", nil, "country code to accept; repeatable")
		excludeCountries = pflag.StringArray("exclude-country", nil, "country code to reject; repeatable")
		maxLatencyMS     = pflag.Uint64("max-latency-ms", 2000, "reject proxies slower than this, 0 disables the check")
		timeoutS         = pflag.Uint64("timeout-s", 60, "overall deadline for this run, in seconds")
		limit            = pflag.Uint("limit", 1, "stop after delivering this many unique proxies, 0 runs until timeout")
		dashboard        = pflag.Bool("dashboard", false, "start the live WebSocket dashboard")
		dashboardPort    = pflag.Int("dashboard-port", 8090, "dashboard listen port")
	)
	pflag.Parse()

	cfg := &proxygen.Config{
		Timeout:      10,
		VerifyTarget: "http://httpbin.org/ip",
		Dashboard:    proxygen.DashboardConfig{Enabled: *dashboard, Port: *dashboardPort},
	}

	if *configPath != "" {
		loaded, err := proxygen.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "proxygen: using defaults:", err)
		} else {
			cfg = loaded
		}
	}

	if len(*types) > 0 {
		cfg.Filter.Types = *types
	}
	if len(*includeCountries) > 0 {
		cfg.Filter.IncludeCountries = *includeCountries
	}
	if len(*excludeCountries) > 0 {
		cfg.Filter.ExcludeCountries = *excludeCountries
	}
	if *maxLatencyMS > 0 {
		cfg.Filter.MaxLatencyMS = int(*maxLatencyMS)
	}

	cfg.Apply()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeoutS)*time.Second)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := proxygen.New()
	gen.SetFilter(proxygen.BuildFilter(cfg.Filter))
	for _, p := range proxygen.BuildProviders(cfg.Providers) {
		gen.AddProvider(p)
	}

	if cfg.Dashboard.Enabled {
		gen.StartDashboard(cfg.Dashboard.Port)
	}

	gen.Run(ctx)

	if !deliverUntilLimit(ctx, gen, *limit, os.Stdout) {
		fmt.Fprintln(os.Stderr, "proxygen: timed out before reaching --limit unique proxies")
		os.Exit(1)
	}
}

// engine is the subset of *proxygen.Generator the delivery loop needs,
// narrowed so tests can drive deliverUntilLimit against a stub.
type engine interface {
	Get(ctx context.Context) (proxygen.VerifiedProxy, bool)
}

// deliverUntilLimit pulls verified proxies from gen, printing each newly
// seen addr to out, until limit unique addrs have been printed (limit == 0
// means run until ctx is done). Returns false if ctx ended the loop before
// limit was reached.
func deliverUntilLimit(ctx context.Context, gen engine, limit uint, out io.Writer) bool {
	seen := make(map[string]struct{})
	for limit == 0 || uint(len(seen)) < limit {
		p, ok := gen.Get(ctx)
		if !ok {
			return limit == 0
		}
		if _, dup := seen[p.Addr]; dup {
			continue
		}
		seen[p.Addr] = struct{}{}
		fmt.Fprintln(out, p.String())
	}
	return true
}
