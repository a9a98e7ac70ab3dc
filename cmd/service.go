package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/etnz/finance/date"
	"github.com/etnz/finance/insight"
	"github.com/etnz/finance/internal/config"
	"github.com/etnz/finance/jobs"
	"github.com/etnz/finance/market"
	"github.com/etnz/finance/mfapi"
	"github.com/etnz/finance/server"
	"github.com/etnz/finance/store"
	"github.com/google/subcommands"
)

// newRunner declares the background jobs of fin.
func newRunner(cfg config.Config, s store.Store, svc *insight.Service, logger *slog.Logger) (*jobs.Runner, error) {
	return jobs.NewRunner(logger, jobs.Declare(cfg.Jobs, jobs.Deps{
		Store:     s,
		Providers: providers(cfg.Providers),
		Insights:  svc,
		Logger:    logger,
	})...)
}

type jobsCmd struct {
	run  string
	list bool
}

func (*jobsCmd) Name() string     { return "jobs" }
func (*jobsCmd) Synopsis() string { return "run the background jobs" }
func (*jobsCmd) Usage() string {
	return `fin jobs [-l] [-run <job>]

  Runs the background jobs on their schedules until interrupted, or a single
  job now with -run. Jobs: subscriptions-sync, price-refresh, insights,
  notifications.
`
}

func (c *jobsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.run, "run", "", "Run a single job now")
	f.BoolVar(&c.list, "l", false, "List the jobs")
}

func (c *jobsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	logger := newLogger(cfg)
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	runner, err := newRunner(cfg, s, newInsightService(ctx, cfg, s, logger), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	switch {
	case c.list:
		fmt.Println(strings.Join(runner.Names(), "\n"))
	case c.run != "":
		if err := runner.RunOnce(ctx, c.run); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	default:
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		runner.Start()
		<-ctx.Done()
		<-runner.Stop().Done()
	}
	return subcommands.ExitSuccess
}

type serveCmd struct {
	addr   string
	noJobs bool
	token  bool
	ttl    time.Duration
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the read-only JSON API" }
func (*serveCmd) Usage() string {
	return `fin serve [-addr <host:port>] [-no-jobs]
fin serve -token [-ttl <duration>]

  Serves the JSON API and runs the background jobs until interrupted.
  -token prints a bearer token signed with FIN_AUTH_SECRET instead.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, FIN_HTTP_HOST:FIN_HTTP_PORT by default")
	f.BoolVar(&c.noJobs, "no-jobs", false, "Do not run the background jobs")
	f.BoolVar(&c.token, "token", false, "Print a bearer token and exit")
	f.DurationVar(&c.ttl, "ttl", 30*24*time.Hour, "Validity of the token")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.token {
		if cfg.Auth.Secret == "" {
			fmt.Fprintln(os.Stderr, "Error: FIN_AUTH_SECRET is not set")
			return subcommands.ExitUsageError
		}
		token, err := server.IssueToken(cfg.Auth.Secret, "fin", c.ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(token)
		return subcommands.ExitSuccess
	}
	if err := c.serve(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *serveCmd) serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg)
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	table, err := loadNWITable()
	if err != nil {
		return err
	}
	svc := newInsightService(ctx, cfg, s, logger)

	if !c.noJobs {
		runner, err := newRunner(cfg, s, svc, logger)
		if err != nil {
			return err
		}
		runner.Start()
		defer func() { <-runner.Stop().Done() }()
	}

	funds := mfapi.New()
	funds.HTTP = market.NewCachingClient(cfg.Providers.CacheDir, date.Daily)
	srv := &server.Server{
		Store:      s,
		Funds:      funds,
		Insights:   svc,
		Table:      table,
		Logger:     logger,
		AuthSecret: cfg.Auth.Secret,
	}
	if cfg.Auth.Secret == "" {
		logger.Warn("authentication disabled, FIN_AUTH_SECRET is not set")
	}
	addr := c.addr
	if addr == "" {
		addr = cfg.HTTP.Addr()
	}
	err = srv.ListenAndServe(ctx, addr, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, cfg.HTTP.ShutdownTimeout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
