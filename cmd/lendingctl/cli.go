package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/lending-ledger-go/catalog"
	"github.com/AntonStoeckl/lending-ledger-go/config"
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/promadapters"
	"github.com/AntonStoeckl/lending-ledger-go/lending"
)

const (
	defaultEnvFile         = ".env"
	metricsShutdownTimeout = 5 * time.Second
)

// ledgerStore is everything the CLI needs from a store: units of work, the read models and registration.
type ledgerStore interface {
	lending.Store
	catalog.RegistryStore
}

// storeOpener connects a ledgerStore. The returned function releases it.
type storeOpener func(
	ctx context.Context,
	settings config.Settings,
	logger *slog.Logger,
	collector ledger.MetricsCollector,
) (ledgerStore, func(), error)

type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	openStore  storeOpener
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	envFile     string
	metricsAddr string

	settings      config.Settings
	logger        *slog.Logger
	collector     ledger.MetricsCollector
	store         ledgerStore
	closeStore    func()
	metricsServer *http.Server
}

func newCLI(stdout, stderr io.Writer, openStore storeOpener) *cli {
	return &cli{
		stdout:     stdout,
		stderr:     stderr,
		openStore:  openStore,
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "lendingctl",
		Short:             "Operate the lending ledger of a library",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().StringVar(&c.envFile, "env-file", defaultEnvFile, "optional dotenv file with LEDGER_* settings")
	root.PersistentFlags().StringVar(&c.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the command runs")

	root.AddCommand(
		c.migrateCommand(),
		c.authorCommand(),
		c.bookCommand(),
		c.memberCommand(),
		c.borrowCommand(),
		c.returnCommand(),
		c.payFineCommand(),
		c.finesCommand(),
		c.borrowingsCommand(),
		c.seedCommand(),
	)

	return root
}

// execute runs the command line args and releases the store and the metrics server afterwards.
func (c *cli) execute(ctx context.Context, args []string) error {
	defer c.teardown()

	root := c.rootCommand()
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(c.envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
			return errors.Join(config.ErrInvalidSettings, err)
		}
	}

	settings, err := config.SettingsFromEnv()
	if err != nil {
		return err
	}

	level, err := settings.SlogLevel()
	if err != nil {
		return err
	}

	c.settings = settings
	c.logger = slog.New(slog.NewJSONHandler(c.stderr, &slog.HandlerOptions{Level: level}))
	c.collector = promadapters.NewMetricsCollector(c.registerer)

	if c.metricsAddr != "" {
		return c.serveMetrics()
	}

	return nil
}

func (c *cli) serveMetrics() error {
	listener, err := net.Listen("tcp", c.metricsAddr)
	if err != nil {
		return errors.Join(config.ErrInvalidSettings, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{}))

	c.metricsServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if serveErr := c.metricsServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			c.logger.Error("metrics server stopped", "error", serveErr.Error())
		}
	}()

	c.logger.Info("serving metrics", "address", listener.Addr().String())

	return nil
}

func (c *cli) teardown() {
	if c.closeStore != nil {
		c.closeStore()
		c.closeStore = nil
		c.store = nil
	}

	if c.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		_ = c.metricsServer.Shutdown(ctx)
		c.metricsServer = nil
	}
}

func (c *cli) ledgerStore(ctx context.Context) (ledgerStore, error) {
	if c.store != nil {
		return c.store, nil
	}

	store, closeStore, err := c.openStore(ctx, c.settings, c.logger, c.collector)
	if err != nil {
		return nil, err
	}

	c.store, c.closeStore = store, closeStore

	return store, nil
}

func (c *cli) engine(ctx context.Context) (*lending.Engine, error) {
	store, err := c.ledgerStore(ctx)
	if err != nil {
		return nil, err
	}

	policy, err := c.settings.Policy()
	if err != nil {
		return nil, err
	}

	return lending.NewEngine(store,
		lending.WithPolicy(policy),
		lending.WithContextualLogger(c.logger),
		lending.WithMetrics(c.collector),
	)
}

func (c *cli) registrar(ctx context.Context) (*catalog.Registrar, error) {
	store, err := c.ledgerStore(ctx)
	if err != nil {
		return nil, err
	}

	policy, err := c.settings.Policy()
	if err != nil {
		return nil, err
	}

	return catalog.NewRegistrar(store,
		catalog.WithDefaultBorrowingLimit(policy.BorrowingLimit),
		catalog.WithLogger(c.logger),
	)
}

func openPostgresStore(
	ctx context.Context,
	settings config.Settings,
	logger *slog.Logger,
	collector ledger.MetricsCollector,
) (ledgerStore, func(), error) {

	store, closeStore, err := config.OpenStore(ctx, settings,
		postgresengine.WithLogger(logger),
		postgresengine.WithMetrics(collector),
	)
	if err != nil {
		return nil, nil, errors.Join(ledger.ErrStoreUnavailable, err)
	}

	return store, closeStore, nil
}
