package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"domaind/internal/app"
	"domaind/internal/config"
	"domaind/internal/datasource"
	"domaind/internal/httpapi"
	"domaind/internal/logging"
	"domaind/internal/model"
	"domaind/internal/registry"
	"domaind/internal/relations"
	"domaind/internal/samples"
)

const defaultAddr = ":8080"

// options are the persistent flags. Non-empty flag values win over the
// config file and the environment.
type options struct {
	configPath  string
	addr        string
	logLevel    string
	logFormat   string
	postgresDSN string
}

func main() {
	if err := buildRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "domaind:", err)
		os.Exit(1)
	}
}

func buildRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "domaind",
		Short:         "Serve registered domain models over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (.yaml, .yml, .json or .toml)")
	pf.StringVar(&opts.addr, "addr", "", "HTTP listen address (default "+defaultAddr+", env "+config.EnvAddr+")")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error|off (env "+config.EnvLogLevel+")")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: json|console")
	pf.StringVar(&opts.postgresDSN, "postgres-dsn", "", "Postgres DSN; in-memory stores when empty (env "+config.EnvPostgresDSN+")")

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API",
		Example: "  domaind serve --addr :9090 --log-format console",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, os.Getenv)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List the registered model names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := newRegistry(zerolog.Nop())
			if err != nil {
				return err
			}
			for _, name := range reg.ModelNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	eventNameCmd := &cobra.Command{
		Use:     "event-name TYPE MODEL",
		Short:   "Print the name events of TYPE for MODEL are published under",
		Example: "  domaind event-name update model1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := model.EventName(model.EventType(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	root.AddCommand(serveCmd, modelsCmd, eventNameCmd)
	return root
}

// loadConfig merges the config file, the environment and the flags, then
// fills in defaults.
func loadConfig(opts *options, getenv func(string) string) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}
	cfg = config.ApplyEnv(cfg, getenv)
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}
	if opts.postgresDSN != "" {
		cfg.PostgresDSN = opts.postgresDSN
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// newRegistry returns a registry holding the sample models.
func newRegistry(log zerolog.Logger) (*registry.Registry, error) {
	reg := registry.NewWithConfig(registry.Config{Logger: &log})
	if err := samples.Register(reg, samples.SHA256Hex); err != nil {
		return nil, err
	}
	return reg, nil
}

// newApp wires the registry, the stores and the relations into an App.
func newApp(ctx context.Context, cfg config.Config, log zerolog.Logger) (*app.App, error) {
	reg, err := newRegistry(log)
	if err != nil {
		return nil, err
	}
	stores := datasource.NewFactory()
	if cfg.PostgresDSN != "" {
		db, err := datasource.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := datasource.Migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		for _, name := range reg.ModelNames() {
			stores.Register(name, datasource.NewPostgres(db, name, reg))
		}
		log.Info().Strs("models", reg.ModelNames()).Msg("using postgres stores")
	}
	return app.NewWithConfig(app.Config{
		Registry:  reg,
		Stores:    stores,
		Relations: mergeRelations(samples.Relations(), cfg.Relations),
		Logger:    &log,
	})
}

// mergeRelations adds configured relations to the built-in ones, keyed by
// upper-cased model name. Configured entries replace built-in entries of the
// same name.
func mergeRelations(base map[string]map[string]relations.Descriptor, specs map[string]map[string]relations.Spec) map[string]map[string]relations.Descriptor {
	out := make(map[string]map[string]relations.Descriptor, len(base)+len(specs))
	for name, rels := range base {
		name = strings.ToUpper(name)
		if out[name] == nil {
			out[name] = make(map[string]relations.Descriptor, len(rels))
		}
		for k, d := range rels {
			out[name][k] = d
		}
	}
	for name, rels := range specs {
		name = strings.ToUpper(name)
		if out[name] == nil {
			out[name] = make(map[string]relations.Descriptor, len(rels))
		}
		for k, d := range relations.Descriptors(rels) {
			out[name][k] = d
		}
	}
	return out
}

func serve(parent context.Context, cfg config.Config) error {
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	redeliverEvery, err := config.Duration(cfg.RedeliverInterval, app.DefaultRedeliverInterval)
	if err != nil {
		return fmt.Errorf("redeliver_interval: %w", err)
	}
	if err := configureHTTP(cfg, log); err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	httpapi.SetBaseContext(ctx)
	go a.RunRedelivery(ctx, redeliverEvery)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(a), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Strs("models", a.ListModels()).Msg("domaind listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	case <-ctx.Done():
	}
	// close open event streams before draining
	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	flushOutbox(a, log)
	return nil
}

// configureHTTP applies cfg to the httpapi package settings.
func configureHTTP(cfg config.Config, log zerolog.Logger) error {
	ping, err := config.Duration(cfg.EventPingInterval, 0)
	if err != nil {
		return fmt.Errorf("event_ping_interval: %w", err)
	}
	httpapi.SetLogger(log)
	reqLevel := cfg.RequestLogLevel
	if reqLevel == "" {
		reqLevel = cfg.LogLevel
	}
	httpapi.SetRequestLogLevel(reqLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)
	httpapi.SetEventStreamOptions(cfg.EventBuffer, ping)
	return nil
}

// flushOutbox makes a last redelivery attempt at shutdown and reports what
// is still undelivered.
func flushOutbox(a *app.App, log zerolog.Logger) {
	if a.PendingEvents() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.Redeliver(ctx); err != nil {
		log.Warn().Err(err).Msg("final event redelivery failed")
	}
	if n := a.PendingEvents(); n > 0 {
		log.Warn().Int("pending", n).Msg("undelivered events dropped at shutdown")
	}
}
