package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flox/internal/auth"
	"github.com/desertthunder/flox/internal/flo"
	"github.com/desertthunder/flox/internal/repositories"
	"github.com/desertthunder/flox/internal/resolver"
	"github.com/desertthunder/flox/internal/services"
	"github.com/desertthunder/flox/internal/shared"
	"github.com/desertthunder/flox/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	flo        *services.FloService
	tokens     *auth.TokenCache
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Clock      auth.Clock
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Flo.Timeout()}
	}
	if opts.Clock == nil {
		opts.Clock = auth.SystemClock()
	}

	svc := services.NewFloService(services.FloOpts{
		WebURL:            opts.Config.Flo.WebURL,
		APIURL:            opts.Config.Flo.APIURL,
		HTTPClient:        opts.HTTPClient,
		RequestsPerSecond: opts.Config.Flo.RequestsPerSecond,
		MaxRedirects:      opts.Config.Flo.MaxRedirects,
		Logger:            opts.Logger,
	})

	tokens := auth.NewTokenCache(svc,
		auth.Credentials{
			Username: opts.Config.Credentials.Flo.Username,
			Password: opts.Config.Credentials.Flo.Password,
		},
		auth.WithClock(opts.Clock),
		auth.WithLogger(opts.Logger),
	)

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		flo:        svc,
		tokens:     tokens,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    ui.Default(),
	}
}

func (r *Runner) defaultConfigPath() string {
	if r.configPath == "" {
		return defaultConfigPath
	}
	return r.configPath
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, codecCommand, resolveCommand, importCommand, exportCommand, planCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolver builds a track resolver, backed by the on-disk match cache when db is non-nil.
func (r *Runner) resolver(db *sql.DB) *resolver.Resolver {
	opts := []resolver.Option{resolver.WithLogger(shared.WithLogger(r.logger, "component", "resolver"))}
	if db != nil {
		cache := repositories.NewMatchCacheAdapter(repositories.NewMatchRepository(db), r.logger)
		opts = append(opts, resolver.WithCache(cache))
	}
	return resolver.New(r.flo, opts...)
}

// adaptor wires the FLO adaptor around the runner's client and token cache.
func (r *Runner) adaptor(db *sql.DB, publish flo.PublishOptions) *flo.Adaptor {
	return flo.NewAdaptor(r.flo, r.resolver(db), r.tokens,
		flo.WithLogger(shared.WithLogger(r.logger, "component", "flo")),
		flo.WithPublishOptions(publish),
	)
}

// openCache opens the match cache unless disabled. A nil database means no cache.
func (r *Runner) openCache(cmd *cli.Command) (*sql.DB, error) {
	if cmd.Bool("no-cache") {
		return nil, nil
	}
	db, err := shared.OpenMatchCache(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open match cache: %w", err)
	}
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("%s\n", r.palette.Header(title))
}
