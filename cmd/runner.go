package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinedex/internal/catalog"
	"github.com/desertthunder/cinedex/internal/notify"
	"github.com/desertthunder/cinedex/internal/repositories"
	"github.com/desertthunder/cinedex/internal/routes"
	"github.com/desertthunder/cinedex/internal/services"
	"github.com/desertthunder/cinedex/internal/session"
	"github.com/desertthunder/cinedex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies left nil are built from the configuration on first use.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader

	db      *sql.DB
	storage session.Storage
	images  catalog.ImageStore
	api     *services.APIService
	session *session.Store
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Storage    session.Storage
	Images     catalog.ImageStore
	API        *services.APIService
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		storage:    opts.Storage,
		images:     opts.Images,
		api:        opts.API,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// loadConfig resolves the configuration once: the --config file when it exists,
// otherwise defaults, then CINEDEX_* environment overrides.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	path := r.configPath
	if path == "" {
		path = cmd.String("config")
	}

	config := shared.DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	shared.SetLogLevel(r.logger, shared.ParseLevel(config.Log.Level))
	r.config, r.configPath = config, path
	return config, nil
}

// connect opens storage, builds the API client and restores the persisted session.
func (r *Runner) connect(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if r.storage == nil {
		db, err := shared.OpenStorage(config.Database)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		kv := repositories.NewKVRepository(db)
		r.db, r.storage = db, kv
		if r.images == nil {
			r.images = repositories.NewImageRepository(kv)
		}
	}

	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: time.Duration(config.API.TimeoutSeconds) * time.Second}
	}

	if r.api == nil {
		r.api = services.NewAPIService(config.API.BaseURL, r.httpClient, services.NewLimiter(config.API.RateLimit))
	}

	if r.session == nil {
		r.session = session.NewStore(r.storage, r.api, r.httpClient, r.logger)
		r.session.Restore(ctx)
	}
	return nil
}

// requireSession runs path through the route guard and fails unless it would render.
func (r *Runner) requireSession(path string) error {
	outcome := routes.Guard(r.session, routes.MustResolve(path))
	switch outcome.Decision {
	case routes.Render:
		return nil
	case routes.Redirect:
		return fmt.Errorf("%w: run 'cinedex auth login' first", shared.ErrNotAuthenticated)
	default:
		return fmt.Errorf("%w: session is still loading", shared.ErrNotAuthenticated)
	}
}

// movies returns the movie service authenticated with the session token.
func (r *Runner) movies() *services.APIService {
	return r.api.WithClient(r.session.Client())
}

// deps returns the catalog collaborators for CLI use. Notifications are printed.
func (r *Runner) deps() catalog.Deps {
	return catalog.Deps{
		Movies:   r.movies(),
		Images:   r.images,
		Auth:     r.session,
		Notifier: notify.Multi{notify.NewLogNotifier(r.logger), &printNotifier{r: r}},
		Logger:   r.logger,
	}
}

// Close releases the database connection, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// printNotifier writes notifications to the runner's output.
type printNotifier struct {
	r *Runner
}

func (p *printNotifier) Notify(n notify.Notification) {
	switch n.Level {
	case notify.LevelSuccess:
		p.r.writePlain("✓ %s\n", n.Message)
	case notify.LevelError:
		p.r.writePlain("✗ %s\n", n.Message)
	default:
		p.r.writePlain("%s\n", n.Message)
	}
}

// confirm asks a yes/no question on the runner's input. Anything but y/yes is no.
func (r *Runner) confirm(question string) (bool, error) {
	if err := r.writePlain("%s [y/N]: ", question); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
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

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
