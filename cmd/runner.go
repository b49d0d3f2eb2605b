package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"

	"github.com/desertthunder/onlyhub/internal/auth"
	"github.com/desertthunder/onlyhub/internal/media"
	"github.com/desertthunder/onlyhub/internal/repositories"
	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The mirror database and everything built on it are opened on first use by [Runner.open].
type Runner struct {
	config  *shared.Config
	client  *services.Client
	logger  *log.Logger
	output  io.Writer
	input   *bufio.Reader
	stdin   io.Reader
	db      *sql.DB
	ownsDB  bool
	catalog *repositories.Catalog
	uploads *repositories.UploadLog
	gateway *media.Gateway
	auth    *auth.Authenticator
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Client selects local-only mode. A nil DB is opened from Config.Database on first use.
type RunnerOpts struct {
	Config *shared.Config
	Client *services.Client
	DB     *sql.DB
	Logger *log.Logger
	Output io.Writer
	Input  io.Reader
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config: opts.Config,
		client: opts.Client,
		logger: opts.Logger,
		output: opts.Output,
		input:  bufio.NewReader(opts.Input),
		stdin:  opts.Input,
		db:     opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, bannersCommand, videosCommand, noticesCommand, promoCommand, mediaCommand, authCommand,
		exportCommand, watchCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. to move output to a file while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// online reports whether a backend client is configured.
func (r *Runner) online() bool { return r.client != nil }

// open opens the mirror and builds the repositories, gateway and authenticator once.
func (r *Runner) open() error {
	if r.catalog != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.OpenMirror(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open local mirror: %w", err)
		}
		r.db, r.ownsDB = db, true
	}

	local := repositories.NewLocalStore(r.db)
	r.uploads = repositories.NewUploadLog(r.db)

	var store media.ObjectStore
	var remote repositories.Tables
	if r.client != nil {
		store, remote = r.client, r.client
	}
	r.gateway = media.NewGateway(store, r.uploads, r.logger)

	r.catalog = repositories.NewCatalog(repositories.CollectionOpts{
		Local:  local,
		Remote: remote,
		Media:  r.gateway,
		Logger: r.logger,
	})
	r.auth = auth.NewWithClient(r.client, repositories.NewSessionCache(local), r.config.Auth.ResetRedirectURL, r.logger)
	return nil
}

// Close releases the mirror database when the runner opened it.
func (r *Runner) Close() error {
	if r.db != nil && r.ownsDB {
		return r.db.Close()
	}
	return nil
}

// reportSync tells the operator whether a write reached the backend.
func (r *Runner) reportSync(what string, result repositories.SyncResult) error {
	switch {
	case result.Synced:
		return r.writePlain("✓ %s saved and synced\n", what)
	case result.Local():
		r.logger.Warn("backend not configured, change saved locally only", "what", what)
		return r.writePlain("! %s saved locally only; other clients will not see this change\n", what)
	default:
		r.logger.Warn("change saved locally but not synced", "what", what, "error", result.Error)
		return r.writePlain("! %s saved locally but not synced: %s\n  other clients will not see this change until the next successful save\n", what, result.Error)
	}
}

// prompt writes label and reads one trimmed line of input.
func (r *Runner) prompt(label string) (string, error) {
	if err := r.writePlain("%s", label); err != nil {
		return "", err
	}
	line, err := r.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echo when input is a terminal and falls back to [Runner.prompt].
func (r *Runner) promptSecret(label string) (string, error) {
	f, ok := r.stdin.(*os.File)
	if !ok || r.input.Buffered() > 0 || !term.IsTerminal(f.Fd()) {
		return r.prompt(label)
	}
	if err := r.writePlain("%s", label); err != nil {
		return "", err
	}
	secret, err := term.ReadPassword(f.Fd())
	r.writePlain("\n")
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(string(secret), "\r\n"), nil
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
