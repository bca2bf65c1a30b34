package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/aria/internal/genai"
	"github.com/desertthunder/aria/internal/library"
	"github.com/desertthunder/aria/internal/player"
	"github.com/desertthunder/aria/internal/repositories"
	"github.com/desertthunder/aria/internal/services"
	"github.com/desertthunder/aria/internal/shared"
	"github.com/desertthunder/aria/internal/socket"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	api    *services.PlayerAPIClient
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	API    *services.PlayerAPIClient
	Logger *log.Logger
	Output io.Writer
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

	return &Runner{
		config: opts.Config,
		api:    opts.API,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, stateCommand, playbackCommand, libraryCommand, generateCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// session bundles the live connection, database, and engines a command needs.
// Commands that only read the local cache open the database directly instead.
type session struct {
	db      *sql.DB
	conn    *socket.Conn
	player  *player.Engine
	library *library.Engine
}

// openSession loads config, opens the database, dials the player socket, and
// wires both engines. The initial state request is emitted on connect so the
// player engine has a baseline before the first command runs.
func (r *Runner) openSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return nil, err
	}

	conn := socket.NewConn(socket.Options{
		URL:    config.Player.SocketURL(),
		Logger: r.logger,
	})
	if err := conn.Initialize(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to player: %w", err)
	}

	playerEngine := player.New(player.Options{Conn: conn, Logger: r.logger})
	playerEngine.Start()

	var generator genai.TextGenerator
	if config.Generator.APIKey != "" {
		generator = genai.NewAnthropicGenerator(config.Generator.APIKey, config.Generator.Model)
	}

	libraryEngine := library.NewEngine(library.Options{
		Conn:                conn,
		Playlists:           repositories.NewPlaylistCacheRepository(db),
		Tracks:              repositories.NewTrackCacheRepository(db),
		Generator:           generator,
		Logger:              r.logger,
		TrackCacheLimit:     config.Sync.TrackCacheLimit,
		BrowseTimeout:       config.Sync.BrowseTimeout(),
		DefaultPlaylistName: config.Generator.DefaultName,
	})
	libraryEngine.Start()

	if err := conn.Emit(socket.CmdGetState, nil); err != nil {
		r.logger.Debug("initial state request dropped", "err", err)
	}

	return &session{
		db:      db,
		conn:    conn,
		player:  playerEngine,
		library: libraryEngine,
	}, nil
}

func (s *session) close() {
	s.player.Close()
	s.conn.Disconnect()
	s.db.Close()
}

// loadConfig reads the config file named by the --config flag, falling back
// to the runner's config when the file is absent or unreadable.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	configPath := cmd.String("config")
	if configPath == "" {
		return r.config, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		return r.config, nil
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return r.config, nil
	}
	return config, nil
}

// openDatabase opens the configured database and ensures the schema is
// current.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}
