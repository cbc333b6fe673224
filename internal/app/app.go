package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"inspectline/internal/catalog"
	"inspectline/internal/config"
	"inspectline/internal/db"
	"inspectline/internal/engine"
	"inspectline/internal/events"
	"inspectline/internal/logging"
	"inspectline/internal/migrate"
	"inspectline/internal/remote"
	"inspectline/internal/repo"
	"inspectline/internal/session"
	"inspectline/internal/store"
)

// Options selects the workspace and the account a client session acts as.
type Options struct {
	Workspace string
	// Actor is a user id or name from the directory. Empty means no one is signed in.
	Actor  string
	Config *config.Config
	Logger *slog.Logger
}

// Client wires the workflow engine to the remote store for one CLI invocation.
type Client struct {
	Config *config.Config
	Logger *slog.Logger
	Remote *remote.Client
	Users  *catalog.Users
	Engine engine.Engine

	journal *sql.DB
}

// OpenClient builds the engine and, when an actor is given, signs that
// account in after resolving it against the user directory.
func OpenClient(ctx context.Context, opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	rc := remote.New(cfg.Remote.BaseURL)
	if d := cfg.RemoteTimeout(); d > 0 {
		rc.Timeout = d
	}
	users := catalog.NewUsers(rc, cfg.Directory.EligibleRole)
	sess := &session.Session{}
	if opts.Actor != "" {
		u, err := users.Lookup(ctx, opts.Actor)
		if err != nil {
			return nil, fmt.Errorf("resolve actor %q: %w", opts.Actor, err)
		}
		sess.SignIn(u)
	}

	eng := engine.New(repo.New(rc, logger), catalog.NewAssets(rc), sess, cfg)
	eng.Logger = logger
	c := &Client{Config: cfg, Logger: logger, Remote: rc, Users: users}
	if cfg.Journal.Enabled {
		conn, err := openMigrated(opts.Workspace, db.JournalDB, migrate.Journal)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		c.journal = conn
		eng.Events = events.Writer{DB: conn}
	}
	c.Engine = eng
	return c, nil
}

// Journal returns the local event journal; reads on a disabled journal return nothing.
func (c *Client) Journal() events.Writer {
	return c.Engine.Events
}

func (c *Client) Close() error {
	if c.journal == nil {
		return nil
	}
	return c.journal.Close()
}

// OpenStore opens the reference store database of workspace and applies the
// seed file when one is given.
func OpenStore(ctx context.Context, workspace, seedFile string) (store.Store, func() error, error) {
	conn, err := openMigrated(workspace, db.StoreDB, migrate.Store)
	if err != nil {
		return store.Store{}, nil, err
	}
	s := store.New(conn)
	if seedFile != "" {
		seed, err := store.LoadSeed(seedFile)
		if err == nil {
			err = s.Apply(ctx, seed)
		}
		if err != nil {
			conn.Close()
			return store.Store{}, nil, fmt.Errorf("seed %s: %w", seedFile, err)
		}
	}
	return s, conn.Close, nil
}

func openMigrated(workspace, name string, set migrate.Set) (*sql.DB, error) {
	conn, err := db.Open(db.Config{Workspace: workspace, Name: name})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(conn, set); err != nil {
		return nil, errors.Join(err, conn.Close())
	}
	return conn, nil
}
