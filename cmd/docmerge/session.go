package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/devco/docmerge"
	"github.com/devco/docmerge/internal/config"
	"github.com/devco/docmerge/internal/gdocs"
	"github.com/devco/docmerge/internal/localstore"
	"github.com/devco/docmerge/internal/logging"
)

// localFolderID stands in for the scratch folder when the local backend runs
// without one; the in-memory store does not check parents.
const localFolderID = "local"

// session bundles what a store-backed command needs.
type session struct {
	cfg    *config.Config
	log    zerolog.Logger
	merger *docmerge.Merger
	closer io.Closer
}

// Close releases the store.
func (s *session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// loadConfig resolves configuration with precedence
// flags > environment > config file > defaults.
func loadConfig(common *commonFlags, store *storeFlags, env *Environment) (*config.Config, error) {
	name := common.config
	if name == "" {
		name = env.Getenv(config.EnvConfig)
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	warnings, err := cfg.ApplyEnv(env.Environ())
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		fmt.Fprintf(env.Stderr, "warning: %s (typo?)\n", w)
	}

	common.apply(cfg)
	if store != nil {
		store.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession loads configuration, builds the logger and opens the store.
func openSession(common *commonFlags, store *storeFlags, env *Environment) (*session, error) {
	cfg, err := loadConfig(common, store, env)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(env.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	st, closer, err := openStore(cfg, env, log)
	if err != nil {
		return nil, err
	}

	opts := []docmerge.Option{
		docmerge.WithFolderID(folderID(cfg)),
		docmerge.WithLogger(log),
		docmerge.WithClock(env.Now),
	}
	if cfg.Store.ScratchPrefix != "" {
		opts = append(opts, docmerge.WithScratchPrefix(cfg.Store.ScratchPrefix))
	}

	return &session{
		cfg:    cfg,
		log:    log,
		merger: docmerge.NewMerger(st, opts...),
		closer: closer,
	}, nil
}

// folderID returns the configured scratch folder, defaulting for the local
// backend only.
func folderID(cfg *config.Config) string {
	if cfg.Google.FolderID == "" && cfg.Store.Backend == config.BackendLocal {
		return localFolderID
	}
	return cfg.Google.FolderID
}

// openStore builds the backend selected by cfg. The closer may be nil.
func openStore(cfg *config.Config, env *Environment, log zerolog.Logger) (docmerge.Store, io.Closer, error) {
	if cfg.Store.Backend == config.BackendLocal {
		renderer := env.NewRenderer(cfg.Server.Timeout)
		st := localstore.New(renderer)
		n, err := st.LoadDir(cfg.Store.TemplateDir)
		if err != nil {
			_ = renderer.Close()
			return nil, nil, err
		}
		if n == 0 {
			log.Warn().Str("dir", cfg.Store.TemplateDir).Msg("no markdown templates found")
		}
		log.Debug().Int("templates", n).Str("dir", cfg.Store.TemplateDir).Msg("local store ready")
		return st, renderer, nil
	}

	creds, err := credentials(cfg.Google)
	if err != nil {
		return nil, nil, err
	}
	return gdocs.New(creds), nil, nil
}

// credentials builds service-account credentials, reading the key file when
// no inline key is configured.
func credentials(g config.GoogleConfig) (gdocs.Credentials, error) {
	key := g.PrivateKey
	if key == "" && g.PrivateKeyFile != "" {
		data, err := os.ReadFile(g.PrivateKeyFile) // #nosec G304 -- key path is user-provided
		if err != nil {
			return gdocs.Credentials{}, fmt.Errorf("%w: reading private key file: %w", docmerge.ErrAuth, err)
		}
		key = string(data)
	}
	return gdocs.Credentials{
		Email:      g.ServiceAccountEmail,
		PrivateKey: key,
		ProjectID:  g.ProjectID,
	}, nil
}
