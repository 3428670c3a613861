package main

import (
	"time"

	"github.com/dinekit/dinekit/authclient"
	"github.com/dinekit/dinekit/internal/config"
	"github.com/dinekit/dinekit/internal/logging"
	"github.com/dinekit/dinekit/restaurant"
	"github.com/dinekit/dinekit/session"
	"github.com/dinekit/dinekit/session/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// app holds the wired dependency graph for a command invocation. The
// session store is the single owned instance every component reads.
type app struct {
	cfg         config.Config
	logger      zerolog.Logger
	storage     storage.Storage
	store       *session.Store
	auth        *authclient.Client
	restaurants *restaurant.Client
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] config")
	}

	logger := logging.New(cfg)

	st, err := openStorage(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] storage")
	}

	store, err := session.New(st,
		session.WithLogger(logger),
		session.WithExpiry(cfg.GetSessionTimeout(), cfg.GetWarningLead()),
		session.WithWarningFunc(func(remaining time.Duration) {
			logger.Warn().Dur("remaining", remaining).Msg("session expires soon, log in again to extend it")
		}),
	)
	if err != nil {
		_ = st.Close()
		return nil, errors.Wrap(err, "[newApp] session store")
	}

	auth, err := authclient.New(cfg.GetBackendURL(), authclient.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] auth client")
	}

	restaurants, err := restaurant.New(cfg.GetBackendURL(), store, restaurant.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] restaurant client")
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		storage:     st,
		store:       store,
		auth:        auth,
		restaurants: restaurants,
	}, nil
}

func openStorage(cfg config.Config) (storage.Storage, error) {
	var (
		st  storage.Storage
		err error
	)
	switch cfg.GetStorageBackend() {
	case "sqlite":
		st, err = storage.NewSQLiteStorage(cfg.GetStoragePath())
	default:
		st, err = storage.NewFileStorage(cfg.GetStoragePath())
	}
	if err != nil {
		return nil, err
	}

	if passphrase := cfg.GetStoragePassphrase(); passphrase != "" {
		return storage.NewSealedStorage(st, passphrase)
	}
	return st, nil
}

func (a *app) close() {
	a.store.Close()
	if err := a.storage.Close(); err != nil {
		a.logger.Error().Err(err).Msg("closing storage")
	}
}
