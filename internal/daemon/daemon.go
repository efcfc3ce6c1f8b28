// Package daemon configures and starts the camsd daemon.
package daemon

import (
	"context"
	"fmt"
	"net"

	"github.com/mjgale/cams/internal/blob"
	"github.com/mjgale/cams/internal/customer"
	"github.com/mjgale/cams/internal/http"
	"github.com/mjgale/cams/internal/inmem"
	"github.com/mjgale/cams/internal/logr"
	"github.com/mjgale/cams/internal/sql"
	"golang.org/x/sync/errgroup"
)

type Daemon struct {
	Config
	logr.Logger

	*sql.DB

	Customers *customer.Service

	// ListenAddress is the listening address of the daemon's http server,
	// e.g. localhost:8080
	ListenAddress *net.TCPAddr

	handlers []http.Handlers
	blobs    blob.Store
	cache    *inmem.Cache
}

// New builds a new daemon and establishes a connection to the database and
// migrates it to the latest schema. Close() should be called to close this
// connection.
func New(ctx context.Context, logger logr.Logger, cfg Config) (*Daemon, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}

	cache, err := inmem.NewCache(*cfg.CacheConfig)
	if err != nil {
		return nil, err
	}
	logger.Info("started cache", "max_size", cfg.CacheConfig.Size, "ttl", cfg.CacheConfig.TTL)

	db, err := sql.New(ctx, logger, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	var blobs blob.Store
	if cfg.DevMode {
		logger.Info("enabled developer mode: using in-memory blob store")
		blobs = blob.NewFakeStore()
	} else {
		blobs, err = blob.NewS3Store(ctx, cfg.Blob)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("setting up blob store: %w", err)
		}
		logger.Info("connected blob store", "bucket", cfg.Blob.Bucket, "region", cfg.Blob.Region)
	}

	customerService := customer.NewService(customer.Options{
		Logger: logger,
		DB:     db,
		Blobs:  blobs,
		Cache:  cache,
	})

	handlers := []http.Handlers{
		customerService,
	}

	return &Daemon{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Customers: customerService,
		handlers:  handlers,
		blobs:     blobs,
		cache:     cache,
	}, nil
}

// Start the camsd daemon and block until ctx is cancelled or an error is
// returned. The started channel is closed once the daemon has started.
func (d *Daemon) Start(ctx context.Context, started chan struct{}) error {
	// Cancel context the first time a func started with g.Go() fails
	g, ctx := errgroup.WithContext(ctx)

	// close all db connections upon exit
	defer d.DB.Close()

	defer func() {
		if err := d.cache.Close(); err != nil {
			d.Error(err, "closing cache")
		}
	}()

	server, err := http.NewServer(d.Logger, http.ServerConfig{
		SSL:                  d.SSL,
		CertFile:             d.CertFile,
		KeyFile:              d.KeyFile,
		EnableRequestLogging: d.EnableRequestLogging,
		Handlers:             d.handlers,
	})
	if err != nil {
		return fmt.Errorf("setting up http server: %w", err)
	}
	ln, err := net.Listen("tcp", d.Address)
	if err != nil {
		return err
	}
	d.ListenAddress = ln.Addr().(*net.TCPAddr)

	defer ln.Close()

	g.Go(func() error {
		if err := server.Start(ctx, ln); err != nil {
			return fmt.Errorf("http server terminated: %w", err)
		}
		return nil
	})

	// Inform the caller the daemon has started
	close(started)

	// Block until error or Ctrl-C received.
	return g.Wait()
}
