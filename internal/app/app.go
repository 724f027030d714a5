package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"blogapi/config"
	"blogapi/config/database"
	"blogapi/internal/post/repository"
	"blogapi/internal/post/service"
	"blogapi/pkg/logger"
	"blogapi/router"
	"blogapi/socket"
)

const shutdownTimeout = 10 * time.Second

// NewStore returns the post store selected by cfg.Store.Driver and a function
// releasing whatever it holds open.
func NewStore(ctx context.Context, cfg config.StoreConfig) (service.PostStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresRepository(db, cfg.DocumentName, cfg.StrictRead)
		if err := repo.Init(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("initialize post_documents: %w", err)
		}
		logger.Sugar.Infof("Storing posts in postgres document %q", cfg.DocumentName)
		return repo, func() { db.Close() }, nil

	case config.DriverFile:
		logger.Sugar.Infof("Storing posts in %s", cfg.DataFile)
		return repository.NewFileRepository(cfg.DataFile, cfg.StrictRead), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Run wires the store, service, change feed and router, then serves HTTP until
// ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) error {
	store, closeStore, err := NewStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := socket.NewHub()
	go hub.Run(hubCtx)

	postService := service.NewPostService(store, hub, cfg.Posts.DefaultAuthor)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router.Setup(postService, hub, cfg.HTTP.BasePath),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("Server running at http://localhost%s", srv.Addr)
		logger.Sugar.Infof("API available at http://localhost%s%s/posts", srv.Addr, cfg.HTTP.BasePath)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Sugar.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	stopHub()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
