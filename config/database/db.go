package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blogapi/pkg/logger"

	_ "github.com/lib/pq"
)

const (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// Connect opens a postgres connection for dsn and pings it, retrying a few
// times in case of temporary DNS/network blips.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	for i := 0; i < connectAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return db, nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", retryDelay, err)

		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, err)
}
