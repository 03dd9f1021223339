package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	connectAttempts = 5
	pingTimeout     = 5 * time.Second
)

// withRetry повторяет подключение с экспоненциальной паузой, пока connect не
// вернет nil, число попыток не исчерпается или ctx не будет отменен.
func withRetry(ctx context.Context, backend string, connect func(ctx context.Context) error) error {
	backoff := time.Second

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = connect(ctx); err == nil {
			return nil
		}

		slog.Warn("storage connection attempt failed",
			slog.String("backend", backend),
			slog.Int("attempt", attempt),
			slog.Int("attempts", connectAttempts),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()),
		)

		if attempt == connectAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return fmt.Errorf("connect to %s after %d attempts: %w", backend, connectAttempts, err)
}

func ping(ctx context.Context, check func(ctx context.Context) error) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return check(pingCtx)
}
