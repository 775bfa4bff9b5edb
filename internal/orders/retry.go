package orders

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/dshills/posengine/internal/storage"
)

// saveAttempts bounds the optimistic-concurrency loop: the first write plus
// exactly one reload-and-retry. A second conflict is returned to the caller.
const saveAttempts = 2

// retryOnConflict runs fn until it succeeds, fails with anything other than
// storage.ErrConflict, or uses up saveAttempts. Every attempt is expected to
// reload its state, so retries carry no data between them.
func retryOnConflict[T any](ctx context.Context, log logrus.FieldLogger, fn func(attempt int) (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 1; attempt <= saveAttempts; attempt++ {
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return zero, err
		}

		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt < saveAttempts {
			log.WithField("attempt", attempt).Warn("order changed concurrently, reloading and retrying")
		}
	}

	return zero, lastErr
}
