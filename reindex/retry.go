// Copyright 2025 Paul David Fisher
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"log/slog"
	"time"
)

// maxBackoffDelay caps how far the per-attempt delay can grow.
const maxBackoffDelay = 30 * time.Second

// backoffDelay returns the sleep before retry number attempt+1:
// baseDelay doubled once per completed attempt, capped at
// maxBackoffDelay.
func backoffDelay(baseDelay time.Duration, attempt int) time.Duration {
	delay := baseDelay
	for i := 1; i < attempt && delay < maxBackoffDelay; i++ {
		delay *= 2
	}
	if delay > maxBackoffDelay {
		return maxBackoffDelay
	}
	return delay
}

// RetryWithBackoff runs operation until it succeeds, making up to
// maxAttempts attempts with exponential backoff between them. The
// error of the final attempt is returned unwrapped; a cancelled
// context cuts both the attempts and the sleeps short.
// maxAttempts must be > 0.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation()
		if err == nil {
			if attempt > 1 {
				slog.Debug("rebuild recovered", "attempt", attempt)
			}
			return nil
		}
		if attempt >= maxAttempts {
			return err
		}
		slog.Debug("rebuild attempt failed",
			"attempt", attempt, "remaining", maxAttempts-attempt, "error", err)

		timer := time.NewTimer(backoffDelay(baseDelay, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
