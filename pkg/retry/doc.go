// Package retry provides exponential backoff and retry logic for handling
// transient failures in network operations against the hosting site.
//
// Features:
//   - Exponential and constant backoff strategies
//   - Jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Configurable retry predicates
//   - Integration with the crawler's typed errors
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return client.Ping()
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 6,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    1 * time.Second,
//			MaxDelay:     60 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// Only server errors (HTTP 500, 502, 503, 504) are retryable under the
// default predicate; connection failures and client errors propagate to the
// caller on the first attempt.
package retry
