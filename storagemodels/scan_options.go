/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "time"

// ScanOptions configures key enumeration and retried writes in a backend.
type ScanOptions struct {
	PageSize     int32         // Keys requested per page (default: 100)
	MaxRetries   uint64        // Retry attempts for contended or transient writes (default: 10)
	RetryBackoff time.Duration // Base backoff between retries (default: 10ms)
}

// ScanOption is a functional option for configuring a backend
type ScanOption func(*ScanOptions)

// DefaultScanOptions returns default scan options
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		PageSize:     100,
		MaxRetries:   10,
		RetryBackoff: 10 * time.Millisecond,
	}
}

// Apply returns the defaults with opts applied in order.
func Apply(opts ...ScanOption) ScanOptions {
	o := DefaultScanOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPageSize sets the page size used when enumerating keys
func WithPageSize(size int32) ScanOption {
	return func(opts *ScanOptions) {
		if size > 0 {
			opts.PageSize = size
		}
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries uint64) ScanOption {
	return func(opts *ScanOptions) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the base retry backoff duration
func WithRetryBackoff(backoff time.Duration) ScanOption {
	return func(opts *ScanOptions) {
		if backoff > 0 {
			opts.RetryBackoff = backoff
		}
	}
}
