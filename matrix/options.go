// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for FeatureMatrix construction.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors,
//   - gatherOptions helper (internal).
//
// Notes:
//   - NaN is a legal cell value by default: a computed-but-undefined cell is
//     not the same thing as a missing cell, and the engine never converts one
//     into the other. WithValidateNaNInf turns on strict ingestion for callers
//     that want finite data only.
package matrix

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultValidateNaNInf toggles strict finite-value validation on ingestion and Set.
	DefaultValidateNaNInf = false

	// DefaultCopyIDs controls whether NewFeatureMatrix copies the id slices
	// it is given. Cell values are always copied into the flat buffer.
	DefaultCopyIDs = true
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options carries construction policy for FeatureMatrix.
type Options struct {
	validateNaNInf bool
	copyIDs        bool
}

// WithValidateNaNInf rejects NaN and ±Inf cells with ErrNaNInf on ingestion and Set.
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf accepts any float64 cell value (default).
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// WithSharedIDs makes the matrix keep the caller's id slices instead of
// copying them. The caller must not mutate the slices afterwards.
func WithSharedIDs() Option {
	return func(o *Options) { o.copyIDs = false }
}

// defaultOptions returns the zero-configuration policy.
func defaultOptions() Options {
	return Options{
		validateNaNInf: DefaultValidateNaNInf,
		copyIDs:        DefaultCopyIDs,
	}
}

// gatherOptions applies user options over the defaults in order; the last
// writer wins for each field.
func gatherOptions(user ...Option) Options {
	o := defaultOptions()
	for _, opt := range user {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
