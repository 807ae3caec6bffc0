// Package options provides the functional-option plumbing shared by
// every configurable pipeline stage (preprocess, deskew, hough, segment,
// classify).
package options

// Option mutates a stage's private options struct. Each stage defines
// its own options type and a set of With* constructors returning Option.
type Option func(cfg interface{})

// Apply runs every option against optsStructPtr in order.
func Apply(optsStructPtr interface{}, opts ...Option) {
	for _, opt := range opts {
		opt(optsStructPtr)
	}
}
