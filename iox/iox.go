// Package iox holds small cleanup helpers shared by the sinks, adapters
// and commands.
package iox

import (
	"errors"
	"io"
)

// DiscardClose closes c and drops the error. For deferred cleanup where
// nothing can act on a close failure:
//
//	defer iox.DiscardClose(sink)
func DiscardClose(c io.Closer) { _ = c.Close() }

// DiscardErr calls fn and drops the error, e.g. for logger flushes:
//
//	defer iox.DiscardErr(logger.Sync)
func DiscardErr(fn func() error) { _ = fn() }

// CloseAll closes every non-nil closer in order, even after a failure,
// and joins the errors.
func CloseAll(closers ...io.Closer) error {
	var errs []error
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
