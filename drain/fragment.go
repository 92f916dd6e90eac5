package drain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pithecene-io/relay/queue"
	"github.com/pithecene-io/relay/types"
)

// ErrMalformedFragment matches every MalformedFragmentError via errors.Is.
var ErrMalformedFragment = errors.New("malformed fragment")

// MalformedFragmentError describes one bad attribute on a source message.
// It never aborts a drain: the fragment is recorded with the field absent.
type MalformedFragmentError struct {
	// Attribute is the offending attribute name (order_no or word).
	Attribute string
	// Value is the raw attribute value, empty when the attribute was absent.
	Value string
	// Reason is "missing", "empty", or "not an integer".
	Reason string
}

func (e *MalformedFragmentError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: attribute %s %s", ErrMalformedFragment, e.Attribute, e.Reason)
	}
	return fmt.Sprintf("%s: attribute %s=%q %s", ErrMalformedFragment, e.Attribute, e.Value, e.Reason)
}

// Is reports whether target is ErrMalformedFragment.
func (e *MalformedFragmentError) Is(target error) bool {
	return target == ErrMalformedFragment
}

// ParseFragment builds a fragment from message attributes.
//
// The fragment is always returned. When an attribute is missing or the
// index is not a decimal integer, that field is left nil and the returned
// error lists every problem found.
func ParseFragment(attrs map[string]string) (types.Fragment, error) {
	var frag types.Fragment
	var errs []error

	raw, ok := attrs[queue.AttrOrderNo]
	switch {
	case !ok:
		errs = append(errs, &MalformedFragmentError{Attribute: queue.AttrOrderNo, Reason: "missing"})
	default:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, &MalformedFragmentError{Attribute: queue.AttrOrderNo, Value: raw, Reason: "not an integer"})
		} else {
			frag.OrderIndex = &n
		}
	}

	word, ok := attrs[queue.AttrWord]
	switch {
	case !ok:
		errs = append(errs, &MalformedFragmentError{Attribute: queue.AttrWord, Reason: "missing"})
	default:
		frag.Text = &word
		if word == "" {
			errs = append(errs, &MalformedFragmentError{Attribute: queue.AttrWord, Reason: "empty"})
		}
	}

	return frag, errors.Join(errs...)
}
