package types

// Fragment is one ordered piece of the final phrase, carried by a single
// queue message. Either field may be absent when the message attributes
// were missing or malformed; such fragments are kept but never reassembled.
type Fragment struct {
	// OrderIndex is the position of the fragment in the phrase.
	OrderIndex *int `json:"order_no" msgpack:"order_no"`
	// Text is the fragment word.
	Text *string `json:"word" msgpack:"word"`
}

// NewFragment builds a fully populated fragment.
func NewFragment(index int, text string) Fragment {
	return Fragment{OrderIndex: &index, Text: &text}
}

// Valid reports whether both fields are present and the text is non-empty.
func (f Fragment) Valid() bool {
	return f.OrderIndex != nil && f.Text != nil && *f.Text != ""
}

// FragmentSet is the arrival-ordered collection produced by one drain.
type FragmentSet []Fragment

// Valid returns the valid fragments in arrival order.
func (s FragmentSet) Valid() []Fragment {
	valid := make([]Fragment, 0, len(s))
	for _, f := range s {
		if f.Valid() {
			valid = append(valid, f)
		}
	}
	return valid
}

// InvalidCount returns the number of fragments excluded from reassembly.
func (s FragmentSet) InvalidCount() int {
	n := 0
	for _, f := range s {
		if !f.Valid() {
			n++
		}
	}
	return n
}
