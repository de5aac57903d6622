package input

import "fmt"

// InputError reports a malformed pointer, touch or resize payload. The event
// is dropped: tracker state and the viewport are left unchanged.
type InputError struct {
	Event  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %s", e.Event, e.Reason)
}
