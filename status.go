package vmutils

// Status is a caller-supplied slot receiving the outcome of an operation that
// reports failure without returning an error. Operations taking a *Status
// reset it on entry, so after the call it describes that call only.
//
// The zero value is ready to use and reports success.
type Status struct {
	err error
}

// Err returns the recorded failure, or nil.
func (s *Status) Err() error {
	if s == nil {
		return nil
	}

	return s.err
}

// OK reports whether no failure has been recorded.
func (s *Status) OK() bool {
	return s.Err() == nil
}

// Set records err. A nil err leaves any earlier failure in place.
func (s *Status) Set(err error) {
	if s == nil || err == nil {
		return
	}

	s.err = err
}

// Reset clears the recorded failure.
func (s *Status) Reset() {
	if s != nil {
		s.err = nil
	}
}

func (s *Status) String() string {
	if err := s.Err(); err != nil {
		return err.Error()
	}

	return "ok"
}
