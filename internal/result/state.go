package result

// Kind tags the state of a pipeline stage.
type Kind int

const (
	NotStarted Kind = iota
	Computed
	Failed
)

func (k Kind) String() string {
	switch k {
	case Computed:
		return "computed"
	case Failed:
		return "failed"
	default:
		return "not_started"
	}
}

// State is the outcome of one stage: not started, a computed record, or a
// failure with a human-readable cause. The zero value is NotStarted.
type State struct {
	kind   Kind
	record Record
	cause  string
	err    error
}

// Compute returns a Computed state holding rec.
func Compute(rec Record) State {
	return State{kind: Computed, record: rec}
}

// Fail returns a Failed state. err may be nil.
func Fail(cause string, err error) State {
	return State{kind: Failed, cause: cause, err: err}
}

func (s State) Kind() Kind { return s.kind }

// Record returns the computed record; ok is false for any other state.
func (s State) Record() (Record, bool) {
	if s.kind != Computed {
		return Record{}, false
	}
	return s.record, true
}

func (s State) Cause() string { return s.cause }

func (s State) Err() error { return s.err }
