package checkin

// OutcomeKind tags the result of one workflow run.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeAlreadyDone
	OutcomeAuthInvalid
	OutcomeAPIError
	OutcomeNetworkFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAlreadyDone:
		return "already_done"
	case OutcomeAuthInvalid:
		return "auth_invalid"
	case OutcomeAPIError:
		return "api_error"
	case OutcomeNetworkFailure:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one check-in workflow run.
type Outcome struct {
	Kind    OutcomeKind
	Reward  string // display name, success only
	Count   int    // reward count, success only
	Message string // upstream message for error kinds
}

// Succeeded reports whether the workflow confirmed a checked-in state.
// Already-done counts as success.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess || o.Kind == OutcomeAlreadyDone
}
