package runtime

import (
	"errors"
	"fmt"

	"github.com/pithecene-io/relay/drain"
	"github.com/pithecene-io/relay/reassemble"
	"github.com/pithecene-io/relay/submit"
	"github.com/pithecene-io/relay/types"
)

// Process exit codes for `relay run`.
const (
	ExitCodeSuccess               = 0
	ExitCodeTransportError        = 1
	ExitCodeInsufficientFragments = 2
	ExitCodeEmptyPhrase           = 3
	ExitCodeSinkOrConfig          = 4
)

// ExitCodeFor maps an outcome status to the process exit code.
func ExitCodeFor(status types.OutcomeStatus) int {
	switch status {
	case types.OutcomeSuccess:
		return ExitCodeSuccess
	case types.OutcomeTransportError:
		return ExitCodeTransportError
	case types.OutcomeInsufficientFragments:
		return ExitCodeInsufficientFragments
	case types.OutcomeEmptyPhrase:
		return ExitCodeEmptyPhrase
	default:
		return ExitCodeSinkOrConfig
	}
}

// DetermineOutcome classifies a stage error into a run outcome.
//
//   - *reassemble.InsufficientFragmentsError: insufficient_fragments
//   - submit.ErrEmptyPhrase: empty_phrase
//   - context cancellation and queue failures: transport_error
//
// Sink failures are classified by the orchestrator, which knows the stage.
func DetermineOutcome(err error) *types.RunOutcome {
	if err == nil {
		return &types.RunOutcome{
			Status:  types.OutcomeSuccess,
			Message: "phrase submitted",
		}
	}

	var insufficient *reassemble.InsufficientFragmentsError
	switch {
	case errors.As(err, &insufficient):
		return &types.RunOutcome{
			Status:  types.OutcomeInsufficientFragments,
			Message: insufficient.Error(),
		}
	case errors.Is(err, submit.ErrEmptyPhrase):
		return &types.RunOutcome{
			Status:  types.OutcomeEmptyPhrase,
			Message: "reassembled phrase is empty",
		}
	case drain.IsCanceled(err):
		return &types.RunOutcome{
			Status:  types.OutcomeTransportError,
			Message: fmt.Sprintf("run canceled: %v", err),
		}
	default:
		return &types.RunOutcome{
			Status:  types.OutcomeTransportError,
			Message: err.Error(),
		}
	}
}

// sinkFailure builds the outcome for a rejected artifact write.
func sinkFailure(stage string, err error) *types.RunOutcome {
	return &types.RunOutcome{
		Status:  types.OutcomeSinkFailure,
		Message: fmt.Sprintf("%s artifact write failed: %v", stage, err),
	}
}
