package domain

import "fmt"

// EngineError is the unified error type for the engine.
// Each error has a numeric code and human-readable message.
type EngineError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// Is reports whether target is an EngineError with the same code, so that
// errors built with NewEngineError still match their sentinel.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewEngineError creates a new EngineError.
func NewEngineError(code int, msg string) *EngineError {
	return &EngineError{Code: code, Message: msg}
}

// WrapEngineError creates an EngineError that includes a cause.
func WrapEngineError(code int, msg string, cause error) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf("%s: %v", msg, cause)}
}

// ---- Generation / Registry errors (-32010 to -32039) ----

var (
	ErrNoRouteAvailable      = &EngineError{Code: -32010, Message: "no route available from origin"}
	ErrMissionNotFound       = &EngineError{Code: -32011, Message: "mission not found or not available"}
	ErrMissionConflict       = &EngineError{Code: -32012, Message: "an active mission of this kind is already in progress"}
	ErrNoCapableResource     = &EngineError{Code: -32013, Message: "no operational ship meets the mission requirements"}
	ErrInvalidTransition     = &EngineError{Code: -32014, Message: "invalid mission state transition"}
	ErrUnknownKind           = &EngineError{Code: -32015, Message: "unknown mission kind"}
	ErrNoPendingInterruption = &EngineError{Code: -32016, Message: "mission has no pending interruption"}
	ErrMissionNotCompleted   = &EngineError{Code: -32017, Message: "only completed missions can be pruned"}
	ErrDuplicateMission      = &EngineError{Code: -32018, Message: "mission already exists"}
	ErrMissionNotActive      = &EngineError{Code: -32019, Message: "mission is not active"}
)

// ---- Fleet errors (-32040 to -32069) ----

var (
	ErrResourceNotFound  = &EngineError{Code: -32040, Message: "ship not found"}
	ErrResourceBusy      = &EngineError{Code: -32041, Message: "ship is assigned to an active mission"}
	ErrDuplicateResource = &EngineError{Code: -32042, Message: "ship already exists"}
	ErrResourceNotBound  = &EngineError{Code: -32043, Message: "ship is not assigned"}
)

// ---- Store / Config errors (-32130 to -32159) ----

var (
	ErrStoreInit       = &EngineError{Code: -32130, Message: "failed to initialize store"}
	ErrStoreQuery      = &EngineError{Code: -32131, Message: "store query failed"}
	ErrStoreWrite      = &EngineError{Code: -32132, Message: "store write failed"}
	ErrSchemaMigration = &EngineError{Code: -32133, Message: "schema migration failed"}
	ErrConfigInvalid   = &EngineError{Code: -32136, Message: "invalid configuration"}
	ErrWorldInvalid    = &EngineError{Code: -32137, Message: "invalid world definition"}
	ErrPlayerNotFound  = &EngineError{Code: -32138, Message: "player not found"}
	ErrLocationUnknown = &EngineError{Code: -32139, Message: "location not found"}
)

// ---- Request guard errors (-32160 to -32169) ----

var (
	ErrRateLimitExceeded = &EngineError{Code: -32160, Message: "rate limit exceeded"}
)
