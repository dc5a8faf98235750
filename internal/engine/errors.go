package engine

import "errors"

// Domain errors surfaced by the live engine. Callers branch with errors.Is;
// the HTTP layer maps them to statuses in pkg/response.
var (
	// ErrInvalidTransition marks an illegal state-machine move, e.g. starting
	// a match that is already in progress.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidArgument marks a bad points or delta value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMatchNotActive marks an event or score applied to a match that is
	// not in progress.
	ErrMatchNotActive = errors.New("match not active")

	// ErrUnknownEventKind marks an event whose kind is not one of the
	// recordable kinds.
	ErrUnknownEventKind = errors.New("unknown event kind")

	// ErrAggregationFailed marks a partial write inside the stat aggregator.
	// The event is not applied and the caller may re-submit the same event.
	ErrAggregationFailed = errors.New("aggregation failed")

	// ErrPersistenceUnavailable marks a failed or timed-out call to the
	// persistence collaborator. In-memory state remains authoritative.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
