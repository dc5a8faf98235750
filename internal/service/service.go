// Package service holds business logic orchestration across the live engine,
// repositories and handlers. Kept intentionally lean: only use-case
// coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// NewInvalidInputError exposes the aggregated validation error to other
// layers (handlers validate path parameters with it).
func NewInvalidInputError(fe []FieldError) error { return newInvalidInput(fe) }

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// CreateMatchInput carries everything needed to schedule a match.
type CreateMatchInput struct {
	HomeTeamID   int64
	AwayTeamID   int64
	HomeTeamName string
	AwayTeamName string
	Venue        string
	Date         time.Time
	HomeRoster   []int64
	AwayRoster   []int64
	Description  string
}

// RecordEventInput carries one ledger event from the client.
type RecordEventInput struct {
	PlayerID       int64
	TeamID         int64
	Kind           model.EventKind
	Description    string
	PointsOverride *int
}

// MatchService defines the match lifecycle and live-control use cases.
type MatchService interface {
	CreateMatch(ctx context.Context, in CreateMatchInput) (model.Match, error)
	GetMatch(ctx context.Context, id int64) (model.Match, error)
	ListMatches(ctx context.Context, page repository.Page) (repository.PageResult[model.Match], error)

	Start(ctx context.Context, id int64) (model.Snapshot, error)
	Finish(ctx context.Context, id int64) (model.Snapshot, error)
	Cancel(ctx context.Context, id int64) (model.Snapshot, error)
	AdvancePeriod(ctx context.Context, id int64) (model.Snapshot, error)
	RecordScore(ctx context.Context, id int64, side model.TeamSide, points int) (model.Snapshot, error)
	AdjustFoul(ctx context.Context, id int64, side model.TeamSide, delta int) (model.Snapshot, error)
	AdjustTimeout(ctx context.Context, id int64, side model.TeamSide, delta int) (model.Snapshot, error)

	StartClock(ctx context.Context, id int64) error
	PauseClock(ctx context.Context, id int64) (model.Snapshot, error)
	ResetClock(ctx context.Context, id int64) (model.Snapshot, error)
	Save(ctx context.Context, id int64) (model.Snapshot, error)

	LiveSnapshot(ctx context.Context, id int64) (model.Snapshot, error)
}

// EventService defines ledger and box-score use cases.
type EventService interface {
	RecordEvent(ctx context.Context, matchID int64, in RecordEventInput) (model.Event, error)
	ListEvents(ctx context.Context, matchID int64) ([]model.Event, error)
	ListBoxScores(ctx context.Context, matchID int64) ([]model.BoxScore, error)
	GetBoxScore(ctx context.Context, matchID, playerID int64) (model.BoxScore, error)
}
