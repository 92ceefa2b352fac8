package governance

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNoActivePolicy indicates no governance policy is currently active.
	ErrNoActivePolicy = errors.New("no active governance policy")

	// ErrModelNotFound indicates the referenced model does not exist.
	ErrModelNotFound = errors.New("model not found")
)

// InvalidStateError indicates the model's current lifecycle status does not
// permit the requested action.
type InvalidStateError struct {
	ModelID string
	Status  Status
	Action  string
}

// Error returns the error message.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("model %s: action %q not permitted in status %q", e.ModelID, e.Action, e.Status)
}

// AlreadyIngestedError indicates a model already has stored samples and a
// second ingestion run was attempted. Ingestion is at-most-once per model.
type AlreadyIngestedError struct {
	ModelID string
	Count   int
}

// Error returns the error message.
func (e *AlreadyIngestedError) Error() string {
	return fmt.Sprintf("model %s: %d samples already ingested, ingestion runs at most once per model", e.ModelID, e.Count)
}

// DuplicateIngestionError indicates the sample store refused an append
// because samples already exist and additive mode was not requested.
type DuplicateIngestionError struct {
	ModelID string
	Count   int
}

// Error returns the error message.
func (e *DuplicateIngestionError) Error() string {
	return fmt.Sprintf("model %s: store already holds %d samples and additive append was not requested", e.ModelID, e.Count)
}

// OverrideRequiredError indicates deploying an at_risk model requires an
// explicit override with a non-empty justification.
type OverrideRequiredError struct {
	ModelID string
}

// Error returns the error message.
func (e *OverrideRequiredError) Error() string {
	return fmt.Sprintf("model %s: deployment of an at_risk model requires override with a justification", e.ModelID)
}

// BlockedError indicates deployment was refused because the model is
// blocked. Blocked models have no override path.
type BlockedError struct {
	ModelID string
	Reason  string
}

// Error returns the error message.
func (e *BlockedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("model %s: deployment blocked: %s", e.ModelID, e.Reason)
	}
	return fmt.Sprintf("model %s: deployment blocked", e.ModelID)
}

// InsufficientDataError indicates a sample population is too small for drift
// computation.
type InsufficientDataError struct {
	Population BatchTag
	Count      int
	Min        int
}

// Error returns the error message.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s population has %d samples, need at least %d", e.Population, e.Count, e.Min)
}

// InsufficientGroupDataError indicates a protected-attribute group is too
// small for fairness computation.
type InsufficientGroupDataError struct {
	Group string
	Count int
	Min   int
}

// Error returns the error message.
func (e *InsufficientGroupDataError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("need at least two protected-attribute groups with %d samples each", e.Min)
	}
	return fmt.Sprintf("group %q has %d samples, need at least %d", e.Group, e.Count, e.Min)
}

// IncompleteComputationError indicates a governance run produced an empty or
// missing metric set. An absent metric is never treated as a computed zero;
// the run is aborted and rolled back instead.
type IncompleteComputationError struct {
	ModelID string
	Stage   string
}

// Error returns the error message.
func (e *IncompleteComputationError) Error() string {
	return fmt.Sprintf("model %s: stage %q produced no metrics", e.ModelID, e.Stage)
}

// NotFoundError indicates a referenced record does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// StorageError wraps a persistence failure with the operation that failed.
type StorageError struct {
	Op    string
	Cause error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{Op: op, Cause: cause}
}

// IsValidationError reports whether err is a caller-correctable precondition
// failure (bad state, duplicate ingestion, missing override, hard block,
// insufficient data). These surface as 4xx-equivalent responses.
func IsValidationError(err error) bool {
	var (
		invalidState  *InvalidStateError
		alreadyDone   *AlreadyIngestedError
		duplicate     *DuplicateIngestionError
		needsOverride *OverrideRequiredError
		blocked       *BlockedError
		thinData      *InsufficientDataError
		thinGroup     *InsufficientGroupDataError
	)
	return errors.As(err, &invalidState) ||
		errors.As(err, &alreadyDone) ||
		errors.As(err, &duplicate) ||
		errors.As(err, &needsOverride) ||
		errors.As(err, &blocked) ||
		errors.As(err, &thinData) ||
		errors.As(err, &thinGroup)
}
