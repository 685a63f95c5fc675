package planner

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for errors.Is checks.
var (
	ErrValidation  = errors.New("invalid profile")
	ErrComputation = errors.New("plan computation failed")
)

// ValidationError reports a profile field that is missing, malformed or out of range.
type ValidationError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrValidation, e.Field, e.Constraint)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, constraint string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Constraint: fmt.Sprintf(constraint, args...)}
}

// ComputationError reports a non-finite intermediate result. It indicates a bug
// in the engine rather than bad input.
type ComputationError struct {
	Stage string
	Field string
	Value float64
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%v: %s.%s is %v", ErrComputation, e.Stage, e.Field, e.Value)
}

// Is makes errors.Is(err, ErrComputation) match.
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}

// WarningKind classifies non-fatal conditions attached to a plan.
type WarningKind string

// InsufficientData marks a value derived from a fallback heuristic.
const InsufficientData WarningKind = "InsufficientData"

// Warning is a non-fatal note attached to a Plan.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
}

// finiteCheck is one named value verified before a plan is returned.
type finiteCheck struct {
	stage string
	field string
	value float64
}

func checkFinite(checks ...finiteCheck) error {
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ComputationError{Stage: c.stage, Field: c.field, Value: c.value}
		}
	}
	return nil
}
