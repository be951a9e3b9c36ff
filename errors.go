package crossing

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode represents specific error conditions raised at the engine's edges
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// No transition matches the event in the signal's current state
	ErrCodeTransitionNotAllowed
	// Transition or entry action failed
	ErrCodeActionFailed
	// Configuration is invalid
	ErrCodeInvalidConfiguration
	// Engine is in a state that does not allow the operation
	ErrCodeInvalidState
	// Engine is not running
	ErrCodeNotRunning
)

// TransitionError represents a signal event that could not be applied
type TransitionError struct {
	Code      ErrorCode
	Direction Direction
	From      LightState
	Event     string
	Reason    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition error [%s %s on %s]: %s", e.Direction, e.From, e.Event, e.Reason)
}

// NewNoTransitionError creates an error for an event with no matching transition
func NewNoTransitionError(direction Direction, from LightState, event string) *TransitionError {
	return &TransitionError{
		Code:      ErrCodeTransitionNotAllowed,
		Direction: direction,
		From:      from,
		Event:     event,
		Reason:    fmt.Sprintf("no transition from '%s' for event '%s'", from, event),
	}
}

// ConfigurationError represents engine configuration issues
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// MachineError represents engine lifecycle errors
type MachineError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *MachineError) Error() string {
	return fmt.Sprintf("engine error during %s: %s", e.Operation, e.Message)
}

// NewMachineError creates a new engine lifecycle error
func NewMachineError(code ErrorCode, operation string, message string) *MachineError {
	return &MachineError{
		Code:      code,
		Operation: operation,
		Message:   message,
	}
}

// ActionError wraps a failure returned by a signal entry or transition action
type ActionError struct {
	Action      string
	Direction   Direction
	State       LightState
	OriginalErr error
}

func (e *ActionError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s action failed for %s in '%s': %v", e.Action, e.Direction, e.State, e.OriginalErr)
	}
	return fmt.Sprintf("%s action failed for %s in '%s'", e.Action, e.Direction, e.State)
}

func (e *ActionError) Unwrap() error {
	return e.OriginalErr
}

// NewActionError creates a new action execution error
func NewActionError(action string, direction Direction, state LightState, err error) *ActionError {
	return &ActionError{
		Action:      action,
		Direction:   direction,
		State:       state,
		OriginalErr: err,
	}
}

// IsTransitionError checks if an error is or wraps a TransitionError
func IsTransitionError(err error) bool {
	var target *TransitionError
	return errors.As(err, &target)
}

// IsConfigurationError checks if an error is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsMachineError checks if an error is or wraps a MachineError
func IsMachineError(err error) bool {
	var target *MachineError
	return errors.As(err, &target)
}

// IsActionError checks if an error is or wraps an ActionError
func IsActionError(err error) bool {
	var target *ActionError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		transitionErr *TransitionError
		machineErr    *MachineError
		configErr     *ConfigurationError
		actionErr     *ActionError
	)
	switch {
	case errors.As(err, &transitionErr):
		return transitionErr.Code
	case errors.As(err, &machineErr):
		return machineErr.Code
	case errors.As(err, &configErr):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &actionErr):
		return ErrCodeActionFailed
	default:
		return ErrCodeNone
	}
}
