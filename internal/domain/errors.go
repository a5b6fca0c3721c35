package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// AlreadySettledError signals an obligation that is no longer payable.
type AlreadySettledError struct {
	Resource string
}

func (e AlreadySettledError) Error() string {
	if e.Resource == "" {
		return "already settled"
	}
	return fmt.Sprintf("%s already settled", e.Resource)
}

// AmountMismatchError signals a charge amount that does not match the
// amount due on the obligation.
type AmountMismatchError struct {
	Requested float64
	Due       float64
}

func (e AmountMismatchError) Error() string {
	return fmt.Sprintf("amount %.2f does not match amount due %.2f", e.Requested, e.Due)
}

// GatewayDeclineError carries a gateway-level rejection of a charge.
// CanRetry classifies whether a fresh attempt is worth offering.
type GatewayDeclineError struct {
	Code        string
	Description string
	CanRetry    bool
}

func (e GatewayDeclineError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return fmt.Sprintf("gateway declined charge (code %s)", e.Code)
}

// GatewayTransportError covers network or config failures reaching the
// gateway, as opposed to an explicit decline.
type GatewayTransportError struct {
	Op  string
	Err error
}

func (e GatewayTransportError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway unreachable: %v", e.Err)
}

func (e GatewayTransportError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func IsAlreadySettled(err error) bool {
	var target AlreadySettledError
	return errors.As(err, &target)
}

func IsAmountMismatch(err error) bool {
	var target AmountMismatchError
	return errors.As(err, &target)
}

func IsGatewayDecline(err error) bool {
	var target GatewayDeclineError
	return errors.As(err, &target)
}

func IsGatewayTransport(err error) bool {
	var target GatewayTransportError
	return errors.As(err, &target)
}
