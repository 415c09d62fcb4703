package core

import (
	"errors"
	"fmt"
)

// Kind is the closed error taxonomy. Every error this module returns,
// at any layer, collapses into one of these by the time it crosses a
// strategy boundary.
type Kind string

const (
	KindClient             Kind = "ClientError"
	KindInvalidConfig      Kind = "InvalidConfiguration"
	KindNoSolutions        Kind = "NoSolutions"
	KindNoVerifiedSolution Kind = "NoVerifiedSolutions"
	KindParsing            Kind = "ParsingError"
	KindAnswerExtraction   Kind = "AnswerExtractionError"
	KindTimeout            Kind = "Timeout"
	KindAggregation        Kind = "AggregationError"
	KindVerification       Kind = "VerificationError"
	KindStrategyExtraction Kind = "StrategyExtractionError"
	KindCoordinator        Kind = "CoordinatorError"
	KindCore               Kind = "CoreError"
)

// Error is the single wrapping error type used across the module. Op
// names the operation that failed (e.g. "backend.ollama.Stream",
// "strategy.bestofn.Run"); Message is the human-readable text surfaced
// to the CLI; Err, if set, is the underlying cause whose text is
// preserved via Unwrap/Error.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap constructs an *Error of the given kind around a cause, preserving
// the cause's text.
func Wrap(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// KindOf returns the Kind of err if it (or something it wraps) is an
// *Error, and false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func isKind(err error, k Kind) bool {
	kind, ok := KindOf(err)
	return ok && kind == k
}

func IsClient(err error) bool             { return isKind(err, KindClient) }
func IsInvalidConfig(err error) bool      { return isKind(err, KindInvalidConfig) }
func IsNoSolutions(err error) bool        { return isKind(err, KindNoSolutions) }
func IsNoVerifiedSolution(err error) bool { return isKind(err, KindNoVerifiedSolution) }
func IsParsing(err error) bool            { return isKind(err, KindParsing) }
func IsAnswerExtraction(err error) bool   { return isKind(err, KindAnswerExtraction) }
func IsTimeout(err error) bool            { return isKind(err, KindTimeout) }
func IsAggregation(err error) bool        { return isKind(err, KindAggregation) }
func IsVerification(err error) bool       { return isKind(err, KindVerification) }
func IsStrategyExtraction(err error) bool { return isKind(err, KindStrategyExtraction) }
func IsCoordinator(err error) bool        { return isKind(err, KindCoordinator) }
