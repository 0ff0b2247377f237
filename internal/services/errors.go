// Package services defines the business logic for macro management and
// generation. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrMacroNotFound indicates that the requested macro does not exist.
	ErrMacroNotFound = errors.New("macro not found")

	// ErrTemplateNotFound indicates that a template reference on a
	// generation request does not resolve to a stored macro.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrDescriptionRequired is returned when AI generation is requested
	// without a description to use as the prompt.
	ErrDescriptionRequired = errors.New("description is required for AI generation")

	// ErrNothingToGenerate is returned when a generation request carries
	// neither a template reference nor an AI-generation request.
	ErrNothingToGenerate = errors.New("either a template reference or a description with AI generation must be provided")

	// ErrInvalidCategory is returned when a supplied category label is not
	// in the closed category set.
	ErrInvalidCategory = errors.New("invalid macro category")

	// ErrGenerationFailed wraps failures of the external generation call
	// (API error or timeout).
	ErrGenerationFailed = errors.New("macro generation failed")
)
