// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/pdiddy/sparos/internal/directory"
)

// Kind classifies a resolution failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInput
	KindUpstream
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindUpstream:
		return "upstream"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrInput      = errors.New("resolve: invalid input")
	ErrUpstream   = errors.New("resolve: upstream error")
	ErrNotFound   = errors.New("resolve: not found")
	ErrValidation = errors.New("resolve: no valid account")
)

// Text codes attached to service errors.
const (
	TextCodeInvalidHandle  = "INVALID_HANDLE"
	TextCodeUpstream       = "UPSTREAM_ERROR"
	TextCodeNotFound       = "ACCOUNT_NOT_FOUND"
	TextCodeNoValidAccount = "NO_VALID_ACCOUNT"
)

const defaultUpstreamMessage = "Bungie API returned an error"

// Error is a typed resolution failure. Message is what the caller shows.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindInput:
		return target == ErrInput
	case KindUpstream:
		return target == ErrUpstream
	case KindNotFound:
		return target == ErrNotFound
	case KindValidation:
		return target == ErrValidation
	}
	return false
}

// ToServiceError maps the failure onto a go-errors category, HTTP code
// and text code.
func (e *Error) ToServiceError() *goerrors.Error {
	category, code, textCode := goerrors.CategoryInternal, http.StatusInternalServerError, "INTERNAL"
	switch e.Kind {
	case KindInput:
		category, code, textCode = goerrors.CategoryBadInput, http.StatusBadRequest, TextCodeInvalidHandle
	case KindUpstream:
		category, code, textCode = goerrors.CategoryExternal, http.StatusBadGateway, TextCodeUpstream
	case KindNotFound:
		category, code, textCode = goerrors.CategoryNotFound, http.StatusNotFound, TextCodeNotFound
	case KindValidation:
		category, code, textCode = goerrors.CategoryValidation, http.StatusUnprocessableEntity, TextCodeNoValidAccount
	}

	var se *goerrors.Error
	if e.Cause != nil {
		se = goerrors.Wrap(e.Cause, category, e.Message)
	} else {
		se = goerrors.New(e.Message, category)
	}
	return se.WithCode(code).
		WithTextCode(textCode).
		WithMetadata(map[string]any{"kind": e.Kind.String()})
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

func inputError(msg string) error {
	return &Error{Kind: KindInput, Message: msg}
}

func notFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// upstreamError surfaces the upstream message when the gateway supplied
// one, otherwise a generic message with the transport cause.
func upstreamError(err error) error {
	var apiErr *directory.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = defaultUpstreamMessage
		}
		return &Error{Kind: KindUpstream, Message: msg, Cause: err}
	}
	return &Error{Kind: KindUpstream, Message: "Bungie API request failed: " + err.Error(), Cause: err}
}
