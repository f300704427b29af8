package ai

import "errors"

// Domain errors.
var (
	// ErrProviderFailure marks any outbound provider error: network failure,
	// timeout, provider-side error payload, or unusable response content.
	// Callers decide how to degrade; the router never swallows it.
	ErrProviderFailure = errors.New("ai provider failure")

	// ErrUnknownModel is returned when the rate table has no entry for a
	// model. Fails closed: a zero-cost default would corrupt accounting.
	ErrUnknownModel = errors.New("unknown model in rate table")

	// ErrUnknownProvider is returned when no adapter is registered under the
	// requested provider name.
	ErrUnknownProvider = errors.New("unknown ai provider")

	// ErrEmptyMessages is returned when a chat request carries no messages.
	ErrEmptyMessages = errors.New("no messages to route")
)
