// Package pluto loads the pluto.tv channel catalog and program guide and
// composes playable stream URLs for its channels.
package pluto

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is returned when the provider could not be reached, answered
	// with a non-200 status or sent an empty document.
	ErrTransport = errors.New("transport failure")
	// ErrUpstreamUnavailable is returned when the schedule endpoint answered with an empty body.
	ErrUpstreamUnavailable = fmt.Errorf("%w: upstream unavailable", ErrTransport)
	// ErrMalformedResponse is returned when a provider document is not valid JSON
	// or does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrDataIntegrity is returned when two catalog entries derive the same channel ID.
	ErrDataIntegrity = errors.New("data integrity fault")
	// ErrUnknownChannel is returned when a channel ID is not part of the catalog.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrMalformedTimestamp is returned when a provider timestamp cannot be parsed.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
)
