package addon

import (
	"errors"

	"github.com/savid/plutotv-proxy/pkg/pluto"
)

var (
	// ErrNotImplemented is returned by the channel group operations.
	ErrNotImplemented = errors.New("not implemented")
	// ErrNeedRestart is returned by SettingChanged; settings apply on restart.
	ErrNeedRestart = errors.New("restart required")
	// ErrInvalidParameters marks a request that names something that does not exist.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrFailed marks a request that could not produce a result.
	ErrFailed = errors.New("failed")
)

// ErrorCode is the result code reported to the host.
type ErrorCode int

// Host result codes.
const (
	NoError ErrorCode = iota
	ServerError
	InvalidParameters
	Failed
	NotImplemented
)

func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "NO_ERROR"
	case ServerError:
		return "SERVER_ERROR"
	case InvalidParameters:
		return "INVALID_PARAMETERS"
	case Failed:
		return "FAILED"
	case NotImplemented:
		return "NOT_IMPLEMENTED"
	default:
		return "UNKNOWN"
	}
}

// Code maps an error returned by an Addon operation to its host result code.
// Errors not produced by the add-on's own classification count as server errors.
func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return NoError
	case errors.Is(err, ErrNotImplemented):
		return NotImplemented
	case errors.Is(err, ErrInvalidParameters):
		return InvalidParameters
	case errors.Is(err, ErrFailed):
		return Failed
	default:
		return ServerError
	}
}

// isUpstreamFault reports whether err came from loading provider data.
func isUpstreamFault(err error) bool {
	return errors.Is(err, pluto.ErrTransport) ||
		errors.Is(err, pluto.ErrMalformedResponse) ||
		errors.Is(err, pluto.ErrDataIntegrity)
}
