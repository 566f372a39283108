package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Adaptor errors
	ErrAuthentication    = fmt.Errorf("authentication failed")
	ErrDecode            = fmt.Errorf("malformed playlist identifier")
	ErrMissingIdentifier = fmt.Errorf("track has no FLO identifier")
	ErrNotFound          = fmt.Errorf("no matching track")
	ErrTransport         = fmt.Errorf("FLO request failed")
	ErrTranscription     = fmt.Errorf("playlist transcription failed")
	ErrPublish           = fmt.Errorf("playlist publish failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
