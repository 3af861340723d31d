package errors

import (
	"errors"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// PublicMessage returns the message a client may see for err. Only public
// errors expose their text; everything else collapses to MsgServerError.
func PublicMessage(err error) string {
	var hzteErr *hzte.Error
	if errors.As(err, &hzteErr) && hzteErr.IsType(hzte.ErrorTypePublic) {
		if msg := hzteErr.Error(); msg != "" {
			return msg
		}
	}
	return MsgServerError
}

// IsPublic reports whether err carries a client visible message.
func IsPublic(err error) bool {
	var hzteErr *hzte.Error
	return errors.As(err, &hzteErr) && hzteErr.IsType(hzte.ErrorTypePublic)
}
