package errors

import (
	"errors"
	"fmt"
)

// UpstreamStatusError is implemented by errors carrying an upstream HTTP reply.
type UpstreamStatusError interface {
	error
	StatusCode() int
	UpstreamMessage() string
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus  int    `json:"upstream_status,omitempty"`
	UpstreamMessage string `json:"upstream_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var upstream UpstreamStatusError
	if errors.As(err, &upstream) {
		d.UpstreamStatus = upstream.StatusCode()
		d.UpstreamMessage = upstream.UpstreamMessage()
	}

	return d
}
