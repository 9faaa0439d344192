// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"errors"
	"strings"
)

// FallbackMessage is shown when an error carries no message of its own.
const FallbackMessage = "An error occurred"

// ErrIdle is returned by Wait for a reader that has never fetched, usually
// because it is disabled.
var ErrIdle = errors.New("query is idle")

// PanicError wraps a value recovered from a panicking fetch or write.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	switch v := e.Value.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return ""
	}
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ErrorMessage is the text a notification shows for err.
func ErrorMessage(err error) string {
	if err == nil {
		return FallbackMessage
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return FallbackMessage
	}
	return msg
}

// recovered turns a recover() value into an error, or nil.
func recovered(r any) error {
	if r == nil {
		return nil
	}
	return &PanicError{Value: r}
}
