// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRoute  = errors.New("invalid route")
	ErrParamConflict = errors.New("parameter conflict")
	ErrFrozen        = errors.New("routing table frozen")
	ErrInvalidConfig = errors.New("invalid config")
	ErrSkipMethod    = errors.New("skip method")
)

// ParamConflictError is returned when a route declares a parameter at a position where
// another parameter name is already registered. A node cannot have two parameter captures
// competing at the same position, so this is a configuration error of the route table.
type ParamConflictError struct {
	// Method is the HTTP method of the route being registered, if registered through a Table.
	Method string
	// Pattern is the route being registered when the conflict was detected.
	Pattern string
	// Existing is the parameter name already registered at the conflicting position.
	Existing string
	// Conflicting is the parameter name declared by Pattern at the same position.
	Conflicting string
}

func (e *ParamConflictError) Error() string {
	var sb strings.Builder
	sb.WriteString("parameter conflict: new route ")
	if e.Method != "" {
		sb.WriteByte('[')
		sb.WriteString(e.Method)
		sb.WriteString("] ")
	}
	sb.WriteString(e.Pattern)
	sb.WriteString(" declares ':")
	sb.WriteString(e.Conflicting)
	sb.WriteString("' where ':")
	sb.WriteString(e.Existing)
	sb.WriteString("' is already registered")
	return sb.String()
}

// Unwrap returns the sentinel value [ErrParamConflict].
func (e *ParamConflictError) Unwrap() error {
	return ErrParamConflict
}
