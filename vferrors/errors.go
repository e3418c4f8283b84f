// Copyright 2024 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vferrors defines the closed set of error codes surfaced across
// the planner, expression compiler, transform engine, and dialect layer.
package vferrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code identifies which of the closed set of error kinds an Error carries.
type Code string

const (
	// CodeCompilation is returned when an expression cannot be lowered to
	// the Expression IR.
	CodeCompilation Code = "CompilationError"
	// CodeUnsupportedForDialect is returned when a dialect lacks a
	// capability (function, operator, cast) and has no transformer
	// registered for it.
	CodeUnsupportedForDialect Code = "UnsupportedForDialect"
	// CodeType is returned for incompatible casts or unexpected data
	// types encountered while inferring or checking types.
	CodeType Code = "TypeError"
	// CodeSpecification is returned when chart-spec input violates the
	// grammar the planner or transform engine expects (e.g. a bin
	// extent with extent[0] > extent[1]).
	CodeSpecification Code = "SpecificationError"
	// CodeInternal is returned when an invariant of the implementation
	// itself is violated.
	CodeInternal Code = "InternalError"
	// CodeNotConstant is returned by EvalToScalar when an expression
	// tree retains a non-foldable reference.
	CodeNotConstant Code = "NotConstant"
	// CodeTimeout is surfaced by a Connection when an operation exceeds
	// its caller-imposed deadline.
	CodeTimeout Code = "Timeout"
)

// Error is a human-readable message tagged with one of the Code values,
// optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Code, so callers
// can write errors.Is(err, vferrors.Compilation("")).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

func newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Compilation builds a CompilationError.
func Compilation(format string, args ...interface{}) *Error {
	return newf(CodeCompilation, format, args...)
}

// UnsupportedForDialect builds an UnsupportedForDialect error.
func UnsupportedForDialect(format string, args ...interface{}) *Error {
	return newf(CodeUnsupportedForDialect, format, args...)
}

// TypeError builds a TypeError.
func TypeError(format string, args ...interface{}) *Error {
	return newf(CodeType, format, args...)
}

// Specification builds a SpecificationError.
func Specification(format string, args ...interface{}) *Error {
	return newf(CodeSpecification, format, args...)
}

// Internal builds an InternalError.
func Internal(format string, args ...interface{}) *Error {
	return newf(CodeInternal, format, args...)
}

// NotConstant builds a NotConstant error.
func NotConstant(format string, args ...interface{}) *Error {
	return newf(CodeNotConstant, format, args...)
}

// Timeout builds a Timeout error.
func Timeout(format string, args ...interface{}) *Error {
	return newf(CodeTimeout, format, args...)
}

// Wrap attaches additional context to err while preserving its Code when
// err is (or wraps) a *Error.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// CodeOf returns the Code carried by err, or CodeInternal if err does not
// wrap a *Error.
func CodeOf(err error) Code {
	var vferr *Error
	if errors.As(err, &vferr) {
		return vferr.Code
	}
	return CodeInternal
}
