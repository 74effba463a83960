// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor (Chain of Responsibility) defines the contracts used to build
// workflows out of small, traceable commands.
//
// Two chain flavours exist:
//   - BaseChain runs every command in order and pipes CtxOut into CtxIn.
//   - FirstSuccessChain tries commands in order and stops at the first one
//     that produces an output, recording why each earlier command did not.
//
// The media resolution proxy is a FirstSuccessChain of tiers; the background
// mirror workflow is a BaseChain.
package cor

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CtxIn is the default key for the primary input of a command. The BaseChain
	// populates it with the output of the previous command.
	CtxIn = "__IN__"
	// CtxOut is the default key where a command places its primary output.
	CtxOut = "__OUT__"
	// CtxAttempts is the key under which a FirstSuccessChain stores the
	// []Attempt describing every command that did not produce an output.
	CtxAttempts = "__ATTEMPTS__"
)

// Context is the shared property bag handed to every command of a workflow.
type Context interface {
	// SetContext sets the Go context used for cancellation and tracing.
	SetContext(context context.Context)

	// GetContext retrieves the Go context.
	GetContext() context.Context

	// Add stores a key-value pair and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// AddError records an error, keyed by the name of the command that produced it.
	AddError(key string, err error)

	// RemoveError forgets the error recorded under key.
	RemoveError(key string)

	// GetErrors returns every recorded error.
	GetErrors() map[string]error

	// Get retrieves a value by key.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any error has been recorded.
	HasErrors() bool

	// AddCloser registers a resource (typically a response body) to be
	// released when the workflow finishes.
	AddCloser(closer io.Closer)

	// GetClosers returns the registered resources.
	GetClosers() []io.Closer

	// Close releases every registered resource. Workflows defer it.
	Close()
}

// Executable is anything that can run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is a single, named unit of work in a workflow.
type Command interface {
	Executable

	// GetName returns the unique name of the command, used for logging and telemetry.
	GetName() string

	// GetInputParam returns the key the command reads its primary input from.
	GetInputParam() string

	// GetOutputParam returns the key the command writes its primary output to.
	GetOutputParam() string

	// IsExecutable is the precondition check performed before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// SkipExplainer is implemented by commands that can say why IsExecutable
// returned false (for example "disabled" or "missing credentials").
type SkipExplainer interface {
	SkipReason(context Context) string
}

// Reasoner is implemented by errors that carry a short, fixed reason that is
// safe to hand back to callers. The full error stays on the span and in logs.
type Reasoner interface {
	Reason() string
}

// ReasonFailed is reported for errors that do not implement Reasoner.
const ReasonFailed = "failed"

// ReasonOf returns the caller-safe reason of err.
func ReasonOf(err error) string {
	var r Reasoner
	if errors.As(err, &r) {
		if reason := r.Reason(); reason != "" {
			return reason
		}
	}
	return ReasonFailed
}

// Attempt records a command a FirstSuccessChain tried, or skipped, without
// getting an output.
type Attempt struct {
	Name   string
	Reason string
}

// Chain is a Command made of other commands.
type Chain interface {
	Command

	// ContinueOnFailure tells the chain whether to keep going after a command fails.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
