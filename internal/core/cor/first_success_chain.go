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

package cor

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ReasonNotExecutable is used for skipped commands that do not implement SkipExplainer.
const ReasonNotExecutable = "not executable"

// FirstSuccessChain tries its commands in order against the same input and
// stops at the first one that writes an output. Every command that was
// skipped or failed is appended to the []Attempt stored under CtxAttempts,
// and its error is removed from the context so later commands still run.
//
// When no command produced an output the chain records a single error under
// its own name; callers inspect CtxAttempts to build a richer error.
type FirstSuccessChain struct {
	BaseCommand
	commands []Command
}

// NewFirstSuccessChain creates an empty fallback chain.
func NewFirstSuccessChain(name string) *FirstSuccessChain {
	return &FirstSuccessChain{BaseCommand: *NewBaseCommand(name)}
}

// ContinueOnFailure is always true for a fallback chain; the flag is ignored.
func (c *FirstSuccessChain) ContinueOnFailure(bool) Chain {
	return c
}

func (c *FirstSuccessChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// Len returns the number of configured commands.
func (c *FirstSuccessChain) Len() int {
	return len(c.commands)
}

func (c *FirstSuccessChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()
	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()
	defer chCtx.SetContext(parentCtx)

	attempts := make([]Attempt, 0, len(c.commands))
	for _, command := range c.commands {
		if err := outerCtx.Err(); err != nil {
			attempts = append(attempts, Attempt{Name: command.GetName(), Reason: err.Error()})
			continue
		}

		if !command.IsExecutable(chCtx) {
			reason := ReasonNotExecutable
			if explainer, ok := command.(SkipExplainer); ok {
				reason = explainer.SkipReason(chCtx)
			}
			attempts = append(attempts, Attempt{Name: command.GetName(), Reason: reason})
			continue
		}

		commandContext, commandSpan := c.Tracer.Start(outerCtx, command.GetName())
		chCtx.SetContext(commandContext)
		command.Execute(chCtx)
		chCtx.SetContext(outerCtx)

		if err, failed := chCtx.GetErrors()[command.GetName()]; failed {
			chCtx.RemoveError(command.GetName())
			chCtx.Remove(command.GetOutputParam())
			attempts = append(attempts, Attempt{Name: command.GetName(), Reason: ReasonOf(err)})
			slog.DebugContext(commandContext, "command failed", "chain", c.GetName(), "command", command.GetName(), "error", err)
			commandSpan.RecordError(err)
			commandSpan.SetStatus(codes.Error, err.Error())
			commandSpan.End()
			continue
		}

		if chCtx.Get(command.GetOutputParam()) == nil {
			attempts = append(attempts, Attempt{Name: command.GetName(), Reason: "no output"})
			commandSpan.SetStatus(codes.Error, "no output")
			commandSpan.End()
			continue
		}

		commandSpan.SetStatus(codes.Ok, "command produced output")
		commandSpan.End()
		chCtx.Add(CtxAttempts, attempts)
		chainSpan.SetAttributes(attribute.String("winner", command.GetName()))
		chainSpan.SetStatus(codes.Ok, "chain completed successfully")
		c.Succeeded(parentCtx, attribute.String("winner", command.GetName()))
		return
	}

	chCtx.Add(CtxAttempts, attempts)
	chCtx.AddError(c.GetName(), fmt.Errorf("%s: no command produced an output", c.GetName()))
	chainSpan.SetStatus(codes.Error, "no command produced an output")
	if c.ErrorCounter != nil {
		c.ErrorCounter.Add(parentCtx, 1)
	}
}

// Attempts returns the attempts recorded by the last FirstSuccessChain run on chCtx.
func Attempts(chCtx Context) []Attempt {
	if v, ok := chCtx.Get(CtxAttempts).([]Attempt); ok {
		return v
	}
	return nil
}
