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
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/zeebo/assert"
)

type stubCommand struct {
	BaseCommand
	output     interface{}
	err        error
	executable bool
	skip       string
	ran        *int
}

func newStub(name string, output interface{}, err error) *stubCommand {
	return &stubCommand{BaseCommand: *NewBaseCommand(name), output: output, err: err, executable: true, ran: new(int)}
}

func (s *stubCommand) IsExecutable(Context) bool { return s.executable }

func (s *stubCommand) SkipReason(Context) string { return s.skip }

func (s *stubCommand) Execute(chCtx Context) {
	*s.ran++
	if s.err != nil {
		s.Failed(chCtx, s.err)
		return
	}
	if s.output != nil {
		chCtx.Add(s.GetOutputParam(), s.output)
	}
}

type reasonError struct {
	reason string
	detail string
}

func (e reasonError) Error() string  { return e.reason + ": " + e.detail }
func (e reasonError) Reason() string { return e.reason }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newTestContext() Context {
	chCtx := NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(CtxIn, "0001")
	return chCtx
}

func TestFirstSuccessChainStopsAtFirstOutput(t *testing.T) {
	failing := newStub("provider", nil, reasonError{reason: "status 404", detail: "GET https://provider.internal/image"})
	skipped := newStub("mirror", nil, nil)
	skipped.executable = false
	skipped.skip = "disabled"
	winner := newStub("legacy", "stream", nil)
	never := newStub("last", "other", nil)

	chain := NewFirstSuccessChain("media")
	chain.AddCommand(skipped).AddCommand(failing).AddCommand(winner).AddCommand(never)

	chCtx := newTestContext()
	chain.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Equal(t, "stream", chCtx.Get(CtxOut))
	assert.Equal(t, 0, *never.ran)
	assert.Equal(t, 0, *skipped.ran)
	assert.DeepEqual(t, []Attempt{
		{Name: "mirror", Reason: "disabled"},
		{Name: "provider", Reason: "status 404"},
	}, Attempts(chCtx))
}

func TestFirstSuccessChainExhausted(t *testing.T) {
	a := newStub("a", nil, errors.New("boom"))
	b := newStub("b", nil, nil)

	chain := NewFirstSuccessChain("media")
	chain.AddCommand(a).AddCommand(b)

	chCtx := newTestContext()
	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	_, ok := chCtx.GetErrors()["media"]
	assert.True(t, ok)
	assert.Nil(t, chCtx.Get(CtxOut))
	assert.Equal(t, 2, len(Attempts(chCtx)))
	assert.Equal(t, "no output", Attempts(chCtx)[1].Reason)
}

func TestFirstSuccessChainKeepsErrorDetailOutOfAttempts(t *testing.T) {
	plain := newStub("provider", nil, errors.New("dial tcp: lookup provider.internal: no such host"))
	wrapped := newStub("legacy", nil, fmt.Errorf("fetch: %w", reasonError{reason: "timeout", detail: "cdn.internal"}))

	chain := NewFirstSuccessChain("media")
	chain.AddCommand(plain).AddCommand(wrapped)

	chCtx := newTestContext()
	chain.Execute(chCtx)

	assert.DeepEqual(t, []Attempt{
		{Name: "provider", Reason: ReasonFailed},
		{Name: "legacy", Reason: "timeout"},
	}, Attempts(chCtx))
}

func TestFirstSuccessChainCancelledContext(t *testing.T) {
	a := newStub("a", "value", nil)
	chain := NewFirstSuccessChain("media")
	chain.AddCommand(a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chCtx := newTestContext()
	chCtx.SetContext(ctx)
	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.Equal(t, 0, *a.ran)
	assert.Equal(t, context.Canceled.Error(), Attempts(chCtx)[0].Reason)
}

func TestBaseChainPipesOutputToInput(t *testing.T) {
	first := newStub("first", "piped", nil)
	var seen interface{}
	second := &inspectCommand{BaseCommand: *NewBaseCommand("second"), seen: &seen}

	chain := NewBaseChain("pipeline")
	chain.AddCommand(first).AddCommand(second)

	chCtx := newTestContext()
	chain.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Equal(t, "piped", seen)
}

func TestBaseChainStopsOnFailure(t *testing.T) {
	first := newStub("first", nil, errors.New("broken"))
	second := newStub("second", "x", nil)

	chain := NewBaseChain("pipeline")
	chain.AddCommand(first).AddCommand(second)

	chCtx := newTestContext()
	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.Equal(t, 0, *second.ran)
}

func TestBaseContextClosesInReverseOrder(t *testing.T) {
	order := make([]int, 0)
	chCtx := NewBaseContext()
	chCtx.AddCloser(closerFunc(func() error { order = append(order, 1); return nil }))
	chCtx.AddCloser(closerFunc(func() error { order = append(order, 2); return errors.New("ignored") }))
	chCtx.AddCloser(nil)

	assert.Equal(t, 2, len(chCtx.GetClosers()))
	chCtx.Close()
	assert.DeepEqual(t, []int{2, 1}, order)
	assert.Equal(t, 0, len(chCtx.GetClosers()))
}

type inspectCommand struct {
	BaseCommand
	seen *interface{}
}

func (i *inspectCommand) Execute(chCtx Context) {
	*i.seen = chCtx.Get(i.GetInputParam())
}
