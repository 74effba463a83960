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

// Package commands provides the entry point of the media mirror workflow.
//
// MirrorRequestReader is the first command in that chain. It takes the raw
// JSON string delivered by the Pub/Sub listener, decodes it into a
// model.MirrorRequest and passes the exercise id to the next command.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/cor"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// MirrorIDParam is the context key holding the exercise id being mirrored.
const MirrorIDParam = "__MIRROR_ID__"

// MirrorRequestReader decodes a mirror request message.
//
// Input: JSON payload (string) under CtxIn.
// Output: exercise id (string) under CtxOut and MirrorIDParam.
type MirrorRequestReader struct {
	cor.BaseCommand
}

func NewMirrorRequestReader(name string) *MirrorRequestReader {
	return &MirrorRequestReader{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *MirrorRequestReader) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(string)
	if !ok {
		c.Failed(context, errors.New("mirror request payload is not a string"))
		return
	}

	var req model.MirrorRequest
	if err := json.Unmarshal([]byte(in), &req); err != nil {
		c.Failed(context, fmt.Errorf("failed to unmarshal mirror request: %w", err))
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		c.Failed(context, errors.New("mirror request has no id"))
		return
	}
	if !ValidMirrorID(id) {
		c.Failed(context, fmt.Errorf("mirror request id %q: %w", id, ErrInvalidMirrorID))
		return
	}

	c.Succeeded(context.GetContext())
	context.Add(MirrorIDParam, id)
	context.Add(c.GetOutputParam(), id)
}
