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

package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/cor"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// MirrorUpload copies a resolved media stream into the object store.
//
// Input: *model.MediaStream under CtxIn, exercise id under MirrorIDParam.
// Output: object location (string) under CtxOut.
type MirrorUpload struct {
	cor.BaseCommand
	store  cloud.ObjectStore
	prefix string
}

func NewMirrorUpload(name string, store cloud.ObjectStore, prefix string) *MirrorUpload {
	return &MirrorUpload{BaseCommand: *cor.NewBaseCommand(name), store: store, prefix: prefix}
}

func (c *MirrorUpload) IsExecutable(context cor.Context) bool {
	id, _ := context.Get(MirrorIDParam).(string)
	return c.store != nil && ValidMirrorID(id) && c.BaseCommand.IsExecutable(context)
}

func (c *MirrorUpload) Execute(context cor.Context) {
	stream, ok := context.Get(c.GetInputParam()).(*model.MediaStream)
	if !ok || stream == nil {
		c.Failed(context, errors.New("no media stream to upload"))
		return
	}
	// The workflow context releases the upstream body once the chain ends.
	context.AddCloser(stream)

	id := context.Get(MirrorIDParam).(string)
	name, err := MirrorObjectName(c.prefix, id)
	if err != nil {
		c.Failed(context, fmt.Errorf("cannot mirror %q: %w", id, err))
		return
	}

	writer := c.store.Create(context.GetContext(), name, stream.ContentType)
	written, err := io.Copy(writer, stream.Body)
	if err != nil {
		writer.Abort(err)
		c.Failed(context, fmt.Errorf("failed to copy media to %s after %d bytes: %w", c.store.Location(name), written, err))
		return
	}
	if err := writer.Close(); err != nil {
		c.Failed(context, fmt.Errorf("failed to finalize %s: %w", c.store.Location(name), err))
		return
	}

	c.Succeeded(context.GetContext())
	slog.InfoContext(context.GetContext(), "mirrored exercise media",
		"id", id, "tier", stream.Tier, "location", c.store.Location(name), "bytes", written)
	context.Add(c.GetOutputParam(), c.store.Location(name))
}
