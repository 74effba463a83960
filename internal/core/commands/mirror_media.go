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
	"regexp"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/cor"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
)

// TierMirror is the name of the object store mirror tier.
const TierMirror = "mirror"

// mirrorID is the catalog id alphabet; anything else could escape the prefix.
var mirrorID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ErrInvalidMirrorID is returned for ids outside the catalog id alphabet.
var ErrInvalidMirrorID = errors.New("invalid mirror id")

// ValidMirrorID reports whether id may be used to name a mirror object.
func ValidMirrorID(id string) bool {
	return mirrorID.MatchString(id)
}

// MirrorObjectName returns the object name used for an exercise's media.
func MirrorObjectName(prefix string, id string) (string, error) {
	if !ValidMirrorID(id) {
		return "", ErrInvalidMirrorID
	}
	return prefix + id, nil
}

// MirrorMedia serves media previously copied into the object store.
//
// Input: exercise id (string) under CtxIn.
// Output: *model.MediaStream under CtxOut.
type MirrorMedia struct {
	cor.BaseCommand
	store  cloud.ObjectStore
	prefix string
}

func NewMirrorMedia(name string, store cloud.ObjectStore, prefix string) *MirrorMedia {
	return &MirrorMedia{
		BaseCommand: *cor.NewBaseCommand(name),
		store:       store,
		prefix:      prefix,
	}
}

func (c *MirrorMedia) IsExecutable(context cor.Context) bool {
	if c.store == nil || !c.BaseCommand.IsExecutable(context) {
		return false
	}
	id, _ := context.Get(c.GetInputParam()).(string)
	return ValidMirrorID(id)
}

func (c *MirrorMedia) SkipReason(cor.Context) string {
	if c.store == nil {
		return "disabled"
	}
	return "id not mirrorable"
}

func (c *MirrorMedia) Execute(context cor.Context) {
	id := context.Get(c.GetInputParam()).(string)
	name, err := MirrorObjectName(c.prefix, id)
	if err != nil {
		c.Failed(context, &model.TierError{Cause: "id not mirrorable", Err: err})
		return
	}

	reader, info, err := c.store.Open(context.GetContext(), name)
	if errors.Is(err, cloud.ErrObjectNotFound) {
		// A miss is expected until the warmer has copied the object.
		context.AddError(c.GetName(), &model.TierError{Cause: "not mirrored"})
		return
	}
	if err != nil {
		c.Failed(context, &model.TierError{Cause: "mirror read failed",
			Err: fmt.Errorf("failed to read %s: %w", c.store.Location(name), err)})
		return
	}

	body, contentType := sniffContentType(reader, info.ContentType)
	size := info.Size
	if size <= 0 {
		size = -1
	}
	c.Succeeded(context.GetContext(), attribute.String("tier", c.GetName()))
	context.Add(c.GetOutputParam(), &model.MediaStream{
		Body:          readCloser{Reader: body, Closer: reader},
		ContentType:   contentType,
		ContentLength: size,
		Tier:          c.GetName(),
	})
}
