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
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/cor"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
)

// TierSource is the name of the direct source URL tier.
const TierSource = "source"

// schemePrefix matches "scheme:" at the start of a string. A match followed
// by a digit is a host:port pair, not a scheme.
var schemePrefix = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.\-]*):(.?)`)

// NormalizeSourceURL turns a caller supplied media reference into an absolute
// http(s) URL. Protocol relative ("//host/x") and bare ("host/x") references
// are upgraded to https; every other scheme is rejected.
func NormalizeSourceURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &model.ValidationError{Field: "src", Reason: "value is empty"}
	}

	switch m := schemePrefix.FindStringSubmatch(s); {
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	case m == nil:
		s = "https://" + s
	case m[2] != "" && m[2][0] >= '0' && m[2][0] <= '9':
		s = "https://" + s
	default:
		scheme := strings.ToLower(m[1])
		if scheme != "http" && scheme != "https" {
			return "", &model.ValidationError{Field: "src", Reason: "unsupported scheme " + scheme}
		}
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", &model.ValidationError{Field: "src", Reason: "malformed url"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &model.ValidationError{Field: "src", Reason: "unsupported scheme " + u.Scheme}
	}
	if u.Hostname() == "" {
		return "", &model.ValidationError{Field: "src", Reason: "missing host"}
	}
	u.User = nil
	return u.String(), nil
}

// SourceURLMedia fetches an already normalized media URL with browser-like headers.
//
// Input: absolute URL (string) under CtxIn.
// Output: *model.MediaStream under CtxOut.
type SourceURLMedia struct {
	cor.BaseCommand
	client  cloud.HTTPDoer
	timeout time.Duration
}

func NewSourceURLMedia(name string, client cloud.HTTPDoer, media cloud.Media) *SourceURLMedia {
	return &SourceURLMedia{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		timeout:     cloud.Seconds(media.TimeoutInSeconds, 10*time.Second),
	}
}

func (c *SourceURLMedia) Execute(context cor.Context) {
	target := context.Get(c.GetInputParam()).(string)

	stream, err := fetchMedia(context.GetContext(), c.client, c.GetName(), target, browserHeaders(), c.timeout)
	if err != nil {
		c.Failed(context, err)
		return
	}
	c.Succeeded(context.GetContext(), attribute.String("tier", c.GetName()))
	context.Add(c.GetOutputParam(), stream)
}
