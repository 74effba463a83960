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
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/cor"
	"go.opentelemetry.io/otel/attribute"
)

// TierLegacyCDN is the name of the legacy CDN tier.
const TierLegacyCDN = "legacy-cdn"

// LegacyMediaFile derives the legacy CDN file name from the numeric portion
// of an exercise id, left padded to four digits ("37" -> "0037.gif"). The
// digits are handled as text, so ids of any length map to a file name.
func LegacyMediaFile(id string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
	if digits == "" {
		return "", false
	}
	digits = strings.TrimLeft(digits, "0")
	if len(digits) < 4 {
		digits = strings.Repeat("0", 4-len(digits)) + digits
	}
	return digits + ".gif", true
}

// LegacyCDNMedia fetches media from the legacy CDN path derived from the id.
//
// Input: exercise id (string) under CtxIn.
// Output: *model.MediaStream under CtxOut.
type LegacyCDNMedia struct {
	cor.BaseCommand
	client  cloud.HTTPDoer
	baseURL string
	enabled bool
	timeout time.Duration
}

func NewLegacyCDNMedia(name string, client cloud.HTTPDoer, media cloud.Media) *LegacyCDNMedia {
	return &LegacyCDNMedia{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		baseURL:     strings.TrimRight(media.LegacyBaseURL, "/"),
		enabled:     media.LegacyFallbackEnabled,
		timeout:     cloud.Seconds(media.TimeoutInSeconds, 10*time.Second),
	}
}

func (c *LegacyCDNMedia) IsExecutable(context cor.Context) bool {
	if !c.enabled || c.baseURL == "" || !c.BaseCommand.IsExecutable(context) {
		return false
	}
	id, _ := context.Get(c.GetInputParam()).(string)
	_, ok := LegacyMediaFile(id)
	return ok
}

func (c *LegacyCDNMedia) SkipReason(context cor.Context) string {
	switch {
	case !c.enabled:
		return "disabled"
	case c.baseURL == "":
		return "missing base url"
	}
	return "id has no numeric portion"
}

func (c *LegacyCDNMedia) Execute(context cor.Context) {
	id := context.Get(c.GetInputParam()).(string)
	file, _ := LegacyMediaFile(id)

	stream, err := fetchMedia(context.GetContext(), c.client, c.GetName(), c.baseURL+"/"+file, browserHeaders(), c.timeout)
	if err != nil {
		c.Failed(context, err)
		return
	}
	c.Succeeded(context.GetContext(), attribute.String("tier", c.GetName()))
	context.Add(c.GetOutputParam(), stream)
}
