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

package workflow

import (
	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/commands"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/cor"
)

// MediaMirrorWorkflow copies exercise media from the upstream tiers into the
// mirror bucket. It is driven by the mirror Pub/Sub subscription:
//
//	mirror-request-reader -> upstream-media (provider, legacy-cdn) -> mirror-upload
type MediaMirrorWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

func (m *MediaMirrorWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

func (m *MediaMirrorWorkflow) IsExecutable(context cor.Context) bool {
	return m.chain.IsExecutable(context)
}

func NewMediaMirrorWorkflow(config *cloud.Config, serviceClients *cloud.ServiceClients) *MediaMirrorWorkflow {
	out := cor.NewBaseChain("media-mirror")
	out.AddCommand(commands.NewMirrorRequestReader("mirror-request-reader"))
	out.AddCommand(NewUpstreamMediaChain("upstream-media", config, serviceClients))
	out.AddCommand(commands.NewMirrorUpload("mirror-upload", serviceClients.MirrorStore, config.Media.MirrorPrefix))

	return &MediaMirrorWorkflow{
		BaseCommand: *cor.NewBaseCommand("media-mirror-workflow"),
		chain:       out,
	}
}
