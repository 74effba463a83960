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

package main

import (
	"context"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/workflow"
)

// SetupListeners attaches the mirror workflow to its subscription. Without a
// mirror bucket no listener exists and nothing is started.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	listener, ok := cloudClients.PubSubListeners[cloud.MirrorTopicKey]
	if !ok || cloudClients.MirrorStore == nil {
		return
	}

	mirror := workflow.NewMediaMirrorWorkflow(config, cloudClients)
	listener.SetCommand(mirror)
	listener.Listen(ctx)
}
