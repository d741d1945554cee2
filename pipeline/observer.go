// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import "github.com/poiesic/quorum/core"

// Observer is notified as stages start and finish. Calls happen on the
// goroutine running the pipeline, in stage order.
type Observer interface {
	StageStarted(runID string, stage core.StageDescriptor)
	StageFinished(runID string, stage core.StageDescriptor, status core.StageStatus, output string, err error)
}

type noopObserver struct{}

func (noopObserver) StageStarted(string, core.StageDescriptor) {}

func (noopObserver) StageFinished(string, core.StageDescriptor, core.StageStatus, string, error) {}
