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

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Result is the outcome of one pipeline run. On failure FinalResult is empty,
// Message describes the failing stage, and stages after it remain pending.
type Result struct {
	RunID           string                              `json:"run_id"`
	Status          string                              `json:"status"`
	FinalResult     string                              `json:"final_result,omitempty"`
	Message         string                              `json:"message,omitempty"`
	AgentsResponses map[core.StageName]string           `json:"agents_responses"`
	AgentStatus     map[core.StageName]core.StageStatus `json:"agent_status"`
	History         []StageOutput                       `json:"history"`
	UsedContext     []string                            `json:"used_context,omitempty"`
	FallbackApplied bool                                `json:"fallback_applied"`
	FailedStage     core.StageName                      `json:"failed_stage,omitempty"`

	stageErr *StageError
}

// Succeeded reports whether every stage completed.
func (r *Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Err returns the stage failure, or nil for a successful run.
func (r *Result) Err() error {
	if r.stageErr == nil {
		return nil
	}
	return r.stageErr
}

func newResult(r *run) *Result {
	return &Result{
		RunID:           r.id,
		AgentsResponses: r.outputSnapshot(),
		AgentStatus:     r.statusSnapshot(),
		History:         r.historySnapshot(),
		UsedContext:     r.context,
	}
}
