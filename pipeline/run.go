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

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/poiesic/quorum/core"
)

// StageOutput is one entry of a run's history.
type StageOutput struct {
	Stage  core.StageName `json:"stage"`
	Output string         `json:"output"`
}

// run is the state of a single question moving through the pipeline.
// History only grows, and history[i] belongs to the i-th completed stage.
type run struct {
	id          string
	question    string
	context     []string
	descriptors []core.StageDescriptor
	status      map[core.StageName]core.StageStatus
	outputs     map[core.StageName]string
	history     []StageOutput
}

func newRun(question string, descriptors []core.StageDescriptor) *run {
	r := &run{
		id:          uuid.NewString(),
		question:    question,
		descriptors: descriptors,
		status:      make(map[core.StageName]core.StageStatus, len(descriptors)),
		outputs:     make(map[core.StageName]string, len(descriptors)),
		history:     make([]StageOutput, 0, len(descriptors)),
	}
	for _, d := range descriptors {
		r.status[d.Name] = core.StatusPending
	}
	return r
}

func (r *run) transition(name core.StageName, to core.StageStatus) error {
	from, ok := r.status[name]
	if !ok {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, name)
	}
	if !core.CanTransition(from, to) {
		return fmt.Errorf("%w: %s from %s to %s", ErrInvalidTransition, name, from, to)
	}
	r.status[name] = to
	return nil
}

// complete records the output and marks the stage completed.
func (r *run) complete(name core.StageName, output string) error {
	if err := r.transition(name, core.StatusCompleted); err != nil {
		return err
	}
	r.outputs[name] = output
	r.history = append(r.history, StageOutput{Stage: name, Output: output})
	return nil
}

// inputFor builds a stage input exposing only the declared dependencies.
func (r *run) inputFor(s Stage) StageInput {
	in := StageInput{
		Question: r.question,
		Outputs:  make(map[core.StageName]string, len(s.Descriptor.DependsOn)),
	}
	for _, dep := range s.Descriptor.DependsOn {
		in.Outputs[dep] = r.outputs[dep]
	}
	if s.UsesContext {
		in.Context = slices.Clone(r.context)
	}
	return in
}

func (r *run) statusSnapshot() map[core.StageName]core.StageStatus {
	return maps.Clone(r.status)
}

func (r *run) outputSnapshot() map[core.StageName]string {
	return maps.Clone(r.outputs)
}

func (r *run) historySnapshot() []StageOutput {
	return slices.Clone(r.history)
}
