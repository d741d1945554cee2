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

	"github.com/poiesic/quorum/core"
)

// StageInput is everything a prompt builder may read. Outputs holds only the
// stages listed in the descriptor's DependsOn, so a builder cannot look ahead
// or at stages it did not declare.
type StageInput struct {
	Question string
	Domain   string
	Context  []string // retrieved chunks; set only for stages with UsesContext
	Outputs  map[core.StageName]string
}

// ContextAvailable reports whether retrieval produced any chunks for this run.
func (in StageInput) ContextAvailable() bool {
	return len(in.Context) > 0
}

// PromptBuilder turns a stage input into the user prompt.
type PromptBuilder func(in StageInput) string

// Stage is one step of the pipeline: a descriptor, the system role sent to
// the generator, and the prompt builder.
type Stage struct {
	Descriptor  core.StageDescriptor
	Role        string
	Build       PromptBuilder
	UsesContext bool
}

// Descriptors extracts the descriptor table from stages.
func Descriptors(stages []Stage) []core.StageDescriptor {
	out := make([]core.StageDescriptor, len(stages))
	for i, s := range stages {
		out[i] = s.Descriptor
	}
	return out
}

// ValidateStages checks the descriptor table and that every stage can build a prompt.
func ValidateStages(stages []Stage) error {
	if err := core.ValidateDescriptors(Descriptors(stages)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStage, err)
	}
	for _, s := range stages {
		if s.Build == nil {
			return fmt.Errorf("%w: stage %q has no prompt builder", ErrInvalidStage, s.Descriptor.Name)
		}
	}
	return nil
}

// DefaultStages returns the seven-stage table. A non-empty domain is named
// in the primary and integration prompts.
func DefaultStages(domain string) []Stage {
	descriptors := core.Stages()
	byName := make(map[core.StageName]core.StageDescriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}

	return []Stage{
		{
			Descriptor:  byName[core.StagePrimary],
			Role:        rolePrimary,
			Build:       withDomain(domain, buildPrimary),
			UsesContext: true,
		},
		{
			Descriptor: byName[core.StageKeyPoints],
			Role:       roleKeyPoints,
			Build:      buildKeyPoints,
		},
		{
			Descriptor: byName[core.StageRetrievalQuality],
			Role:       roleRetrievalQuality,
			Build:      buildRetrievalQuality,
		},
		{
			Descriptor: byName[core.StageRefusalAssessment],
			Role:       roleRefusalAssessment,
			Build:      buildRefusalAssessment,
		},
		{
			Descriptor: byName[core.StageSemanticConsistency],
			Role:       roleSemanticConsistency,
			Build:      buildSemanticConsistency,
		},
		{
			Descriptor: byName[core.StageHallucinationCheck],
			Role:       roleHallucinationCheck,
			Build:      buildHallucinationCheck,
		},
		{
			Descriptor: byName[core.StageIntegration],
			Role:       roleIntegration,
			Build:      withDomain(domain, buildIntegration),
		},
	}
}

func withDomain(domain string, build PromptBuilder) PromptBuilder {
	return func(in StageInput) string {
		in.Domain = domain
		return build(in)
	}
}
