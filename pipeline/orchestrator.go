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
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/quorum/ai"
	"github.com/poiesic/quorum/core"
	"github.com/poiesic/quorum/refusal"
	"github.com/poiesic/quorum/search"
)

// Retriever supplies reference chunks for the primary stage.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []string
}

// Orchestrator runs a question through the stage table, one stage at a time.
// Runs on the same Orchestrator are serialized.
type Orchestrator struct {
	mu        sync.Mutex
	generator ai.Generator
	retriever Retriever
	enforcer  *refusal.Enforcer
	stages    []Stage
	topK      int
	observer  Observer
	logger    *slog.Logger
}

type Option func(*Orchestrator) error

// WithRetriever enables retrieval-augmented answers in the primary stage.
func WithRetriever(r Retriever) Option {
	return func(o *Orchestrator) error {
		o.retriever = r
		return nil
	}
}

// WithEnforcer replaces the default refusal enforcer. A nil enforcer disables
// enforcement of the final answer.
func WithEnforcer(e *refusal.Enforcer) Option {
	return func(o *Orchestrator) error {
		o.enforcer = e
		return nil
	}
}

// WithTopK sets how many chunks the primary stage receives.
func WithTopK(k int) Option {
	return func(o *Orchestrator) error {
		if k > 0 {
			o.topK = k
		}
		return nil
	}
}

// WithStages replaces the stage table. The last stage produces the final answer.
func WithStages(stages []Stage) Option {
	return func(o *Orchestrator) error {
		if err := ValidateStages(stages); err != nil {
			return err
		}
		o.stages = slices.Clone(stages)
		return nil
	}
}

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) error {
		if obs == nil {
			obs = noopObserver{}
		}
		o.observer = obs
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "pipeline")
		return nil
	}
}

// New creates an orchestrator with the default stage table and refusal enforcer.
func New(generator ai.Generator, opts ...Option) (*Orchestrator, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	enforcer, err := refusal.New()
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		generator: generator,
		enforcer:  enforcer,
		stages:    DefaultStages(""),
		topK:      search.DefaultTopK,
		observer:  noopObserver{},
		logger:    slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Stages returns the descriptors of the configured stage table.
func (o *Orchestrator) Stages() []core.StageDescriptor {
	return Descriptors(o.stages)
}

// Run answers question. The returned error is non-nil only when the question
// is invalid; stage failures are reported through Result.Status and Result.Err.
func (o *Orchestrator) Run(ctx context.Context, question string) (*Result, error) {
	if err := core.ValidateQuestion(question); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	r := newRun(question, Descriptors(o.stages))
	if o.retriever != nil {
		r.context = o.retriever.Retrieve(ctx, question, o.topK)
	}

	logger := o.logger.With("run_id", r.id)
	logger.Info("run started", "stages", len(o.stages), "context_chunks", len(r.context))

	fallbackApplied := false
	for i, stage := range o.stages {
		d := stage.Descriptor
		if err := r.transition(d.Name, core.StatusRunning); err != nil {
			return nil, err
		}
		o.observer.StageStarted(r.id, d)
		logger.Debug("stage started", "stage", d.Name, "order", d.Order)

		output, err := o.generator.Generate(ctx, stage.Role, stage.Build(r.inputFor(stage)))
		if err == nil && strings.TrimSpace(output) == "" {
			err = ai.ErrEmptyCompletion
		}
		if err != nil {
			return o.fail(r, d, err, logger)
		}

		if i == len(o.stages)-1 && o.enforcer != nil {
			enforced := o.enforcer.Enforce(output, question, r.outputs[core.StageKeyPoints])
			if enforced != output {
				fallbackApplied = true
				output = enforced
			}
		}

		if err := r.complete(d.Name, output); err != nil {
			return nil, err
		}
		o.observer.StageFinished(r.id, d, core.StatusCompleted, output, nil)
		logger.Debug("stage completed", "stage", d.Name, "order", d.Order, "output_len", len(output))
	}

	result := newResult(r)
	result.Status = StatusSuccess
	result.FinalResult = r.history[len(r.history)-1].Output
	result.FallbackApplied = fallbackApplied
	logger.Info("run completed", "fallback_applied", fallbackApplied)
	return result, nil
}

func (o *Orchestrator) fail(r *run, d core.StageDescriptor, cause error, logger *slog.Logger) (*Result, error) {
	if err := r.transition(d.Name, core.StatusFailed); err != nil {
		return nil, err
	}
	stageErr := &StageError{Stage: d.Name, Order: d.Order, Err: cause}
	o.observer.StageFinished(r.id, d, core.StatusFailed, "", stageErr)
	logger.Error("stage failed", "stage", d.Name, "order", d.Order, "err", cause)

	result := newResult(r)
	result.Status = StatusFailure
	result.Message = stageErr.Error()
	result.FailedStage = d.Name
	result.stageErr = stageErr
	return result, nil
}
