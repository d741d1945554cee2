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

// Package pipeline answers a question by running it through a fixed sequence
// of generator calls: a primary answer, key point extraction, four reviews of
// the answer, and a final integration that combines them.
//
// Stages run strictly one after another. Each stage sees only the outputs of
// the stages it declares as dependencies. The first failing stage aborts the
// run; its status becomes failed and the stages after it stay pending.
//
// The final answer passes through a refusal.Enforcer, which replaces
// boilerplate refusals with a summary built from the extracted key points.
//
// Example:
//
//	orch, err := pipeline.New(provider.Generator(), pipeline.WithRetriever(retriever))
//	if err != nil {
//	    return err
//	}
//	result, err := orch.Run(ctx, "What is EDA?")
//	if err != nil {
//	    return err // invalid question
//	}
//	if !result.Succeeded() {
//	    log.Println(result.Message)
//	}
package pipeline
