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

// Package refusal guarantees that a final answer is never a bare refusal.
//
// The Enforcer scans an answer for denylisted phrases such as "cannot
// answer" or "as a language model". When one is present the answer is
// discarded and replaced by a templated answer built from the question and
// the key points extracted earlier in the pipeline.
//
// The scan is a plain substring test and will also fire on legitimate
// answers that happen to contain a phrase. Deployments that see false
// positives should narrow the list with WithDenylist.
package refusal
