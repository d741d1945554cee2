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

package refusal

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultDenylist returns the refusal phrases checked by default.
func DefaultDenylist() []string {
	return []string{
		"cannot answer",
		"can't answer",
		"unable to answer",
		"as a language model",
		"as an ai",
		"consult a professional",
		"i'm sorry, but",
		"无法回答",
		"作为一个语言模型",
		"作为一个ai",
		"咨询专业人士",
	}
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// Enforcer replaces refusals with a deterministic answer built from the
// question and its key points.
//
// Matching is a case-insensitive substring test, so an answer that merely
// quotes a denylisted phrase is replaced too.
type Enforcer struct {
	denylist []string // lowercased
	logger   *slog.Logger
}

// Option configures an Enforcer.
type Option func(*Enforcer) error

// WithDenylist replaces the default phrases. Blank phrases are ignored.
func WithDenylist(phrases ...string) Option {
	return func(e *Enforcer) error {
		e.denylist = normalizePhrases(phrases)
		return nil
	}
}

// WithExtraPhrases adds phrases to the current denylist.
func WithExtraPhrases(phrases ...string) Option {
	return func(e *Enforcer) error {
		e.denylist = append(e.denylist, normalizePhrases(phrases)...)
		return nil
	}
}

// WithLogger sets the logger. Nil falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enforcer) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "refusal")
		return nil
	}
}

// New creates an Enforcer with the default denylist.
func New(opts ...Option) (*Enforcer, error) {
	e := &Enforcer{
		denylist: normalizePhrases(DefaultDenylist()),
		logger:   slog.Default().With("component", "refusal"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Denylist returns the active phrases in lowercase.
func (e *Enforcer) Denylist() []string {
	return append([]string(nil), e.denylist...)
}

// Detect reports the first denylisted phrase found in text.
func (e *Enforcer) Detect(text string) (string, bool) {
	normalized := normalize(text)
	for _, phrase := range e.denylist {
		if strings.Contains(normalized, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// Enforce returns text unchanged unless it contains a denylisted phrase, in
// which case it returns Fallback(question, keypoints).
func (e *Enforcer) Enforce(text, question, keypoints string) string {
	phrase, found := e.Detect(text)
	if !found {
		return text
	}
	e.logger.Warn("refusal detected, substituting fallback answer", "phrase", phrase)
	return Fallback(question, keypoints)
}

// Fallback builds the substitute answer. It depends only on its arguments.
func Fallback(question, keypoints string) string {
	question = strings.TrimSpace(question)
	keypoints = strings.TrimSpace(keypoints)
	if keypoints == "" {
		keypoints = "No key points were extracted for this question."
	}
	return fmt.Sprintf("Question: %s\n\nKey points:\n%s\n\n"+
		"This answer was assembled from the key points above because the generated answer did not address the question.",
		question, keypoints)
}

func normalize(s string) string {
	return strings.ToLower(apostrophes.Replace(s))
}

func normalizePhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = normalize(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
