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
	"errors"
	"fmt"

	"github.com/poiesic/quorum/core"
)

var (
	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrStageFailure matches every *StageError via errors.Is.
	ErrStageFailure = errors.New("stage failed")

	// ErrInvalidTransition indicates an illegal stage status change.
	ErrInvalidTransition = errors.New("invalid stage status transition")

	// ErrInvalidStage indicates a stage without a prompt builder or with a
	// descriptor that does not fit the table.
	ErrInvalidStage = errors.New("invalid stage")
)

// StageError describes the stage that aborted a run.
type StageError struct {
	Stage core.StageName
	Order int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s) failed: %v", e.Order, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStageFailure) true for any StageError.
func (e *StageError) Is(target error) bool {
	return target == ErrStageFailure
}
