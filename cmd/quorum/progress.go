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

package main

import (
	"fmt"
	"io"

	"github.com/poiesic/quorum/core"
)

// progressObserver prints one line per stage as the pipeline runs.
type progressObserver struct {
	w     io.Writer
	total int
}

func newProgressObserver(w io.Writer) *progressObserver {
	return &progressObserver{w: w, total: len(core.Stages())}
}

func (p *progressObserver) StageStarted(_ string, d core.StageDescriptor) {
	fmt.Fprintf(p.w, "[%d/%d] %s...\n", d.Order, p.total, d.Name)
}

func (p *progressObserver) StageFinished(_ string, d core.StageDescriptor, status core.StageStatus, _ string, err error) {
	if status == core.StatusFailed {
		fmt.Fprintf(p.w, "[%d/%d] %s failed: %v\n", d.Order, p.total, d.Name, err)
	}
}
