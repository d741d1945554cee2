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

// Package vectorstore holds the ordered chunk sequence used for retrieval.
//
// Ingest is a best-effort bulk operation. Each input text is split with the
// chunker, embedded in one request, and appended to the repository in a
// single write. Items that are blank or fail to embed are reported by index
// and skipped without affecting their neighbours:
//
//	result, err := store.Ingest(ctx, []string{docA, docB, docC}, 100)
//	if err != nil {
//	    return err // persistence failure
//	}
//	for _, itemErr := range result.Errors {
//	    log.Println(itemErr)
//	}
//
// Insertion order is preserved: every chunk of item j precedes every chunk
// of item j+1, regardless of how many workers embed concurrently.
package vectorstore
