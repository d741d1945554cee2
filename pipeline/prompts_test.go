package pipeline

import (
	"testing"

	"github.com/poiesic/quorum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStages_MatchDescriptorTable(t *testing.T) {
	stages := DefaultStages("")
	require.NoError(t, ValidateStages(stages))
	assert.Equal(t, core.Stages(), Descriptors(stages))

	for _, s := range stages {
		assert.NotEmpty(t, s.Role, s.Descriptor.Name)
		assert.Equal(t, s.Descriptor.Name == core.StagePrimary, s.UsesContext, s.Descriptor.Name)
	}
}

func TestBuildPrimary_Branches(t *testing.T) {
	noContext := buildPrimary(StageInput{Question: " What is EDA? "})
	assert.Contains(t, noContext, "Question: What is EDA?\n")
	assert.Contains(t, noContext, "do not decline")
	assert.NotContains(t, noContext, "Reference")

	withContext := buildPrimary(StageInput{
		Question: "What is EDA?",
		Context:  []string{"first chunk", "second chunk"},
	})
	assert.Contains(t, withContext, "Reference 1: first chunk\n")
	assert.Contains(t, withContext, "Reference 2: second chunk\n")
	assert.NotContains(t, withContext, "do not decline")
}

func TestBuildIntegration_IncludesEveryReview(t *testing.T) {
	in := StageInput{
		Question: "What is EDA?",
		Outputs: map[core.StageName]string{
			core.StagePrimary:             "P",
			core.StageKeyPoints:           "K",
			core.StageRetrievalQuality:    "High",
			core.StageRefusalAssessment:   "no improper refusal",
			core.StageSemanticConsistency: "consistent",
			core.StageHallucinationCheck:  "no hallucination",
		},
	}
	prompt := buildIntegration(in)
	for _, want := range []string{
		"Specialist answer: P",
		"Key points: K",
		"Retrieval quality review: High",
		"Refusal review: no improper refusal",
		"Consistency review: consistent",
		"Hallucination review: no hallucination",
		"User question: What is EDA?",
	} {
		assert.Contains(t, prompt, want)
	}
}

func TestRunTransitions(t *testing.T) {
	r := newRun("q", core.Stages())

	assert.ErrorIs(t, r.complete(core.StagePrimary, "x"), ErrInvalidTransition)
	require.NoError(t, r.transition(core.StagePrimary, core.StatusRunning))
	require.NoError(t, r.complete(core.StagePrimary, "x"))
	assert.ErrorIs(t, r.transition(core.StagePrimary, core.StatusRunning), ErrInvalidTransition)
	assert.ErrorIs(t, r.transition("unknown", core.StatusRunning), ErrInvalidTransition)
	assert.Equal(t, []StageOutput{{Stage: core.StagePrimary, Output: "x"}}, r.historySnapshot())
}
