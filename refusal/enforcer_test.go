package refusal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnforcer(t *testing.T, opts ...Option) *Enforcer {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func TestEnforce_PassThrough(t *testing.T) {
	e := newEnforcer(t)
	text := "EDA stands for Electronic Design Automation."

	assert.Equal(t, text, e.Enforce(text, "What is EDA?", "- design tools"))
}

func TestEnforce_ReplacesRefusal(t *testing.T) {
	e := newEnforcer(t)

	got := e.Enforce("I cannot answer that.", "What is EDA?", "- electronic design automation\n- chip design software")

	assert.NotEqual(t, "I cannot answer that.", got)
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "What is EDA?")
	assert.Contains(t, got, "chip design software")
	_, found := e.Detect(got)
	assert.False(t, found, "fallback must not itself be a refusal")
}

func TestEnforce_Deterministic(t *testing.T) {
	e := newEnforcer(t)

	a := e.Enforce("As a language model I won't.", "q", "k")
	b := e.Enforce("As an AI, no.", "q", "k")
	assert.Equal(t, a, b)
	assert.Equal(t, Fallback("q", "k"), a)
}

func TestDetect(t *testing.T) {
	e := newEnforcer(t)

	tests := []struct {
		text   string
		phrase string
		found  bool
	}{
		{"I CANNOT ANSWER this", "cannot answer", true},
		{"Sorry, I can’t answer", "can't answer", true},
		{"You should consult a professional.", "consult a professional", true},
		{"抱歉，我无法回答这个问题", "无法回答", true},
		{"EDA tools automate chip design.", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			phrase, found := e.Detect(tt.text)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.phrase, phrase)
		})
	}
}

func TestWithDenylist(t *testing.T) {
	e := newEnforcer(t, WithDenylist("Forbidden", "  ", ""))

	assert.Equal(t, []string{"forbidden"}, e.Denylist())
	assert.Equal(t, "I cannot answer that.", e.Enforce("I cannot answer that.", "q", "k"))
	assert.NotEqual(t, "this is FORBIDDEN", e.Enforce("this is FORBIDDEN", "q", "k"))
}

func TestWithExtraPhrases(t *testing.T) {
	e := newEnforcer(t, WithExtraPhrases("no comment"))

	_, found := e.Detect("No comment.")
	assert.True(t, found)
	_, found = e.Detect("I cannot answer")
	assert.True(t, found)
}

func TestFallback_BlankKeyPoints(t *testing.T) {
	got := Fallback("  What is EDA?  ", "   ")

	assert.Contains(t, got, "Question: What is EDA?\n")
	assert.Contains(t, got, "No key points were extracted")
}
