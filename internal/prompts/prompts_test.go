package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildThemeLabelPrompt(t *testing.T) {
	p := BuildThemeLabelPrompt([]string{"housing is unaffordable", `she said "no"`})

	assert.True(t, strings.HasPrefix(p, "Given the following comments, generate a 5-8 word label"))
	assert.Contains(t, p, `["housing is unaffordable", "she said \"no\""]`)
	assert.True(t, strings.HasSuffix(p, "Label:"))
}

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Housing costs and stability  \n", want: "Housing costs and stability"},
		{in: `"Loneliness in modern life"`, want: "Loneliness in modern life"},
		{in: "Label: “Trust and belonging”", want: "Trust and belonging"},
		{in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLabel(tt.in))
		})
	}
}
