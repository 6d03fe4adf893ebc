package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder(t *testing.T) {
	b := New("--filter r1", "--deployed")
	b.Add("--failed", "--uninstalling")
	b.Addf("-o %s", "json")

	first := b.Build()
	second := b.Build()

	assert.Equal(t, "--filter r1 --deployed --failed --uninstalling -o json", first)
	assert.Equal(t, first, second)
	assert.Equal(t, first, b.String())
}

func TestBuilder_Empty(t *testing.T) {
	assert.Equal(t, "", New().Build())
}

func TestBuilder_TokensIsACopy(t *testing.T) {
	b := New("--wait")

	tokens := b.Tokens()
	tokens[0] = "--force"

	assert.Equal(t, []string{"--wait"}, b.Tokens())
}
