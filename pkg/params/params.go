// Package params assembles the argument strings passed to the package manager and the
// cluster control tool.
package params

import (
	"fmt"
	"strings"
)

// Builder holds an ordered list of argument tokens. A token may carry a flag together with
// its value (e.g. `--kube-context "dev"`); tokens are never reordered.
type Builder struct {
	tokens []string
}

func New(tokens ...string) *Builder {
	b := &Builder{}
	b.tokens = append(b.tokens, tokens...)
	return b
}

func (b *Builder) Add(tokens ...string) {
	b.tokens = append(b.tokens, tokens...)
}

// Addf appends a single formatted token.
func (b *Builder) Addf(format string, a ...any) {
	b.Add(fmt.Sprintf(format, a...))
}

// Tokens returns a copy of the accumulated tokens.
func (b *Builder) Tokens() []string {
	return append([]string(nil), b.tokens...)
}

// Build joins the tokens with single spaces.
func (b *Builder) Build() string {
	return strings.Join(b.tokens, " ")
}

func (b *Builder) String() string {
	return b.Build()
}
