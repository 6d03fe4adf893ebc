package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion_BuildTimeValue(t *testing.T) {
	defer func(previous string) {
		version = previous
	}(version)

	version = "v1.2.3"

	assert.Equal(t, "v1.2.3", GetVersion())
}

func TestGetVersion_Fallback(t *testing.T) {
	defer func(previous string) {
		version = previous
	}(version)

	version = ""

	assert.NotEmpty(t, GetVersion())
}
