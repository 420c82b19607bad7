package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, valid := range []string{"hr", "technical", "general"} {
		cat, err := ParseCategory(valid)
		require.NoError(t, err)
		assert.Equal(t, Category(valid), cat)
	}

	for _, invalid := range []string{"", "HR", "finance", "general "} {
		_, err := ParseCategory(invalid)
		require.Error(t, err, "category %q", invalid)
		assert.True(t, errors.Is(err, ErrInvalidRequest))
	}
}

func TestSupportedMIMEType(t *testing.T) {
	assert.True(t, SupportedMIMEType(MIMETextPlain))
	assert.True(t, SupportedMIMEType(MIMETextCSV))
	assert.True(t, SupportedMIMEType(MIMEPDF))
	assert.True(t, SupportedMIMEType(MIMEDocx))

	assert.False(t, SupportedMIMEType("image/png"))
	assert.False(t, SupportedMIMEType(""))
}
