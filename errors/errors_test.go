package errors_test

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgolubev/cgio/errors"
)

func TestIs(t *testing.T) {
	err := errors.New(errors.ErrFormat, "short file")
	assert.True(t, errors.Is(err, errors.ErrFormat))
	assert.False(t, errors.Is(err, errors.ErrIO))

	wrapped := errors.Wrap(err, "reading vector")
	assert.True(t, errors.Is(wrapped, errors.ErrFormat))
	assert.Equal(t, errors.ErrFormat, errors.CodeOf(wrapped))
}

func TestCoded(t *testing.T) {
	_, openErr := os.Open("/does/not/exist/at/all")
	require.Error(t, openErr)

	err := errors.Codedf(errors.ErrIO, openErr, "opening %s", "container.h5")
	assert.True(t, errors.Is(err, errors.ErrIO))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "IOError: opening container.h5")

	// the stack wrapper and the coded error sit between err and its cause
	assert.Equal(t, openErr, errors.Unwrap(errors.Unwrap(err)))

	assert.Nil(t, errors.Coded(errors.ErrIO, nil, "nothing"))
}

func TestCodeOfUncoded(t *testing.T) {
	assert.Equal(t, errors.ErrUncoded, errors.CodeOf(io.EOF))
	assert.Equal(t, errors.ErrUncoded, errors.CodeOf(errors.Errorf("plain")))
}
