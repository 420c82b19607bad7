package llm

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamOf(body string) *Stream {
	return newStream(io.NopCloser(strings.NewReader(body)))
}

func TestStream_FramesInOrder(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
		"data: [DONE]\n\n"

	s := streamOf(body)
	defer s.Close()

	first, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "Hel", first.Delta)
	assert.False(t, first.Done)
	assert.Equal(t, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n", string(first.Raw))

	second, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "lo", second.Delta)

	terminal, err := s.Next()
	require.NoError(t, err)
	assert.True(t, terminal.Done)
	assert.Empty(t, terminal.Delta)

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStream_RawForwardsVerbatim(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n" +
		": keepalive comment\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n" +
		"data: [DONE]\n\n"

	s := streamOf(body)
	defer s.Close()

	var rebuilt strings.Builder
	for {
		frame, err := s.Next()
		if err != nil {
			require.Equal(t, io.EOF, err)
			break
		}
		rebuilt.Write(frame.Raw)
	}

	assert.Equal(t, body, rebuilt.String())
}

func TestStream_CRLFLines(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\r\n\r\n" +
		"data: [DONE]\r\n\r\n"

	s := streamOf(body)
	defer s.Close()

	frame, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "hi", frame.Delta)

	terminal, err := s.Next()
	require.NoError(t, err)
	assert.True(t, terminal.Done)
}

func TestStream_AbruptCloseIsFailure(t *testing.T) {
	t.Run("mid frame", func(t *testing.T) {
		s := streamOf("data: {\"choices\":[{\"delta\":{\"content\":\"partial")
		defer s.Close()

		_, err := s.Next()
		assert.Equal(t, io.ErrUnexpectedEOF, err)
	})

	t.Run("after complete frame but before terminal", func(t *testing.T) {
		s := streamOf("data: {\"choices\":[{\"delta\":{\"content\":\"done?\"}}]}\n\n")
		defer s.Close()

		frame, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, "done?", frame.Delta)

		_, err = s.Next()
		assert.Equal(t, io.ErrUnexpectedEOF, err)
	})

	t.Run("empty body", func(t *testing.T) {
		s := streamOf("")
		defer s.Close()

		_, err := s.Next()
		assert.Equal(t, io.ErrUnexpectedEOF, err)
	})
}

func TestStream_TerminalWithoutTrailingBlank(t *testing.T) {
	s := streamOf("data: [DONE]\n")
	defer s.Close()

	frame, err := s.Next()
	require.NoError(t, err)
	assert.True(t, frame.Done)

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}
