package llm

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// terminalMarker is the payload of the frame that ends a completion stream.
const terminalMarker = "[DONE]"

// Frame is one server-sent event read from the completion stream.
type Frame struct {
	// Raw holds the frame's verbatim bytes, terminator line included, so
	// callers can forward the stream without re-encoding it.
	Raw []byte
	// Delta is the content fragment carried by the frame, if any.
	Delta string
	// Done marks the terminal frame.
	Done bool
}

type streamState int

const (
	stateAwaiting streamState = iota
	stateForwarding
	stateDone
)

// Stream reads server-sent event frames from a completion response body. It
// is an explicit frame state machine over a buffered byte stream: a frame is
// every line up to and including the next blank line.
type Stream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	state  streamState
}

func newStream(body io.ReadCloser) *Stream {
	return &Stream{
		body:   body,
		reader: bufio.NewReader(body),
		state:  stateAwaiting,
	}
}

var dataPrefix = []byte("data: ")

// Next returns the next frame. After the terminal frame it returns io.EOF.
// An upstream close before the terminal marker is reported as
// io.ErrUnexpectedEOF; consumers must treat it as a failed response.
func (s *Stream) Next() (*Frame, error) {
	if s.state == stateDone {
		return nil, io.EOF
	}

	frame := &Frame{}
	var raw bytes.Buffer

	for {
		line, err := s.reader.ReadBytes('\n')
		if len(line) > 0 {
			raw.Write(line)
			s.parseLine(line, frame)
		}
		if err != nil {
			// Even io.EOF is abnormal here: a clean stream ends with the
			// terminal marker, which flips the state before EOF is reached.
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if isBlankLine(line) && raw.Len() > len(line) {
			break
		}
		if frame.Done {
			// Consume the terminal frame's trailing blank line when present
			// so Raw carries the complete frame; EOF here is normal.
			for {
				line, err := s.reader.ReadBytes('\n')
				if len(line) > 0 {
					raw.Write(line)
				}
				if err != nil || isBlankLine(line) {
					break
				}
			}
			break
		}
	}

	frame.Raw = raw.Bytes()
	if frame.Done {
		s.state = stateDone
	} else {
		s.state = stateForwarding
	}

	return frame, nil
}

// Close releases the underlying response body.
func (s *Stream) Close() error {
	return s.body.Close()
}

func (s *Stream) parseLine(line []byte, frame *Frame) {
	line = bytes.TrimRight(line, "\r\n")
	if !bytes.HasPrefix(line, dataPrefix) {
		return
	}

	payload := bytes.TrimPrefix(line, dataPrefix)
	if string(payload) == terminalMarker {
		frame.Done = true
		return
	}

	// The delta is only parsed out so the caller can accumulate the final
	// answer text; the payload itself is forwarded untouched via Raw.
	var event struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return
	}
	if len(event.Choices) > 0 {
		frame.Delta += event.Choices[0].Delta.Content
	}
}

func isBlankLine(line []byte) bool {
	trimmed := bytes.TrimRight(line, "\r\n")
	return len(trimmed) == 0
}
