// Package protocol implements the newline-delimited text protocol spoken
// with the game host over the serial link.
//
// Outbound lines: "A,<angleX>,<angleY>", "B,1", "M,1".
// Inbound lines: "<tag>,<int>" with tag one of S, T, R, V.
//
// There is no checksum, escaping or acknowledgement in either direction.
package protocol

import (
	"errors"
	"strconv"

	"github.com/sweeney/game-controller/internal/logic"
)

// Inbound command tags.
const (
	TagState   = 'S'
	TagTone    = 'T'
	TagReset   = 'R'
	TagVariant = 'V'
)

// MaxLineLength is the longest inbound line accepted, excluding the newline.
const MaxLineLength = 64

var (
	ErrEmptyLine   = errors.New("empty line")
	ErrNoSeparator = errors.New("missing comma after tag")
	ErrBadArgument = errors.New("argument is not an integer")
	ErrUnknownTag  = errors.New("unknown tag")
	ErrOutOfRange  = errors.New("argument out of range")
	ErrLineTooLong = errors.New("line too long")
)

// Message is one parsed inbound line.
type Message struct {
	Tag byte
	Arg int
	// Err is set when the line did not match "<tag>,<int>". Arg is 0 then.
	Err error
}

// Malformed reports whether the line failed to parse.
func (m Message) Malformed() bool {
	return m.Err != nil
}

// ParseLine parses one inbound line (without its newline). It never fails:
// a malformed line yields a Message with Arg 0 and Err describing why.
// Only trailing whitespace is tolerated; the tag must be the first byte and
// the argument must follow the comma directly.
func ParseLine(line string) Message {
	line = trimRight(line)
	if line == "" {
		return Message{Err: ErrEmptyLine}
	}

	msg := Message{Tag: line[0]}
	if len(line) < 2 || line[1] != ',' {
		msg.Err = ErrNoSeparator
		return msg
	}

	arg, err := strconv.Atoi(line[2:])
	if err != nil {
		msg.Err = ErrBadArgument
		return msg
	}
	msg.Arg = arg
	return msg
}

func trimRight(s string) string {
	for len(s) > 0 && isSpace(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// Encode formats an outbound event as a single newline-terminated line.
// It returns false for events that are not sent to the host.
func Encode(e logic.Event) ([]byte, bool) {
	switch e.Type {
	case logic.EventAccel:
		b := make([]byte, 0, 24)
		b = append(b, 'A', ',')
		b = strconv.AppendFloat(b, e.AngleX, 'f', 2, 64)
		b = append(b, ',')
		b = strconv.AppendFloat(b, e.AngleY, 'f', 2, 64)
		return append(b, '\n'), true
	case logic.EventButton:
		return []byte("B,1\n"), true
	case logic.EventMotion:
		return []byte("M,1\n"), true
	}
	return nil, false
}
