package application

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type CommandKind int

const (
	CommandInvalid CommandKind = iota
	CommandGet
	CommandQuit
	CommandShutdown
)

func (k CommandKind) String() string {
	switch k {
	case CommandGet:
		return "GET"
	case CommandQuit:
		return "QUIT"
	case CommandShutdown:
		return "SHUTDOWN"
	default:
		return "INVALID"
	}
}

// Command is one normalized request line.
type Command struct {
	Kind CommandKind
	// Input is the whole line after stripping the terminator and upper-casing.
	Input string
	// Token is the index argument of a GET.
	Token string
}

var (
	errEmptyIndex    = errors.New("cannot parse integer from empty string")
	errInvalidDigit  = errors.New("invalid digit found in string")
	errIndexTooLarge = errors.New("number too large to fit in target type")
)

// ParseCommand normalizes a raw request line and classifies it by its first word.
func ParseCommand(raw string) Command {
	input := normalizeCommand(raw)
	fields := strings.Split(input, " ")

	switch fields[0] {
	case "GET":
		cmd := Command{Kind: CommandGet, Input: input}
		if len(fields) > 1 {
			cmd.Token = fields[1]
		}
		return cmd
	case "QUIT":
		return Command{Kind: CommandQuit, Input: input}
	case "SHUTDOWN":
		return Command{Kind: CommandShutdown, Input: input}
	default:
		return Command{Kind: CommandInvalid, Input: input}
	}
}

func normalizeCommand(raw string) string {
	line := strings.TrimSuffix(raw, "\n")
	line = strings.TrimSuffix(line, "\r")
	return strings.ToUpper(line)
}

// ParseLineIndex parses a decimal index in [0, 65535]. A single leading '+' is
// allowed. Digits are consumed left to right, so overflow is reported at the
// first digit that exceeds the range even if a non-digit follows.
func ParseLineIndex(token string) (uint16, error) {
	if token == "" {
		return 0, errEmptyIndex
	}

	digits := strings.TrimPrefix(token, "+")
	if digits == "" {
		return 0, errInvalidDigit
	}

	var n uint32
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, errInvalidDigit
		}
		n = n*10 + uint32(c-'0')
		if n > math.MaxUint16 {
			return 0, errIndexTooLarge
		}
	}

	return uint16(n), nil
}

func okResponse(line string) string {
	return "Ok\r\n" + line + "\r\n"
}

func badIndexResponse(err error, token string) string {
	return fmt.Sprintf("Err - %s. Is %s an unsigned integer under 65536?\r\n", err, token)
}

func outOfRangeResponse(index uint16, total int) string {
	return fmt.Sprintf("Err - failed to retrieve line %d. There are only %d lines available.\r\n", index, total)
}

func invalidCommandResponse(input string) string {
	return fmt.Sprintf("Err - %s is an invalid command. `GET nnnn | QUIT | SHUTDOWN` are valid commands.\r\n", input)
}
