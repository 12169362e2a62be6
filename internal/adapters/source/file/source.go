package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bnema/lineserver/internal/domain"
	"github.com/bnema/lineserver/internal/ports"
)

const ctxCheckInterval = 4096

// Source reads a text file into a line store in one pass.
type Source struct {
	path string
}

var _ ports.LineSource = (*Source)(nil)

func NewSource(path string) *Source {
	return &Source{path: filepath.Clean(path)}
}

func (s *Source) Describe() string {
	return s.path
}

func (s *Source) Load(ctx context.Context) (*domain.Lines, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open line file: %w", err)
	}
	defer f.Close()

	lines, err := ReadLines(ctx, f)
	if err != nil {
		return nil, err
	}

	return domain.NewLines(lines), nil
}

// ReadLines splits r on '\n', dropping a trailing '\r' from each line. A final
// line without a terminator is kept; an empty tail is not a line.
func ReadLines(ctx context.Context, r io.Reader) ([]string, error) {
	reader := bufio.NewReader(r)
	var lines []string

	for n := 1; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if !utf8.ValidString(line) {
				return nil, fmt.Errorf("line %d is not valid UTF-8: %w", n, domain.ErrInvalidLineSource)
			}
			lines = append(lines, line)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return nil, fmt.Errorf("read line %d: %w", n, err)
		}
	}
}
