package cli

import (
	"errors"
	"fmt"

	"github.com/mattn/go-shellwords"
)

// ErrMalformedLine is returned by Split for a line that cannot be broken into words.
var ErrMalformedLine = errors.New("cannot parse line, check quotes and escapes")

// Split breaks a command line into words using shell quoting rules. Shell
// operators (; & | < >) must be quoted; an unquoted one is an error rather
// than silently truncating the line.
func Split(line string) ([]string, error) {
	parser := shellwords.NewParser()
	words, err := parser.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	if parser.Position >= 0 {
		return nil, fmt.Errorf("%w: quote text containing ; & | < or >", ErrMalformedLine)
	}
	return words, nil
}
