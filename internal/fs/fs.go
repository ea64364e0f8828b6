package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrDecode = errors.New("decoding error")

// WriterDecoder is any buffered decoder that can be filled from a file.
type WriterDecoder interface {
	io.Writer
	Decode() (any, error)
}

func ReadFile(filename string, w io.Writer) (int64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(w, f)
}

func ReadDecodeFile(filename string, w WriterDecoder) (any, error) {
	if _, err := ReadFile(filename, w); err != nil {
		return nil, err
	}
	return w.Decode()
}

// ReadPRNumber reads a pull request number persisted to disk by an upstream
// workflow. The file must contain the literal numeric identifier, optionally
// surrounded by whitespace.
func ReadPRNumber(filename string) (int, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return 0, err
	}
	content := strings.TrimSpace(string(b))
	number, err := strconv.Atoi(content)
	if err != nil {
		return 0, fmt.Errorf("%w: pull request number %q in %s", ErrDecode, content, filename)
	}
	if number <= 0 {
		return 0, fmt.Errorf("%w: pull request number must be positive, got %d", ErrDecode, number)
	}
	return number, nil
}
