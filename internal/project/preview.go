package project

import (
	"io"
	"os"
	"unicode/utf8"
)

// MaxPreviewBytes bounds how much of a file ReadText returns.
const MaxPreviewBytes = 1 << 20

// ReadText returns the text content of path, or "" when it cannot be read,
// is a directory, or is not valid UTF-8. Content past MaxPreviewBytes is
// dropped.
func ReadText(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxPreviewBytes))
	if err != nil {
		return ""
	}
	if len(data) == MaxPreviewBytes {
		// Drop a rune split by the cap.
		for i := 0; i < utf8.UTFMax-1 && len(data) > 0 && !utf8.Valid(data); i++ {
			data = data[:len(data)-1]
		}
	}
	if !utf8.Valid(data) {
		return ""
	}
	return string(data)
}
