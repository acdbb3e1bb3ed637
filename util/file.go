package util

import (
	"os"
	"strings"
)

// WriteToFile writes the given strings to the file, one per line,
// replacing any existing content.
func WriteToFile(savePath string, content ...string) error {
	return os.WriteFile(savePath, []byte(strings.Join(content, "\n")+"\n"), 0o644)
}
