package console

import (
	"fmt"
	"os"
)

// DefaultLogFile is where FileSink writes when no path is given.
const DefaultLogFile = "log.txt"

// FileSink appends each line to a file. The file is opened and closed on
// every write.
type FileSink struct {
	Path string
}

// WriteLine implements Sink.
func (f FileSink) WriteLine(line string) error {
	path := f.Path
	if path == "" {
		path = DefaultLogFile
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("console: open log: %w", err)
	}
	if _, err := file.WriteString(line + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("console: write log: %w", err)
	}
	return file.Close()
}
