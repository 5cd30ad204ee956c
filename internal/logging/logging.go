// ABOUTME: Shared hclog constructor for the CLI, HTTP API, and MCP server.
// ABOUTME: Levels come from config strings; unknown levels fall back to info.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "healthtrends"

// New returns a named logger at level writing to w. A nil w writes to stderr.
func New(level string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Level:  lvl,
		Output: w,
	})
}
