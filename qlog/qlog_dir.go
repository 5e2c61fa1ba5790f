package qlog

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/drtp-go/drtp/internal/utils"
	"github.com/drtp-go/drtp/logging"
)

// LogDir contains the value of the DRTPLOGDIR environment variable.
// If it is the empty string ("") no trace output is written.
var LogDir string

func init() {
	LogDir = os.Getenv("DRTPLOGDIR")
	if LogDir != "" {
		if _, err := os.Stat(LogDir); os.IsNotExist(err) {
			if err := os.MkdirAll(LogDir, 0o755); err != nil {
				log.Fatalf("failed to create qlog dir %s: %v", LogDir, err)
			}
		}
	}
}

// DefaultTracer creates a trace file in the directory specified by the
// DRTPLOGDIR environment variable. File names are <timestamp>_<perspective>.qlog.
// Returns nil if DRTPLOGDIR is not set.
func DefaultTracer(p logging.Perspective) *logging.TransferTracer {
	if LogDir == "" {
		return nil
	}
	path := fmt.Sprintf("%s/%d_%s.qlog", strings.TrimRight(LogDir, "/"), time.Now().UnixNano(), p)
	f, err := os.Create(path)
	if err != nil {
		log.Printf("Failed to create qlog file %s: %s", path, err.Error())
		return nil
	}
	return NewTracer(utils.NewBufferedWriteCloser(bufio.NewWriter(f), f))
}
