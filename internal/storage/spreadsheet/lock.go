package spreadsheet

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/storeduty/internal/constants"
	"github.com/julianstephens/storeduty/internal/logger"
)

var findProcessFunc = ps.FindProcess

// ErrLocked is returned when another live process holds the workbook lock
// for longer than constants.SpreadsheetLockWait.
var ErrLocked = errors.New("workbook is locked by another process")

// fileLock is a single-writer lockfile holding the owner's PID. A lock whose
// PID is no longer running is treated as stale and taken over.
type fileLock struct {
	path string
}

func (l fileLock) acquire() error {
	deadline := time.Now().Add(constants.SpreadsheetLockWait)
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d", os.Getpid())
			cerr := f.Close()
			if werr != nil {
				return werr
			}
			return cerr
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lockfile: %w", err)
		}

		if pid, alive := l.owner(); !alive {
			logger.Warn("Removing stale workbook lock", "path", l.path, "pid", pid)
			if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove stale lockfile: %w", err)
			}
			continue
		}

		if time.Now().After(deadline) {
			return ErrLocked
		}
		time.Sleep(constants.SpreadsheetLockRetry)
	}
}

// owner reads the lock's PID and reports whether that process is running.
// An unreadable lockfile counts as stale.
func (l fileLock) owner() (int, bool) {
	content, err := os.ReadFile(l.path)
	if err != nil {
		return 0, !os.IsNotExist(err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, false
	}
	if pid == os.Getpid() {
		return pid, true
	}
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return pid, false
	}
	return pid, true
}

func (l fileLock) release() {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to release workbook lock", "path", l.path, "error", err)
	}
}
