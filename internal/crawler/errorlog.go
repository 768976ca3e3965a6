package crawler

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileErrorLog appends failure lines to a log file. Recording never
// raises: if the file cannot be written the failure is swallowed after a
// best-effort note to the structured logger.
type FileErrorLog struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewFileErrorLog builds an append-only error log at path.
func NewFileErrorLog(path string, logger *zap.Logger) *FileErrorLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileErrorLog{path: path, logger: logger}
}

// Record implements ErrorLog.
func (l *FileErrorLog) Record(context string, err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, openErr := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if openErr != nil {
		l.logger.Warn("failed to open error log", zap.String("path", l.path), zap.Error(openErr))
		return
	}
	defer func() {
		_ = f.Close()
	}()
	line := fmt.Sprintf("%s %s: %v\n", time.Now().UTC().Format(time.RFC3339), context, err)
	if _, writeErr := f.WriteString(line); writeErr != nil {
		l.logger.Warn("failed to write error log", zap.String("path", l.path), zap.Error(writeErr))
	}
}

// ZapErrorLog routes error records to a zap logger.
type ZapErrorLog struct {
	logger *zap.Logger
}

// NewZapErrorLog wraps logger as an ErrorLog.
func NewZapErrorLog(logger *zap.Logger) *ZapErrorLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapErrorLog{logger: logger}
}

// Record implements ErrorLog.
func (l *ZapErrorLog) Record(context string, err error) {
	if err == nil {
		return
	}
	l.logger.Error(context, zap.Error(err))
}
