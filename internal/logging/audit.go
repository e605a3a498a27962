package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/mhoran/mailsweep/internal/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AuditLog writes the run's line-oriented, pipe-delimited records to two
// file sinks: bulk activity (DELETED/MOVED/STARTING) and invalid/error
// records. Each line is ts|LEVEL|RECORD|field|...
type AuditLog struct {
	bulk    *zap.Logger
	invalid *zap.Logger
}

// NewAuditLog opens (appending) the two audit sinks.
func NewAuditLog(bulkPath, invalidPath string) (*AuditLog, error) {
	bulk, err := newSink(bulkPath)
	if err != nil {
		return nil, fmt.Errorf("open bulk audit log: %w", err)
	}
	invalid, err := newSink(invalidPath)
	if err != nil {
		return nil, fmt.Errorf("open invalid audit log: %w", err)
	}
	return &AuditLog{bulk: bulk, invalid: invalid}, nil
}

func newSink(path string) (*zap.Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: "|",
		LineEnding:       zapcore.DefaultLineEnding,
	}
	enc := zapcore.NewConsoleEncoder(encCfg)
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.InfoLevel)), nil
}

func record(fields ...string) string {
	return strings.Join(fields, "|")
}

// Starting records the folder a run is about to process.
func (a *AuditLog) Starting(folderPath string) {
	a.bulk.Info(record("STARTING", folderPath))
}

// Deleted records a permanent removal.
func (a *AuditLog) Deleted(trigger string, matchType core.MatchType, subject string) {
	a.bulk.Info(record("DELETED", trigger, string(matchType), subject))
}

// Moved records a relocation.
func (a *AuditLog) Moved(destination, trigger string, matchType core.MatchType, subject string) {
	a.bulk.Info(record("MOVED", destination, trigger, string(matchType), subject))
}

// ActionError records a failed delete/move.
func (a *AuditLog) ActionError(destination string, err error) {
	a.invalid.Error(record("ActionError", destination, err.Error()))
}

// ItemProcessError records a per-item failure that was skipped.
func (a *AuditLog) ItemProcessError(err error) {
	a.invalid.Error(record("ItemProcessError", err.Error()))
}

// FolderProcessingError records a failure of the item loop itself.
func (a *AuditLog) FolderProcessingError(folderName string, err error) {
	a.invalid.Error(record("FolderProcessingError", folderName, err.Error()))
}

// DataLoaderError records a rule-table load failure.
func (a *AuditLog) DataLoaderError(err error) {
	a.invalid.Error(record("DataLoaderError", err.Error()))
}

// GlobalRunError records an unexpected run-level failure.
func (a *AuditLog) GlobalRunError(err error) {
	a.invalid.Error(record("GlobalRunError", err.Error()))
}

// Sync flushes both sinks.
func (a *AuditLog) Sync() {
	_ = a.bulk.Sync()
	_ = a.invalid.Sync()
}

var _ core.AuditLog = (*AuditLog)(nil)
