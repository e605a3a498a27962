package core_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mhoran/mailsweep/internal/core"
)

// recordingAudit captures audit records as the pipe-delimited lines the file
// sinks would write, so tests can assert on record shape.
type recordingAudit struct {
	mu      sync.Mutex
	bulk    []string
	invalid []string
}

func (a *recordingAudit) record(sink *[]string, fields ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	line := ""
	for i, f := range fields {
		if i > 0 {
			line += "|"
		}
		line += f
	}
	*sink = append(*sink, line)
}

func (a *recordingAudit) Starting(folderPath string) {
	a.record(&a.bulk, "STARTING", folderPath)
}

func (a *recordingAudit) Deleted(trigger string, matchType core.MatchType, subject string) {
	a.record(&a.bulk, "DELETED", trigger, string(matchType), subject)
}

func (a *recordingAudit) Moved(destination, trigger string, matchType core.MatchType, subject string) {
	a.record(&a.bulk, "MOVED", destination, trigger, string(matchType), subject)
}

func (a *recordingAudit) ActionError(destination string, err error) {
	a.record(&a.invalid, "ActionError", destination, err.Error())
}

func (a *recordingAudit) ItemProcessError(err error) {
	a.record(&a.invalid, "ItemProcessError", err.Error())
}

func (a *recordingAudit) FolderProcessingError(folderName string, err error) {
	a.record(&a.invalid, "FolderProcessingError", folderName, err.Error())
}

func (a *recordingAudit) DataLoaderError(err error) {
	a.record(&a.invalid, "DataLoaderError", err.Error())
}

func (a *recordingAudit) GlobalRunError(err error) {
	a.record(&a.invalid, "GlobalRunError", err.Error())
}

var _ core.AuditLog = (*recordingAudit)(nil)

// countingDirectory resolves from a fixed table and counts lookups.
type countingDirectory struct {
	entries map[string]string
	calls   int
}

func (d *countingDirectory) ResolvePrimaryAddress(_ context.Context, handle string) (string, error) {
	d.calls++
	if addr, ok := d.entries[strings.ToLower(handle)]; ok {
		return addr, nil
	}
	return "", fmt.Errorf("handle %q not in directory", handle)
}
