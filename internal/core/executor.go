package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// PathSeparator delimits segments of a destination folder path.
const PathSeparator = `\`

// ActionExecutor performs the external mutation a matched decision calls
// for: permanent removal when the destination is the configured deletion
// sentinel, relocation into a (possibly newly created) folder otherwise.
type ActionExecutor struct {
	deleteDestination string
	audit             AuditLog
	logger            *zap.Logger
}

// NewActionExecutor creates an executor. deleteDestination is the sentinel
// destination name that triggers permanent removal instead of a move.
func NewActionExecutor(deleteDestination string, audit AuditLog, logger *zap.Logger) *ActionExecutor {
	return &ActionExecutor{
		deleteDestination: deleteDestination,
		audit:             audit,
		logger:            logger,
	}
}

// Execute carries out a matched decision against the item. It returns true
// on success. On failure it logs an ActionError and returns false; the
// caller treats false as "item left unprocessed, continue with next item".
func (e *ActionExecutor) Execute(ctx context.Context, item Item, decision Decision, archiveRoot Folder) bool {
	subject, err := item.Subject()
	if err != nil {
		subject = ""
	}

	if decision.Destination == e.deleteDestination {
		if err := item.Delete(ctx); err != nil {
			e.audit.ActionError(decision.Destination, err)
			return false
		}
		e.audit.Deleted(decision.Trigger, decision.Type, subject)
		return true
	}

	dest, err := e.ensureFolder(ctx, archiveRoot, decision.Destination)
	if err != nil {
		e.audit.ActionError(decision.Destination, err)
		return false
	}
	if err := item.Move(ctx, dest); err != nil {
		e.audit.ActionError(decision.Destination, err)
		return false
	}
	e.audit.Moved(decision.Destination, decision.Trigger, decision.Type, subject)
	return true
}

// ensureFolder resolves path under root, creating missing segments.
func (e *ActionExecutor) ensureFolder(ctx context.Context, root Folder, path string) (Folder, error) {
	current := root
	for _, segment := range strings.Split(path, PathSeparator) {
		child, err := current.Child(ctx, segment)
		if errors.Is(err, ErrFolderNotFound) {
			child, err = current.CreateChild(ctx, segment)
			if err == nil {
				e.logger.Info("created destination folder",
					zap.String("parent", current.Path()),
					zap.String("name", segment))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("resolve folder %q under %q: %w", segment, current.Path(), err)
		}
		current = child
	}
	return current, nil
}
