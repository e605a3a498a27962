package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFolderNotFound is wrapped by Folder.Child when the named child does not
// exist. Callers distinguish it from transport failures with errors.Is.
var ErrFolderNotFound = errors.New("folder not found")

// ArchiveNotFoundError is returned when no store matches the configured
// archive display name. It ends the run before any item is touched.
type ArchiveNotFoundError struct {
	Name string
}

func (e *ArchiveNotFoundError) Error() string {
	return fmt.Sprintf("could not find archive store %q", e.Name)
}

// TargetNotFoundError is returned when a segment of the target folder path
// cannot be resolved. Siblings lists the folders that do exist at that depth
// so the caller can fix the configured path.
type TargetNotFoundError struct {
	Segment  string
	Parent   string
	Path     string
	Siblings []string
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("cannot find folder %q under %q (available: %s); full path attempted: %q",
		e.Segment, e.Parent, strings.Join(e.Siblings, ", "), e.Path)
}
