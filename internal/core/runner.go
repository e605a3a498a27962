package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RootFolderToken is the target-path token that selects the archive root
// itself instead of a subfolder.
const RootFolderToken = "ROOT"

// RunOptions configures one batch run.
type RunOptions struct {
	// ArchiveName is the display name of the store to process.
	ArchiveName string
	// CacheSaveInterval is the number of matched items between address
	// cache flushes.
	CacheSaveInterval int
	// ProgressEvery and ProgressInterval bound how often a progress
	// observation is emitted: every N processed items or every interval
	// of wall time, whichever comes first.
	ProgressEvery    int
	ProgressInterval time.Duration
}

func (o RunOptions) withDefaults() RunOptions {
	if o.CacheSaveInterval <= 0 {
		o.CacheSaveInterval = 500
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = 100
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = 30 * time.Second
	}
	return o
}

// BatchRunner drives one end-to-end pass over a target folder: it resolves
// the archive store and target folder, walks the folder's items in
// mutation-safe descending order, classifies and acts on each mail item, and
// flushes the address cache at the configured cadence. A runner owns its
// resolver's cache and counters; only one run per folder may be in flight.
type BatchRunner struct {
	store      MailStore
	classifier *Classifier
	executor   *ActionExecutor
	resolver   *AddressResolver
	audit      AuditLog
	logger     *zap.Logger
	opts       RunOptions

	processed          int
	itemsSinceSave     int
	itemsSinceProgress int
	lastProgress       time.Time
}

// NewBatchRunner assembles a runner from its collaborators.
func NewBatchRunner(
	store MailStore,
	classifier *Classifier,
	executor *ActionExecutor,
	resolver *AddressResolver,
	audit AuditLog,
	logger *zap.Logger,
	opts RunOptions,
) *BatchRunner {
	return &BatchRunner{
		store:      store,
		classifier: classifier,
		executor:   executor,
		resolver:   resolver,
		audit:      audit,
		logger:     logger,
		opts:       opts.withDefaults(),
	}
}

// Run processes the folder at targetPath under the configured archive store.
// targetPath is a backslash-delimited segment list, or RootFolderToken for
// the archive root. A failure to resolve the archive or the target path ends
// the run before any item is touched; per-item failures are logged and
// skipped. On normal completion the address cache is flushed once more and
// the final counters are returned.
func (b *BatchRunner) Run(ctx context.Context, targetPath string) (RunStats, error) {
	b.processed = 0
	b.itemsSinceSave = 0
	b.itemsSinceProgress = 0
	b.lastProgress = time.Now()

	archiveRoot, err := b.resolveArchive(ctx)
	if err != nil {
		return RunStats{}, err
	}

	target, err := b.resolveTarget(ctx, archiveRoot, targetPath)
	if err != nil {
		return RunStats{}, err
	}

	b.logger.Info("starting batch run",
		zap.String("archive", b.opts.ArchiveName),
		zap.String("folder", target.Path()))
	b.audit.Starting(target.Path())

	if err := b.processFolder(ctx, target, archiveRoot); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Cooperative stop: flush what we have and report.
			b.finalSave(ctx)
			return RunStats{Processed: b.processed}, err
		}
		b.audit.FolderProcessingError(target.Name(), err)
		b.logger.Error("folder processing failed",
			zap.String("folder", target.Name()),
			zap.Error(err))
	}

	b.finalSave(ctx)

	b.logger.Info("batch run complete", zap.Int("processed", b.processed))
	return RunStats{Processed: b.processed}, nil
}

// resolveArchive finds the store whose display name matches the configured
// archive name and returns its root folder.
func (b *BatchRunner) resolveArchive(ctx context.Context) (Folder, error) {
	stores, err := b.store.Stores(ctx)
	if err != nil {
		b.audit.GlobalRunError(err)
		return nil, fmt.Errorf("list stores: %w", err)
	}
	for _, s := range stores {
		if s.DisplayName() == b.opts.ArchiveName {
			root, err := s.RootFolder(ctx)
			if err != nil {
				b.audit.GlobalRunError(err)
				return nil, fmt.Errorf("open archive root: %w", err)
			}
			return root, nil
		}
	}
	return nil, &ArchiveNotFoundError{Name: b.opts.ArchiveName}
}

// resolveTarget walks targetPath under the archive root. A missing segment
// fails the run with a diagnostic listing the folders that do exist at that
// depth.
func (b *BatchRunner) resolveTarget(ctx context.Context, archiveRoot Folder, targetPath string) (Folder, error) {
	if targetPath == RootFolderToken {
		return archiveRoot, nil
	}

	current := archiveRoot
	for _, segment := range strings.Split(targetPath, PathSeparator) {
		b.logger.Debug("resolving folder segment",
			zap.String("segment", segment),
			zap.String("under", current.Name()))

		child, err := current.Child(ctx, segment)
		if errors.Is(err, ErrFolderNotFound) {
			siblings, listErr := b.siblingNames(ctx, current)
			if listErr != nil {
				b.logger.Warn("could not list sibling folders", zap.Error(listErr))
			}
			return nil, &TargetNotFoundError{
				Segment:  segment,
				Parent:   current.Name(),
				Path:     targetPath,
				Siblings: siblings,
			}
		}
		if err != nil {
			return nil, fmt.Errorf("resolve target segment %q: %w", segment, err)
		}
		current = child
	}
	return current, nil
}

func (b *BatchRunner) siblingNames(ctx context.Context, folder Folder) ([]string, error) {
	children, err := folder.Children(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name())
	}
	return names, nil
}

// stepStatus is the outcome of one per-item step.
type stepStatus int

const (
	stepOK stepStatus = iota
	stepNoMatch
	stepSkip
)

// processFolder iterates the folder's items from the highest position down
// to 1, re-reading the item at the current position on each step. The
// descending order is load-bearing: removing or relocating an item shifts
// the provider's live positions, and walking from the end keeps
// not-yet-visited lower positions stable.
func (b *BatchRunner) processFolder(ctx context.Context, folder Folder, archiveRoot Folder) error {
	items, err := folder.Items(ctx)
	if err != nil {
		return fmt.Errorf("open items: %w", err)
	}
	count, err := items.Count(ctx)
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}

	b.logger.Info("processing folder",
		zap.String("folder", folder.Path()),
		zap.Int("items", count))

	for pos := count; pos >= 1; pos-- {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch b.step(ctx, items, pos, archiveRoot) {
		case stepOK:
			b.processed++
			b.itemsSinceSave++
			b.itemsSinceProgress++
			b.maybeReportProgress()
			b.maybeSaveCache(ctx)
		case stepSkip, stepNoMatch:
			// Continue at the next lower position either way.
		}
	}

	b.logger.Info("folder processing complete", zap.String("folder", folder.Path()))
	return nil
}

// step classifies and acts on the item at one position. Failures are
// contained here: a vanished or unreadable item is a skip, never an abort.
func (b *BatchRunner) step(ctx context.Context, items ItemSource, pos int, archiveRoot Folder) stepStatus {
	item, err := items.ItemAt(ctx, pos)
	if err != nil {
		// Likely removed by a concurrent change since Count.
		b.audit.ItemProcessError(fmt.Errorf("item at %d: %w", pos, err))
		b.logger.Debug("skipping unreadable item", zap.Int("position", pos), zap.Error(err))
		return stepSkip
	}
	if !item.IsMail() {
		return stepNoMatch
	}

	decision := b.classifier.Classify(ctx, item)
	if !decision.Matched {
		return stepNoMatch
	}
	if !b.executor.Execute(ctx, item, decision, archiveRoot) {
		return stepSkip
	}
	return stepOK
}

func (b *BatchRunner) maybeReportProgress() {
	if b.itemsSinceProgress < b.opts.ProgressEvery && time.Since(b.lastProgress) < b.opts.ProgressInterval {
		return
	}
	b.logger.Info("progress", zap.Int("processed", b.processed))
	b.itemsSinceProgress = 0
	b.lastProgress = time.Now()
}

// maybeSaveCache flushes the address cache when the save interval is
// reached. The counter only resets on success, so a failed flush is retried
// at the next matched item.
func (b *BatchRunner) maybeSaveCache(ctx context.Context) {
	if b.itemsSinceSave < b.opts.CacheSaveInterval {
		return
	}
	b.logger.Info("saving address cache", zap.Int("entries", b.resolver.CacheSize()))
	if err := b.resolver.Flush(ctx); err != nil {
		b.logger.Error("address cache save failed", zap.Error(err))
		return
	}
	b.itemsSinceSave = 0
}

func (b *BatchRunner) finalSave(ctx context.Context) {
	if err := b.resolver.Flush(ctx); err != nil {
		b.logger.Error("final address cache save failed", zap.Error(err))
	}
}
