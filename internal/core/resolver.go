package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// AddressResolver resolves a message's effective sender address, backed by a
// persistent cache keyed by the provider's directory handle. The cache only
// grows: entries are never evicted during a run, and Load merges previously
// persisted entries by overwrite.
type AddressResolver struct {
	directory DirectoryService
	store     CacheStore
	logger    *zap.Logger

	cache map[string]string
}

// NewAddressResolver creates a resolver with an empty in-memory cache. Call
// LoadCache before the first run to pick up entries from earlier runs.
func NewAddressResolver(directory DirectoryService, store CacheStore, logger *zap.Logger) *AddressResolver {
	return &AddressResolver{
		directory: directory,
		store:     store,
		logger:    logger,
		cache:     make(map[string]string),
	}
}

// LoadCache merges persisted cache entries into the in-memory cache.
func (r *AddressResolver) LoadCache(ctx context.Context) error {
	entries, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	for handle, addr := range entries {
		r.cache[strings.ToLower(handle)] = addr
	}
	r.logger.Info("address cache loaded", zap.Int("entries", len(r.cache)))
	return nil
}

// Resolve returns the item's effective sender address, or "" when no address
// can be determined. It never fails: an unresolved sender must not abort
// classification of the message.
func (r *AddressResolver) Resolve(ctx context.Context, item Item) string {
	sender, err := item.Sender()
	if err != nil {
		r.logger.Debug("sender handle unavailable", zap.Error(err))
		return r.plainAddress(item)
	}

	if !sender.Directory {
		return r.plainAddress(item)
	}

	handle := strings.ToLower(sender.Handle)
	if addr, ok := r.cache[handle]; ok {
		return addr
	}

	addr, err := r.directory.ResolvePrimaryAddress(ctx, sender.Handle)
	if err != nil || addr == "" {
		if err != nil {
			r.logger.Debug("directory resolution failed",
				zap.String("handle", sender.Handle),
				zap.Error(err))
		}
		return r.plainAddress(item)
	}

	r.cache[handle] = addr
	return addr
}

func (r *AddressResolver) plainAddress(item Item) string {
	addr, err := item.SenderAddress()
	if err != nil {
		return ""
	}
	return addr
}

// Flush persists the in-memory cache through the cache store.
func (r *AddressResolver) Flush(ctx context.Context) error {
	if err := r.store.Save(ctx, r.cache); err != nil {
		return err
	}
	r.logger.Debug("address cache saved", zap.Int("entries", len(r.cache)))
	return nil
}

// CacheSize reports the number of in-memory cache entries.
func (r *AddressResolver) CacheSize() int { return len(r.cache) }
