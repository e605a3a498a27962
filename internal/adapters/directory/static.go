// Package directory resolves internal directory handles to plain addresses.
package directory

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// StaticService resolves handles from a fixed table supplied by
// configuration. Unknown handles fail resolution, which makes the resolver
// fall back to the message's plain sender address.
type StaticService struct {
	entries map[string]string
	logger  *zap.Logger
}

// NewStaticService creates a service over the given handle→address table.
func NewStaticService(entries map[string]string, logger *zap.Logger) *StaticService {
	normalized := make(map[string]string, len(entries))
	for handle, addr := range entries {
		normalized[strings.ToLower(handle)] = addr
	}
	return &StaticService{entries: normalized, logger: logger}
}

func (s *StaticService) ResolvePrimaryAddress(ctx context.Context, handle string) (string, error) {
	addr, ok := s.entries[strings.ToLower(handle)]
	if !ok {
		return "", fmt.Errorf("handle %q not in directory", handle)
	}
	s.logger.Debug("directory handle resolved",
		zap.String("handle", handle),
		zap.String("address", addr))
	return addr, nil
}
