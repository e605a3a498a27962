package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Classifier decides whether a message matches the rule set and, if so,
// where it should go. Sender rules are always consulted before keyword
// rules; the first matching rule of either kind wins.
type Classifier struct {
	rules    *RuleStore
	resolver *AddressResolver
	audit    AuditLog
	logger   *zap.Logger
}

// NewClassifier creates a classifier over a compiled rule store.
func NewClassifier(rules *RuleStore, resolver *AddressResolver, audit AuditLog, logger *zap.Logger) *Classifier {
	return &Classifier{
		rules:    rules,
		resolver: resolver,
		audit:    audit,
		logger:   logger,
	}
}

// Classify evaluates one item against the rule set. A failure reading the
// item's fields is logged and treated as "no match"; it never propagates to
// the batch loop.
func (c *Classifier) Classify(ctx context.Context, item Item) Decision {
	subject, err := item.Subject()
	if err != nil {
		c.audit.ItemProcessError(fmt.Errorf("read subject: %w", err))
		return Decision{}
	}
	body, err := item.Body()
	if err != nil {
		c.audit.ItemProcessError(fmt.Errorf("read body: %w", err))
		return Decision{}
	}

	subject = strings.ToLower(subject)
	body = strings.ToLower(body)
	sender := strings.ToLower(c.resolver.Resolve(ctx, item))

	if rule, ok := c.rules.SenderRule(sender); ok {
		// A SenderOnly rule is suppressed only when the sender failed
		// to resolve at all.
		if !rule.SenderOnly || sender != "" {
			return Decision{
				Matched:     true,
				Destination: rule.Destination,
				Trigger:     sender,
				Type:        EmailMatch,
			}
		}
	}

	for _, rule := range c.rules.KeywordRules() {
		matched := strings.Contains(subject, rule.Trigger)
		if !matched && rule.Scope == ScopeSubjectAndBody {
			matched = strings.Contains(body, rule.Trigger)
		}
		if matched {
			return Decision{
				Matched:     true,
				Destination: rule.Destination,
				Trigger:     rule.Trigger,
				Type:        KeywordMatch,
			}
		}
	}

	return Decision{}
}
