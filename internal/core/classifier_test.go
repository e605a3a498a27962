package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/adapters/cachestore"
	"github.com/mhoran/mailsweep/internal/adapters/mailstore"
	"github.com/mhoran/mailsweep/internal/core"
)

func newClassifier(t *testing.T, rows []core.RuleRow, audit *recordingAudit) *core.Classifier {
	t.Helper()
	rules := core.CompileRules(rows, audit, zap.NewNop())
	resolver := core.NewAddressResolver(&countingDirectory{}, cachestore.NewMemoryStore(), zap.NewNop())
	return core.NewClassifier(rules, resolver, audit, zap.NewNop())
}

func TestClassifySenderRuleMatch(t *testing.T) {
	c := newClassifier(t, []core.RuleRow{
		{Name: "alerts", Kind: core.RuleKindAddress, Destination: "ToDelete", Values: []string{"alerts@x.com"}},
	}, &recordingAudit{})

	item := mailstore.NewMailItem("Alerts@X.com", "System alert", "body")
	dec := c.Classify(context.Background(), item)

	require.True(t, dec.Matched)
	assert.Equal(t, "ToDelete", dec.Destination)
	assert.Equal(t, "alerts@x.com", dec.Trigger)
	assert.Equal(t, core.EmailMatch, dec.Type)
}

func TestClassifySenderRulesWinOverKeywords(t *testing.T) {
	c := newClassifier(t, []core.RuleRow{
		{Name: "kw", Kind: core.RuleKindKeyword, Destination: "Promo", Values: []string{"newsletter"}},
		{Name: "addr", Kind: core.RuleKindAddress, Destination: "Alerts", Values: []string{"alerts@x.com"}},
	}, &recordingAudit{})

	// Subject contains a keyword trigger, but the sender rule must fire
	// first and stop evaluation.
	item := mailstore.NewMailItem("alerts@x.com", "Your newsletter", "")
	dec := c.Classify(context.Background(), item)

	require.True(t, dec.Matched)
	assert.Equal(t, core.EmailMatch, dec.Type)
	assert.Equal(t, "Alerts", dec.Destination)
}

func TestClassifyKeywordSubstringCaseInsensitive(t *testing.T) {
	c := newClassifier(t, []core.RuleRow{
		{Name: "kw", Kind: core.RuleKindKeyword, Destination: "Billing", Values: []string{"invoice"}},
	}, &recordingAudit{})

	item := mailstore.NewMailItem("someone@else.com", "Re: INVOICE #2", "")
	dec := c.Classify(context.Background(), item)

	require.True(t, dec.Matched)
	assert.Equal(t, "invoice", dec.Trigger)
	assert.Equal(t, core.KeywordMatch, dec.Type)
	assert.Equal(t, "Billing", dec.Destination)
}

func TestClassifyKeywordScopes(t *testing.T) {
	rows := []core.RuleRow{
		{Name: "subject-only", Kind: core.RuleKindKeyword, Destination: "A", Values: []string{"quarterly"}},
		{Name: "subject-and-body", Kind: core.RuleKindKeyword, Destination: "B",
			Values: []string{"unsubscribe"}, Scope: core.ScopeSubjectAndBody},
	}

	tests := []struct {
		name     string
		subject  string
		body     string
		matched  bool
		dest     string
	}{
		{"subject-only trigger in subject", "Quarterly report", "", true, "A"},
		{"subject-only trigger in body only", "hello", "the quarterly numbers", false, ""},
		{"body trigger in body", "hello", "click to UNSUBSCRIBE now", true, "B"},
		{"body trigger in subject", "Unsubscribe me", "", true, "B"},
		{"no trigger anywhere", "hello", "world", false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newClassifier(t, rows, &recordingAudit{})
			item := mailstore.NewMailItem("x@y.com", tc.subject, tc.body)
			dec := c.Classify(context.Background(), item)
			assert.Equal(t, tc.matched, dec.Matched)
			if tc.matched {
				assert.Equal(t, tc.dest, dec.Destination)
			}
		})
	}
}

func TestClassifySenderOnlyRuleFiresWithResolvedSender(t *testing.T) {
	c := newClassifier(t, []core.RuleRow{
		{Name: "research", Kind: core.RuleKindAddress, Destination: "Research",
			Values: []string{"lab@corp.com"}, SenderOnly: true},
	}, &recordingAudit{})

	item := mailstore.NewMailItem("lab@corp.com", "results", "")
	dec := c.Classify(context.Background(), item)

	require.True(t, dec.Matched)
	assert.Equal(t, "Research", dec.Destination)
}

func TestClassifyUnresolvedSenderMatchesNothing(t *testing.T) {
	c := newClassifier(t, []core.RuleRow{
		{Name: "addr", Kind: core.RuleKindAddress, Destination: "Dest", Values: []string{"a@b.com"}},
	}, &recordingAudit{})

	item := mailstore.NewMailItem("", "subject", "")
	dec := c.Classify(context.Background(), item)
	assert.False(t, dec.Matched)
}

func TestClassifyFieldReadErrorIsNoMatch(t *testing.T) {
	audit := &recordingAudit{}
	c := newClassifier(t, []core.RuleRow{
		{Name: "kw", Kind: core.RuleKindKeyword, Destination: "Dest", Values: []string{"x"}},
	}, audit)

	item := mailstore.NewMailItem("a@b.com", "x marks the spot", "")
	item.FieldErr = errors.New("item vanished")
	dec := c.Classify(context.Background(), item)

	assert.False(t, dec.Matched)
	require.Len(t, audit.invalid, 1)
	assert.Contains(t, audit.invalid[0], "ItemProcessError|")
}
