package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/core"
)

func TestCompileRulesLastWriteWins(t *testing.T) {
	rows := []core.RuleRow{
		{Name: "first", Kind: core.RuleKindKeyword, Destination: "Old", Values: []string{"invoice"}},
		{Name: "second", Kind: core.RuleKindKeyword, Destination: "New", Values: []string{"Invoice"}},
	}
	audit := &recordingAudit{}
	rules := core.CompileRules(rows, audit, zap.NewNop())

	keywords := rules.KeywordRules()
	require.Len(t, keywords, 1)
	assert.Equal(t, "invoice", keywords[0].Trigger)
	assert.Equal(t, "New", keywords[0].Destination)
	assert.Empty(t, audit.invalid)
}

func TestCompileRulesSenderLastWriteWins(t *testing.T) {
	rows := []core.RuleRow{
		{Name: "first", Kind: core.RuleKindAddress, Destination: "A", Values: []string{"alerts@x.com"}},
		{Name: "second", Kind: core.RuleKindAddress, Destination: "B", Values: []string{"ALERTS@X.COM"}},
	}
	rules := core.CompileRules(rows, &recordingAudit{}, zap.NewNop())

	rule, ok := rules.SenderRule("alerts@x.com")
	require.True(t, ok)
	assert.Equal(t, "B", rule.Destination)
	assert.Equal(t, 1, rules.SenderRuleCount())
}

func TestCompileRulesLowercasesAndSkipsEmptyValues(t *testing.T) {
	rows := []core.RuleRow{
		{
			Name:        "senders",
			Kind:        core.RuleKindAddress,
			Destination: "Dest",
			Values:      []string{"  Alerts@X.com ", "", "   "},
		},
	}
	rules := core.CompileRules(rows, &recordingAudit{}, zap.NewNop())

	assert.Equal(t, 1, rules.SenderRuleCount())
	_, ok := rules.SenderRule("alerts@x.com")
	assert.True(t, ok)
}

func TestCompileRulesSkipsMalformedRows(t *testing.T) {
	rows := []core.RuleRow{
		{Name: "no-destination", Kind: core.RuleKindKeyword, Values: []string{"x"}},
		{Name: "no-values", Kind: core.RuleKindKeyword, Destination: "Dest"},
		{Name: "bad-kind", Kind: "banana", Destination: "Dest", Values: []string{"x"}},
		{Name: "bad-scope", Kind: core.RuleKindKeyword, Destination: "Dest", Values: []string{"x"}, Scope: "sideways"},
		{Name: "good", Kind: core.RuleKindKeyword, Destination: "Dest", Values: []string{"newsletter"}},
	}
	audit := &recordingAudit{}
	rules := core.CompileRules(rows, audit, zap.NewNop())

	assert.Equal(t, 1, rules.KeywordRuleCount())
	assert.Len(t, audit.invalid, 4)
	for _, line := range audit.invalid {
		assert.Contains(t, line, "DataLoaderError|")
	}
}

func TestCompileRulesKeywordScopeDefaultsToSubjectOnly(t *testing.T) {
	rows := []core.RuleRow{
		{Name: "kw", Kind: core.RuleKindKeyword, Destination: "Dest", Values: []string{"report"}},
	}
	rules := core.CompileRules(rows, &recordingAudit{}, zap.NewNop())

	keywords := rules.KeywordRules()
	require.Len(t, keywords, 1)
	assert.Equal(t, core.ScopeSubjectOnly, keywords[0].Scope)
}

func TestKeywordRulesPreserveCompilationOrder(t *testing.T) {
	rows := []core.RuleRow{
		{Name: "a", Kind: core.RuleKindKeyword, Destination: "A", Values: []string{"zebra", "apple"}},
		{Name: "b", Kind: core.RuleKindKeyword, Destination: "B", Values: []string{"mango", "zebra"}},
	}
	rules := core.CompileRules(rows, &recordingAudit{}, zap.NewNop())

	keywords := rules.KeywordRules()
	require.Len(t, keywords, 3)
	// Overwritten trigger keeps its original position but takes the
	// later row's destination.
	assert.Equal(t, "zebra", keywords[0].Trigger)
	assert.Equal(t, "B", keywords[0].Destination)
	assert.Equal(t, "apple", keywords[1].Trigger)
	assert.Equal(t, "mango", keywords[2].Trigger)
}
