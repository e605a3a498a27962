package core

// MatchScope controls which message fields a keyword rule is checked against.
type MatchScope string

const (
	ScopeSubjectOnly    MatchScope = "subject_only"
	ScopeSubjectAndBody MatchScope = "subject_and_body"
)

// RuleKind tags a rule row as carrying sender addresses or keyword triggers.
type RuleKind string

const (
	RuleKindAddress RuleKind = "address"
	RuleKindKeyword RuleKind = "keyword"
)

// RuleRow is one validated row of rule configuration, already extracted from
// its tabular source. Values hold the raw (not yet lowercased) cell values
// gathered from the row's source columns.
type RuleRow struct {
	Name        string
	Kind        RuleKind
	Destination string
	Values      []string
	SenderOnly  bool
	Scope       MatchScope
}

// SenderRule matches a message by its resolved sender address.
type SenderRule struct {
	Address     string
	Destination string
	// SenderOnly rules only fire when the sender actually resolved.
	SenderOnly bool
}

// KeywordRule matches a message by a case-insensitive substring of its
// subject, or of its subject and body depending on Scope.
type KeywordRule struct {
	Trigger     string
	Destination string
	Scope       MatchScope
}

// MatchType records which family of rules produced a decision.
type MatchType string

const (
	EmailMatch   MatchType = "EmailMatch"
	KeywordMatch MatchType = "KeywordMatch"
)

// Decision is the outcome of classifying a single message.
type Decision struct {
	Matched     bool
	Destination string
	Trigger     string
	Type        MatchType
}

// SenderHandle is the provider-specific sender identity of a message.
// Directory marks handles that belong to an internal directory and need
// resolution to a plain address before they can be matched.
type SenderHandle struct {
	Handle    string
	Directory bool
}

// RunStats is reported to the caller when a batch run finishes.
type RunStats struct {
	Processed int
}
