package core

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// RuleStore is the compiled, queryable form of the sender and keyword rules.
// It is built once per run and read-only afterwards.
type RuleStore struct {
	senders  map[string]SenderRule
	keywords map[string]KeywordRule

	// keywordOrder preserves compilation order so keyword evaluation is
	// deterministic. Overwriting an existing trigger keeps its original
	// position.
	keywordOrder []string
}

// CompileRules builds a RuleStore from rule rows in the given order. Rule
// values are lowercased and de-duplicated; later rows overwrite earlier
// entries sharing a key. A malformed row is logged through the audit sink
// and skipped, so one bad rule table never aborts the whole load.
func CompileRules(rows []RuleRow, audit AuditLog, logger *zap.Logger) *RuleStore {
	rs := &RuleStore{
		senders:  make(map[string]SenderRule),
		keywords: make(map[string]KeywordRule),
	}

	for _, row := range rows {
		if err := validateRow(row); err != nil {
			audit.DataLoaderError(fmt.Errorf("rule row %q: %w", row.Name, err))
			logger.Warn("skipping malformed rule row",
				zap.String("row", row.Name),
				zap.Error(err))
			continue
		}

		switch row.Kind {
		case RuleKindAddress:
			rs.addSenderRow(row)
		case RuleKindKeyword:
			rs.addKeywordRow(row)
		}

		logger.Debug("compiled rule row",
			zap.String("row", row.Name),
			zap.String("kind", string(row.Kind)),
			zap.String("destination", row.Destination),
			zap.Int("values", len(row.Values)))
	}

	return rs
}

func validateRow(row RuleRow) error {
	if row.Destination == "" {
		return fmt.Errorf("missing destination")
	}
	if len(row.Values) == 0 {
		return fmt.Errorf("no values")
	}
	switch row.Kind {
	case RuleKindAddress:
	case RuleKindKeyword:
		switch row.Scope {
		case ScopeSubjectOnly, ScopeSubjectAndBody, "":
		default:
			return fmt.Errorf("unknown match scope %q", row.Scope)
		}
	default:
		return fmt.Errorf("unknown rule kind %q", row.Kind)
	}
	return nil
}

func (rs *RuleStore) addSenderRow(row RuleRow) {
	for _, v := range row.Values {
		addr := strings.ToLower(strings.TrimSpace(v))
		if addr == "" {
			continue
		}
		rs.senders[addr] = SenderRule{
			Address:     addr,
			Destination: row.Destination,
			SenderOnly:  row.SenderOnly,
		}
	}
}

func (rs *RuleStore) addKeywordRow(row RuleRow) {
	scope := row.Scope
	if scope == "" {
		scope = ScopeSubjectOnly
	}
	for _, v := range row.Values {
		trigger := strings.ToLower(strings.TrimSpace(v))
		if trigger == "" {
			continue
		}
		if _, exists := rs.keywords[trigger]; !exists {
			rs.keywordOrder = append(rs.keywordOrder, trigger)
		}
		rs.keywords[trigger] = KeywordRule{
			Trigger:     trigger,
			Destination: row.Destination,
			Scope:       scope,
		}
	}
}

// SenderRule looks up a sender rule by lowercased address.
func (rs *RuleStore) SenderRule(address string) (SenderRule, bool) {
	r, ok := rs.senders[address]
	return r, ok
}

// KeywordRules returns the keyword rules in compilation order.
func (rs *RuleStore) KeywordRules() []KeywordRule {
	out := make([]KeywordRule, 0, len(rs.keywordOrder))
	for _, trigger := range rs.keywordOrder {
		out = append(out, rs.keywords[trigger])
	}
	return out
}

// SenderRuleCount reports the number of compiled sender rules.
func (rs *RuleStore) SenderRuleCount() int { return len(rs.senders) }

// KeywordRuleCount reports the number of compiled keyword rules.
func (rs *RuleStore) KeywordRuleCount() int { return len(rs.keywords) }
