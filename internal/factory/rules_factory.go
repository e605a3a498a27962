package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/adapters/directory"
	"github.com/mhoran/mailsweep/internal/adapters/rulesource"
	"github.com/mhoran/mailsweep/internal/config"
	"github.com/mhoran/mailsweep/internal/core"
)

// RulesFactory creates the rule source and directory service from
// configuration
type RulesFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRulesFactory creates a new rules factory
func NewRulesFactory(cfg *config.Config, logger *zap.Logger) *RulesFactory {
	return &RulesFactory{cfg: cfg, logger: logger}
}

// CreateRuleSource creates the configured rule-table loader
func (f *RulesFactory) CreateRuleSource(audit core.AuditLog) (core.RuleSource, error) {
	var tables []rulesource.TableConfig
	if err := f.cfg.UnmarshalKey("rules.tables", &tables); err != nil {
		return nil, fmt.Errorf("invalid rules.tables configuration: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no rule tables configured")
	}
	return rulesource.NewCSVLoader(tables, audit, f.logger), nil
}

// CreateDirectoryService creates the directory resolver
func (f *RulesFactory) CreateDirectoryService() core.DirectoryService {
	return directory.NewStaticService(f.cfg.GetStringMapString("directory.static"), f.logger)
}
