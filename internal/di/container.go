package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/config"
	"github.com/mhoran/mailsweep/internal/core"
	"github.com/mhoran/mailsweep/internal/factory"
	"github.com/mhoran/mailsweep/internal/logging"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register audit sinks
	if err := container.Provide(func(cfg *config.Config) (*logging.AuditLog, error) {
		audit := cfg.GetAudit()
		return logging.NewAuditLog(audit.BulkPath, audit.InvalidPath)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(a *logging.AuditLog) core.AuditLog {
		return a
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewRulesFactory); err != nil {
		return nil, err
	}

	// Register mail store
	if err := container.Provide(func(f *factory.MailStoreFactory) (core.MailStore, error) {
		return f.CreateMailStore()
	}); err != nil {
		return nil, err
	}

	// Register cache store
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheStore, error) {
		return f.CreateCacheStore()
	}); err != nil {
		return nil, err
	}

	// Register rule source and directory service
	if err := container.Provide(func(f *factory.RulesFactory, audit core.AuditLog) (core.RuleSource, error) {
		return f.CreateRuleSource(audit)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.RulesFactory) core.DirectoryService {
		return f.CreateDirectoryService()
	}); err != nil {
		return nil, err
	}

	// Register compiled rule store
	if err := container.Provide(func(src core.RuleSource, audit core.AuditLog, logger *zap.Logger) (*core.RuleStore, error) {
		rows, err := src.Rows(context.Background())
		if err != nil {
			return nil, err
		}
		rules := core.CompileRules(rows, audit, logger)
		logger.Info("rules compiled",
			zap.Int("sender_rules", rules.SenderRuleCount()),
			zap.Int("keyword_rules", rules.KeywordRuleCount()))
		return rules, nil
	}); err != nil {
		return nil, err
	}

	// Register core services
	if err := container.Provide(core.NewAddressResolver); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewClassifier); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, audit core.AuditLog, logger *zap.Logger) *core.ActionExecutor {
		return core.NewActionExecutor(cfg.GetArchive().DeleteDestination, audit, logger)
	}); err != nil {
		return nil, err
	}

	// Register run options
	if err := container.Provide(func(cfg *config.Config) core.RunOptions {
		return core.RunOptions{
			ArchiveName:       cfg.GetArchive().StoreName,
			CacheSaveInterval: cfg.GetCache().SaveInterval,
		}
	}); err != nil {
		return nil, err
	}

	// Register batch runner
	if err := container.Provide(core.NewBatchRunner); err != nil {
		return nil, err
	}

	return container, nil
}
