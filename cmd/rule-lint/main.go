// rule-lint loads the configured rule tables, compiles them, and reports
// what the batch run would match against. Use it to validate tables before
// pointing a run at a live archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/config"
	"github.com/mhoran/mailsweep/internal/core"
	"github.com/mhoran/mailsweep/internal/factory"
	"github.com/mhoran/mailsweep/internal/logging"
)

var (
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	audit := &collectingAudit{}
	rulesFactory := factory.NewRulesFactory(cfg, logger)
	source, err := rulesFactory.CreateRuleSource(audit)
	if err != nil {
		logger.Fatal("Failed to create rule source", zap.Error(err))
	}

	rows, err := source.Rows(context.Background())
	if err != nil {
		logger.Fatal("Failed to load rule tables", zap.Error(err))
	}

	overwrites := findOverwrites(rows)
	rules := core.CompileRules(rows, audit, logger)

	fmt.Printf("\n=== Rule Tables ===\n")
	for _, row := range rows {
		scope := ""
		if row.Kind == core.RuleKindKeyword {
			scope = fmt.Sprintf(" scope=%s", scopeOrDefault(row.Scope))
		}
		fmt.Printf("%-24s kind=%-8s dest=%-20s values=%d%s\n",
			row.Name, row.Kind, row.Destination, len(row.Values), scope)
	}

	fmt.Printf("\n=== Compiled ===\n")
	fmt.Printf("Sender rules:  %d\n", rules.SenderRuleCount())
	fmt.Printf("Keyword rules: %d\n", rules.KeywordRuleCount())

	if len(overwrites) > 0 {
		fmt.Printf("\n=== Duplicate keys (last table wins) ===\n")
		for _, o := range overwrites {
			fmt.Println(o)
		}
	}

	if len(audit.loadErrors) > 0 {
		fmt.Printf("\n=== Load errors ===\n")
		for _, e := range audit.loadErrors {
			fmt.Println(e)
		}
		os.Exit(1)
	}
}

func scopeOrDefault(scope core.MatchScope) core.MatchScope {
	if scope == "" {
		return core.ScopeSubjectOnly
	}
	return scope
}

// findOverwrites reports keys defined by more than one table.
func findOverwrites(rows []core.RuleRow) []string {
	seen := make(map[string]string)
	var out []string
	for _, row := range rows {
		for _, v := range row.Values {
			key := string(row.Kind) + ":" + strings.ToLower(strings.TrimSpace(v))
			if prev, ok := seen[key]; ok && prev != row.Name {
				out = append(out, fmt.Sprintf("%q defined by %s, overwritten by %s", v, prev, row.Name))
			}
			seen[key] = row.Name
		}
	}
	return out
}

// collectingAudit satisfies core.AuditLog without touching the run's audit
// files; only loader errors matter here.
type collectingAudit struct {
	loadErrors []string
}

func (a *collectingAudit) Starting(string)                         {}
func (a *collectingAudit) Deleted(string, core.MatchType, string)  {}
func (a *collectingAudit) Moved(string, string, core.MatchType, string) {}
func (a *collectingAudit) ActionError(string, error)               {}
func (a *collectingAudit) ItemProcessError(error)                  {}
func (a *collectingAudit) FolderProcessingError(string, error)     {}
func (a *collectingAudit) GlobalRunError(error)                    {}
func (a *collectingAudit) DataLoaderError(err error) {
	a.loadErrors = append(a.loadErrors, err.Error())
}
