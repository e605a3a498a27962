// Package rulesource loads rule rows from tabular configuration files.
package rulesource

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/core"
)

// TableConfig describes one rule table: a CSV file plus the columns and
// rule metadata that turn its values into rules.
type TableConfig struct {
	Name        string   `mapstructure:"name"`
	File        string   `mapstructure:"file"`
	Destination string   `mapstructure:"destination"`
	Kind        string   `mapstructure:"kind"`
	Columns     []string `mapstructure:"columns"`
	SenderOnly  bool     `mapstructure:"sender_only"`
	MatchField  string   `mapstructure:"match_field"`
}

// CSVLoader reads the configured tables in order and emits one core.RuleRow
// per table. A table whose declared column is missing is logged through the
// audit sink and skipped; a single bad table never aborts the load.
type CSVLoader struct {
	tables []TableConfig
	audit  core.AuditLog
	logger *zap.Logger
}

// NewCSVLoader creates a loader over the configured tables.
func NewCSVLoader(tables []TableConfig, audit core.AuditLog, logger *zap.Logger) *CSVLoader {
	return &CSVLoader{tables: tables, audit: audit, logger: logger}
}

func (l *CSVLoader) Rows(ctx context.Context) ([]core.RuleRow, error) {
	rows := make([]core.RuleRow, 0, len(l.tables))
	for _, table := range l.tables {
		row, err := l.loadTable(table)
		if err != nil {
			l.audit.DataLoaderError(fmt.Errorf("table %q: %w", table.Name, err))
			l.logger.Warn("skipping rule table",
				zap.String("table", table.Name),
				zap.String("file", table.File),
				zap.Error(err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *CSVLoader) loadTable(table TableConfig) (core.RuleRow, error) {
	f, err := os.Open(table.File)
	if err != nil {
		return core.RuleRow{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return core.RuleRow{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return core.RuleRow{}, fmt.Errorf("empty table")
	}

	header := records[0]
	indexes := make([]int, 0, len(table.Columns))
	for _, col := range table.Columns {
		idx := -1
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), col) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return core.RuleRow{}, fmt.Errorf("missing column %q", col)
		}
		indexes = append(indexes, idx)
	}

	var values []string
	for _, record := range records[1:] {
		for _, idx := range indexes {
			if idx >= len(record) {
				continue
			}
			v := strings.TrimSpace(record[idx])
			if v != "" {
				values = append(values, v)
			}
		}
	}

	row := core.RuleRow{
		Name:        table.Name,
		Kind:        core.RuleKind(table.Kind),
		Destination: table.Destination,
		Values:      values,
		SenderOnly:  table.SenderOnly,
		Scope:       core.MatchScope(table.MatchField),
	}

	l.logger.Debug("loaded rule table",
		zap.String("table", table.Name),
		zap.Int("values", len(values)))
	return row, nil
}
