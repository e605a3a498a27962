package rulesource_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mhoran/mailsweep/internal/adapters/rulesource"
	"github.com/mhoran/mailsweep/internal/core"
)

type nullAudit struct {
	loaderErrs int
}

func (a *nullAudit) Starting(string)                              {}
func (a *nullAudit) Deleted(string, core.MatchType, string)       {}
func (a *nullAudit) Moved(string, string, core.MatchType, string) {}
func (a *nullAudit) ActionError(string, error)                    {}
func (a *nullAudit) ItemProcessError(error)                       {}
func (a *nullAudit) FolderProcessingError(string, error)          {}
func (a *nullAudit) GlobalRunError(error)                         {}
func (a *nullAudit) DataLoaderError(error)                        { a.loaderErrs++ }

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderReadsTablesInOrder(t *testing.T) {
	dir := t.TempDir()
	senders := writeCSV(t, dir, "senders.csv",
		"Address,Comment\nalerts@x.com,noisy\n\nnews@y.com,\n")
	keywords := writeCSV(t, dir, "keywords.csv",
		"Subject Keywords,Body Keywords\nnewsletter,unsubscribe\ninvoice,\n")

	loader := rulesource.NewCSVLoader([]rulesource.TableConfig{
		{
			Name: "DeleteSenders", File: senders, Destination: "ToDelete",
			Kind: "address", Columns: []string{"Address"},
		},
		{
			Name: "PromoKeywords", File: keywords, Destination: `Promo\Weekly`,
			Kind: "keyword", Columns: []string{"Subject Keywords", "Body Keywords"},
			MatchField: "subject_and_body",
		},
	}, &nullAudit{}, zap.NewNop())

	rows, err := loader.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "DeleteSenders", rows[0].Name)
	assert.Equal(t, core.RuleKindAddress, rows[0].Kind)
	assert.Equal(t, []string{"alerts@x.com", "news@y.com"}, rows[0].Values)

	assert.Equal(t, core.RuleKindKeyword, rows[1].Kind)
	assert.Equal(t, core.ScopeSubjectAndBody, rows[1].Scope)
	assert.ElementsMatch(t, []string{"newsletter", "unsubscribe", "invoice"}, rows[1].Values)
}

func TestLoaderHeaderMatchIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "t.csv", " ADDRESS \na@b.com\n")

	loader := rulesource.NewCSVLoader([]rulesource.TableConfig{
		{Name: "T", File: path, Destination: "D", Kind: "address", Columns: []string{"Address"}},
	}, &nullAudit{}, zap.NewNop())

	rows, err := loader.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a@b.com"}, rows[0].Values)
}

func TestLoaderSkipsTableWithMissingColumn(t *testing.T) {
	dir := t.TempDir()
	bad := writeCSV(t, dir, "bad.csv", "WrongColumn\nx\n")
	good := writeCSV(t, dir, "good.csv", "Address\na@b.com\n")

	audit := &nullAudit{}
	loader := rulesource.NewCSVLoader([]rulesource.TableConfig{
		{Name: "Bad", File: bad, Destination: "D", Kind: "address", Columns: []string{"Address"}},
		{Name: "Good", File: good, Destination: "D", Kind: "address", Columns: []string{"Address"}},
	}, audit, zap.NewNop())

	rows, err := loader.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Good", rows[0].Name)
	assert.Equal(t, 1, audit.loaderErrs)
}

func TestLoaderSkipsMissingFile(t *testing.T) {
	audit := &nullAudit{}
	loader := rulesource.NewCSVLoader([]rulesource.TableConfig{
		{Name: "Gone", File: "/does/not/exist.csv", Destination: "D", Kind: "address", Columns: []string{"Address"}},
	}, audit, zap.NewNop())

	rows, err := loader.Rows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, audit.loaderErrs)
}
