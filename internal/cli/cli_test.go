package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blocknote/internal/domain"
	"blocknote/internal/secret"
	"blocknote/internal/service"
	"blocknote/internal/storage"
)

// sandbox points config lookup at an empty home and returns a data dir
// holding one page titled Groceries.
func sandbox(t *testing.T) (dataDir, pageID string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	for _, k := range []string{"DATA_DIR", "STORE_DRIVER", "STORE_DSN", "STORE_DSN_SECRET", "STORE_PATH", "LOG_LEVEL", "LOG_FILE", "EXPORT_DIR", "BACKUP_SCHEDULE", "BACKUP_FORMAT"} {
		t.Setenv("BLOCKNOTE_"+k, "")
		os.Unsetenv("BLOCKNOTE_" + k)
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(home))
	t.Cleanup(func() { os.Chdir(wd) })

	dataDir = filepath.Join(home, "data")
	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, Path: filepath.Join(dataDir, "blocknote.db")})
	require.NoError(t, err)
	defer store.Close()

	pages := service.NewPageService(store, service.NoopEmitter{}, zerolog.Nop())
	pages.Load(ctx)
	pageID = pages.CreatePage(ctx)
	pages.UpdateActivePage(ctx, "Groceries", []domain.Block{
		{ID: "b1", Type: domain.BlockTypeHeading, Content: "Produce"},
		{ID: "b2", Type: domain.BlockTypeTodo, Content: domain.TodoContent(true, "milk")},
	})
	return dataDir, pageID
}

func withSecrets(t *testing.T) *secret.MemoryStore {
	t.Helper()
	store := secret.NewMemoryStore()
	prev := newSecretStore
	newSecretStore = func() secret.Store { return store }
	t.Cleanup(func() { newSecretStore = prev })
	return store
}

func run(t *testing.T, gui GUIFunc, args ...string) (string, error) {
	t.Helper()
	return runWithInput(t, gui, "", args...)
}

func runWithInput(t *testing.T, gui GUIFunc, stdin string, args ...string) (string, error) {
	t.Helper()
	if gui == nil {
		gui = func(context.Context, *Env) error {
			t.Fatal("editor should not start")
			return nil
		}
	}
	cmd := NewRootCmd(gui)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_NoSubcommandRunsEditor(t *testing.T) {
	dataDir, _ := sandbox(t)

	var got *Env
	_, err := run(t, func(_ context.Context, env *Env) error {
		got = env
		return nil
	}, "--data-dir", dataDir, "--ephemeral")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, storage.DriverMemory, got.Config.Store.Driver)
	assert.Equal(t, dataDir, got.Config.DataDir)
}

func TestPages_ListsJSON(t *testing.T) {
	dataDir, pageID := sandbox(t)

	out, err := run(t, nil, "pages", "--data-dir", dataDir)
	require.NoError(t, err)

	var pages []domain.PageSummary
	require.NoError(t, json.Unmarshal([]byte(out), &pages))
	require.Len(t, pages, 1)
	assert.Equal(t, pageID, pages[0].ID)
	assert.Equal(t, "Groceries", pages[0].Title)
	assert.True(t, pages[0].Active)
}

func TestExport_MarkdownToStdout(t *testing.T) {
	dataDir, pageID := sandbox(t)

	out, err := run(t, nil, "export", pageID, "--data-dir", dataDir, "--format", "md", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "# Groceries")
	assert.Contains(t, out, "## Produce")
	assert.Contains(t, out, "- [x] milk")
}

func TestExport_DefaultsToExportDir(t *testing.T) {
	dataDir, _ := sandbox(t)

	out, err := run(t, nil, "export", "--data-dir", dataDir)
	require.NoError(t, err)

	path := filepath.Clean(string(bytes.TrimSpace([]byte(out))))
	assert.Equal(t, ".html", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Groceries")
}

func TestExport_Errors(t *testing.T) {
	dataDir, _ := sandbox(t)

	_, err := run(t, nil, "export", "--data-dir", dataDir, "--format", "pdf")
	assert.Error(t, err)

	_, err = run(t, nil, "export", "missing", "--data-dir", dataDir)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShow_RendersPage(t *testing.T) {
	dataDir, _ := sandbox(t)

	out, err := run(t, nil, "show", "--data-dir", dataDir, "--style", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "milk")
}

func TestBackup_WritesEveryPage(t *testing.T) {
	dataDir, _ := sandbox(t)

	out, err := run(t, nil, "backup", "--data-dir", dataDir)
	require.NoError(t, err)

	var res service.BackupResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Files, 1)
	assert.FileExists(t, res.Files[0])
	assert.Equal(t, ".md", filepath.Ext(res.Files[0]))
}

func TestSecret_SetFeedsStoreDSN(t *testing.T) {
	dataDir, _ := sandbox(t)
	secrets := withSecrets(t)

	_, err := runWithInput(t, nil, "postgres://u:p@db/notes\n", "secret", "set", "pg", "--data-dir", dataDir)
	require.NoError(t, err)
	got, err := secrets.Get("pg")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/notes", string(got))

	_, err = runWithInput(t, nil, "  \n", "secret", "set", "pg", "--data-dir", dataDir)
	assert.Error(t, err)

	var env *Env
	t.Setenv("BLOCKNOTE_STORE_DRIVER", "postgres")
	t.Setenv("BLOCKNOTE_STORE_DSN_SECRET", "pg")
	_, err = run(t, func(_ context.Context, e *Env) error {
		env = e
		return nil
	}, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/notes", env.Config.Store.DSN)

	_, err = run(t, nil, "secret", "delete", "pg", "--data-dir", dataDir)
	require.NoError(t, err)
	_, err = secrets.Get("pg")
	assert.ErrorIs(t, err, secret.ErrNotFound)
}

func TestSecret_SetWhileConfigNeedsIt(t *testing.T) {
	dataDir, _ := sandbox(t)
	secrets := withSecrets(t)
	t.Setenv("BLOCKNOTE_STORE_DRIVER", "postgres")
	t.Setenv("BLOCKNOTE_STORE_DSN_SECRET", "pg")

	// Nothing stored yet: commands that open the store fail.
	_, err := run(t, nil, "pages", "--data-dir", dataDir)
	assert.ErrorIs(t, err, secret.ErrNotFound)

	_, err = runWithInput(t, nil, "postgres://u:p@db/notes\n", "secret", "set", "pg", "--data-dir", dataDir)
	require.NoError(t, err)
	got, err := secrets.Get("pg")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/notes", string(got))
}
