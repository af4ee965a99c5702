package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blogapi/app/config"
	"blogapi/app/database"
	"blogapi/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	*CLI
	out        *bytes.Buffer
	configPath string
	dbPath     string
}

func setupTestCLI(t *testing.T, stdin string) *testCLI {
	t.Helper()
	for _, key := range []string{"STORAGE_DRIVER", "BADGER_PATH", "PORT", "CONFIG_PATH"} {
		t.Setenv(key, "")
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "badger")
	configPath := filepath.Join(tmpDir, "config.yaml")
	yaml := fmt.Sprintf("storage:\n  driver: badger\n  badger_path: %s\n", dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))

	out := &bytes.Buffer{}
	return &testCLI{
		CLI:        &CLI{Stdin: strings.NewReader(stdin), Stdout: out, Stderr: out},
		out:        out,
		configPath: configPath,
		dbPath:     dbPath,
	}
}

func (c *testCLI) run(args ...string) (int, string) {
	c.out.Reset()
	if len(args) > 0 && args[0] != "help" && args[0] != "version" {
		args = append([]string{args[0], "-config", c.configPath}, args[1:]...)
	}
	code := c.HandleCommand(args)
	return code, c.out.String()
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedOutput: "Usage: blogapi <command> [options]",
			expectedExit:   1,
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "Usage: blogapi <command> [options]",
			expectedExit:   0,
		},
		{
			name:           "version command",
			args:           []string{"version"},
			expectedOutput: "blogapi version " + Version,
			expectedExit:   0,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedOutput: "Unknown command: unknown",
			expectedExit:   1,
		},
		{
			name:           "restore without file",
			args:           []string{"restore"},
			expectedOutput: "Error: backup file path required for restore",
			expectedExit:   1,
		},
		{
			name:           "restore missing file",
			args:           []string{"restore", "/nonexistent/backup.db"},
			expectedOutput: "Backup file does not exist",
			expectedExit:   1,
		},
		{
			name:           "backup without database",
			args:           []string{"backup"},
			expectedOutput: "no database exists to backup",
			expectedExit:   1,
		},
		{
			name:           "clean without database",
			args:           []string{"clean"},
			expectedOutput: "Database is already clean",
			expectedExit:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := setupTestCLI(t, "")
			code, output := cli.run(tt.args...)
			assert.Equal(t, tt.expectedExit, code)
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}

func TestInitAndClean(t *testing.T) {
	cli := setupTestCLI(t, "n\n")

	code, output := cli.run("init")
	require.Equal(t, 0, code, output)
	assert.Contains(t, output, "Database initialized successfully")
	assert.DirExists(t, cli.dbPath)

	code, output = cli.run("init")
	assert.Equal(t, 0, code)
	assert.Contains(t, output, "Database already exists")

	code, output = cli.run("clean")
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "Operation cancelled")
	assert.DirExists(t, cli.dbPath)

	code, output = cli.run("clean", "-y")
	assert.Equal(t, 0, code)
	assert.Contains(t, output, "Database cleaned successfully")
	assert.NoDirExists(t, cli.dbPath)
}

func TestBackupAndRestore(t *testing.T) {
	ctx := context.Background()
	cli := setupTestCLI(t, "")
	storage := config.StorageConfig{Driver: config.DriverBadger, BadgerPath: cli.dbPath}

	handle, err := database.Open(storage, nil)
	require.NoError(t, err)
	post := &models.Post{ID: "cbackup000000000000000000", Title: "Kept", Author: "A", Body: "B"}
	require.NoError(t, handle.Store.Posts.Create(ctx, post))
	require.NoError(t, handle.Close())

	backupDir := filepath.Join(t.TempDir(), "backups")
	backupFile, err := cli.backup(cli.dbPath, backupDir)
	require.NoError(t, err)
	assert.FileExists(t, backupFile)
	assert.Contains(t, cli.out.String(), "Database backed up successfully")

	code, output := cli.run("clean", "-y")
	require.Equal(t, 0, code, output)

	code, output = cli.run("restore", backupFile)
	require.Equal(t, 0, code, output)
	assert.Contains(t, output, "Database restored successfully")

	handle, err = database.Open(storage, nil)
	require.NoError(t, err)
	defer handle.Close()

	got, err := handle.Store.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept", got.Title)

	// New posts continue after the restored ones.
	next := &models.Post{ID: "cbackup000000000000000001", Title: "New", Author: "A", Body: "B"}
	require.NoError(t, handle.Store.Posts.Create(ctx, next))
	posts, err := handle.Store.Posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, post.ID, posts[0].ID)
	assert.Equal(t, next.ID, posts[1].ID)
}

func TestRestoreEmptyFile(t *testing.T) {
	cli := setupTestCLI(t, "")
	empty := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	code, output := cli.run("restore", empty)
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "Backup file is empty")
}

func TestRestoreDeclined(t *testing.T) {
	cli := setupTestCLI(t, "n\n")
	code, _ := cli.run("init")
	require.Equal(t, 0, code)

	backup := filepath.Join(t.TempDir(), "some.db")
	require.NoError(t, os.WriteFile(backup, []byte("data"), 0644))

	code, output := cli.run("restore", backup)
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "Operation cancelled")
	assert.DirExists(t, cli.dbPath)
}

func TestMaintenanceRequiresBadger(t *testing.T) {
	cli := setupTestCLI(t, "")
	t.Setenv("STORAGE_DRIVER", config.DriverSQLite)

	code, output := cli.run("backup")
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "only supports the badger driver")
}

func TestRestoreCorruptBackupKeepsDatabase(t *testing.T) {
	ctx := context.Background()
	cli := setupTestCLI(t, "")
	storage := config.StorageConfig{Driver: config.DriverBadger, BadgerPath: cli.dbPath}

	handle, err := database.Open(storage, nil)
	require.NoError(t, err)
	post := &models.Post{ID: "ckeep0000000000000000000", Title: "Still here", Author: "A", Body: "B"}
	require.NoError(t, handle.Store.Posts.Create(ctx, post))
	require.NoError(t, handle.Close())

	corrupt := filepath.Join(t.TempDir(), "corrupt.db")
	require.NoError(t, os.WriteFile(corrupt, []byte("data"), 0644))

	code, output := cli.run("restore", "-y", corrupt)
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "Failed to restore database")

	entries, err := os.ReadDir(filepath.Dir(cli.dbPath))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".restore-", "staging directory left behind")
	}

	handle, err = database.Open(storage, nil)
	require.NoError(t, err)
	defer handle.Close()
	got, err := handle.Store.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Still here", got.Title)
}
