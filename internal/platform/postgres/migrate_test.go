package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.True(t, strings.HasSuffix(files[0], "_create_users_table.sql"))
	assert.True(t, strings.HasSuffix(files[1], "_create_tasks_table.sql"))
	assert.True(t, strings.HasSuffix(files[2], "_create_attachments_table.sql"))
	assert.True(t, strings.HasSuffix(files[3], "_add_insertion_sequence.sql"))

	for _, name := range files {
		body, err := migrationsFS.ReadFile(migrationsDir + "/" + name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	assert.True(t, IsMigrationCommand("up"))
	assert.False(t, IsMigrationCommand("create"))

	err := Migrate(context.Background(), nil, "create", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
