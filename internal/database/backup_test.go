package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "movers.db")
	storagePath := filepath.Join(tempDir, "backups")

	logger := zerolog.Nop()
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	db.Close()

	cfg := config.BackupConfig{
		Enabled:       true,
		StoragePath:   storagePath,
		RetentionDays: 1,
	}
	s := NewBackupService(dbPath, cfg, &logger)

	t.Run("PerformBackup", func(t *testing.T) {
		require.NoError(t, s.PerformBackup())

		files, err := os.ReadDir(storagePath)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("CleanupOldBackups", func(t *testing.T) {
		oldFile := filepath.Join(storagePath, "backup_old.db")
		require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))

		oldTime := time.Now().AddDate(0, 0, -2)
		require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))

		s.CleanupOldBackups()

		files, err := os.ReadDir(storagePath)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.NotEqual(t, "backup_old.db", files[0].Name())
	})
}

func TestBackupServiceDisabled(_ *testing.T) {
	logger := zerolog.Nop()
	s := NewBackupService("any", config.BackupConfig{Enabled: false}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)
}
