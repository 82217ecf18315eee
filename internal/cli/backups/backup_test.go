package backups

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli/clitest"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

func TestBackupsRequireSQLite(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	assert.ErrorIs(t, (&BackupCreateCmd{}).Run(ctx), errNotSQLite)
	assert.ErrorIs(t, (&BackupListCmd{}).Run(ctx), errNotSQLite)
	assert.ErrorIs(t, (&BackupRestoreCmd{BackupFile: "x", Yes: true}).Run(ctx), errNotSQLite)
}

func TestBackupCreateAndList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "habitual.db")
	ctx, out := clitest.NewContextWith(t, sqlite.NewStore(dbPath))

	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No backups found.")

	clitest.SignUp(t, ctx)
	clitest.AddHabit(t, ctx, "Water")

	out.Reset()
	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Backup created: habitual-")

	out.Reset()
	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Available backups (1 total")
	assert.Contains(t, out.String(), filepath.Join(filepath.Dir(dbPath), backup.DirName))
}

func TestBackupRestore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "habitual.db")
	ctx, out := clitest.NewContextWith(t, sqlite.NewStore(dbPath))
	clitest.SignUp(t, ctx)
	clitest.AddHabit(t, ctx, "Water")

	mgr := backup.NewManager(dbPath)
	snapshot, err := mgr.CreateBackup()
	require.NoError(t, err)

	clitest.AddHabit(t, ctx, "Stretch")
	uid := ctx.Habits.Snapshot().User.ID

	out.Reset()
	require.NoError(t, (&BackupRestoreCmd{BackupFile: filepath.Base(snapshot), Yes: true}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Database restored successfully!")
	assert.Contains(t, out.String(), "Previous database saved as: habitual-")

	restored := sqlite.NewStore(dbPath)
	require.NoError(t, restored.Init(context.Background()))
	defer restored.Close()
	docs, err := restored.Query(context.Background(), storage.HabitsPath(uid))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Water", docs[0].Fields["name"])
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _ := clitest.NewContextWith(t, sqlite.NewStore(filepath.Join(t.TempDir(), "habitual.db")))
	err := (&BackupRestoreCmd{BackupFile: "habitual-19990101-000000.db", Yes: true}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup file not found")
}
