package database

import (
	"context"
	"testing"
	"testing/fstest"

	"forum/internal/config"
	"forum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: NewGormLogger(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_Defaults(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"hybrid dev", config.Config{Env: "development"}, true, true, false},
		{"hybrid prod", config.Config{Env: "production"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBSchemaMode: "SQL"}, true, false, false},
		{"auto dev", config.Config{Env: "development", DBSchemaMode: "auto"}, false, true, false},
		{"auto prod refused", config.Config{Env: "prod", DBSchemaMode: "auto"}, false, false, true},
		{"auto prod allowed", config.Config{Env: "prod", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"unknown mode", config.Config{DBSchemaMode: "magic"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER)")},
		"m/000002_second.down.sql": {Data: []byte("DROP TABLE b")},
		"m/000001_first.up.sql":    {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"m/000001_first.down.sql":  {Data: []byte("DROP TABLE a")},
		"m/README.md":              {Data: []byte("ignored")},
		"m/bad.up.sql":             {Data: []byte("ignored")},
	}

	loaded, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 1, loaded[0].Version)
	assert.Equal(t, "first", loaded[0].Name)
	assert.Equal(t, "000002_second", loaded[1].String())
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000001_first.up.sql": {Data: []byte("CREATE TABLE a (id INTEGER)")},
	}
	_, err := LoadMigrations(fsys, "m")
	assert.Error(t, err)
}

func TestEmbeddedMigrations_CoverForumTables(t *testing.T) {
	m := GetMigrationByVersion(1)
	require.NotNil(t, m)
	for _, table := range []string{"users", "profiles", "posts", "comments", "post_reports", "comment_reports"} {
		assert.Contains(t, m.UpScript, "CREATE TABLE IF NOT EXISTS "+table+" ")
		assert.Contains(t, m.DownScript, "DROP TABLE IF EXISTS "+table+";")
	}
}

func TestRunMigrations_AppliesOnce(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	registered := []Migration{
		{Version: 1, Name: "first", UpScript: "CREATE TABLE a (id INTEGER)", DownScript: "DROP TABLE a"},
		{Version: 2, Name: "second", UpScript: "CREATE TABLE b (id INTEGER)", DownScript: "DROP TABLE b"},
	}

	require.NoError(t, runMigrations(ctx, db, registered))
	require.NoError(t, runMigrations(ctx, db, registered), "second run must be a no-op")

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)
	assert.True(t, db.Migrator().HasTable("b"))

	err = runMigrations(ctx, db, registered[:1])
	assert.ErrorContains(t, err, "000002")
}

func TestAutoMigrate_SQLite(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))
	for _, table := range []string{"users", "profiles", "posts", "comments", "post_reports", "comment_reports"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestAutoMigrate_SQLiteEnforcesForeignKeys(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	orphan := &models.Post{Title: "orphan", Text: "x", AuthorID: 999, Active: true}
	assert.Error(t, db.Omit("Author", "Comments", "Reports").Create(orphan).Error)

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, db.Omit("Profile").Create(user).Error)
	post := &models.Post{Title: "kept", Text: "x", AuthorID: user.ID, Active: true}
	require.NoError(t, db.Omit("Author", "Comments", "Reports").Create(post).Error)

	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)
	var n int64
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&n).Error)
	assert.Zero(t, n)
}
