package database

import (
	"testing"

	"github.com/ProsperCoded/Mini-Jira-Clone/config"
	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestClose(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	database := &Database{DB: db}

	assert.NotPanics(t, func() {
		database.Close()
	})
	assert.NotPanics(t, func() {
		(&Database{}).Close()
	})
}

func TestDialector(t *testing.T) {
	d, err := Dialector(config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(config.Config{DBDriver: "postgres", DBHost: "localhost"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestSetupSQLite(t *testing.T) {
	db, err := Setup(config.Config{DBDriver: "sqlite", DBPath: "file:setup_test?mode=memory", DBLogLevel: "silent"})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
	assert.True(t, db.DB.Migrator().HasTable(&models.Task{}))
	assert.True(t, db.DB.Migrator().HasTable(&models.TeamMember{}))
	assert.True(t, db.DB.Migrator().HasTable(&models.Event{}))
}

func TestLockTeam(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	owner := models.User{Email: "o@example.com", Username: "owner", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)
	team := models.Team{Name: "Core", Type: models.PublicTeam, OwnerID: owner.ID}
	require.NoError(t, db.Create(&team).Error)

	err = db.Transaction(func(tx *gorm.DB) error {
		locked, err := LockTeam(tx, team.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "Core", locked.Name)
		return nil
	})
	assert.NoError(t, err)

	_, err = LockTeam(db, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
