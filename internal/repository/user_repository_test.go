package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/task-manager-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestGormUserRepository_FindByEmailLowercasesLookup(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "is_active", "is_admin"}).
		AddRow(1, "alice@example.com", "digest", true, false)

	// The mixed-case input must be lowered before it reaches the query.
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = (.+)`).
		WithArgs("alice@example.com", 1).
		WillReturnRows(rows)

	user, err := repo.FindByEmail("Alice@Example.COM")
	require.NoError(t, err)
	require.Equal(t, uint64(1), user.ID)
	require.Equal(t, "alice@example.com", user.Email)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUserRepository_CreateLowercasesEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	user := &models.User{
		Email:        "Bob@Example.COM",
		PasswordHash: "digest",
		IsActive:     true,
	}
	require.NoError(t, repo.Create(user))
	require.Equal(t, "bob@example.com", user.Email)
	require.Equal(t, uint64(7), user.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}
