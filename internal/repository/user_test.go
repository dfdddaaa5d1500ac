package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/altairhq/usermanagement/internal/model"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	return db, mock
}

func userColumns() []string {
	return []string{"id", "first_name", "last_name", "username", "email", "phone", "password_hash", "role", "is_active", "refresh_token", "created_at", "updated_at"}
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(email\) = \$1`).
		WithArgs("missing@example.com", 1).
		WillReturnRows(sqlmock.NewRows(userColumns()))

	user, err := repo.GetByEmail(context.Background(), "Missing@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user for missing email, got %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmail_NormalizesCase(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(userColumns()).
		AddRow(id, "Ada", "Lovelace", "ada@example.com", "ada@example.com", "+12025550101", "hash", "User", true, "", now, now)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(email\) = \$1`).
		WithArgs("ada@example.com", 1).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "user_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}))

	user, err := repo.GetByEmail(context.Background(), "  ADA@Example.COM ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != id {
		t.Errorf("expected id %s, got %s", id, user.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Search(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE first_name ILIKE \$1 OR last_name ILIKE \$2 OR email ILIKE \$3`).
		WithArgs("%ada%", "%ada%", "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	rows := sqlmock.NewRows(userColumns()).
		AddRow(uuid.New(), "Ada", "Lovelace", "ada@example.com", "ada@example.com", "", "hash", "User", true, "", now, now).
		AddRow(uuid.New(), "Adam", "Smith", "adam@example.com", "adam@example.com", "", "hash", "User", true, "", now, now)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE first_name ILIKE \$1 OR last_name ILIKE \$2 OR email ILIKE \$3 ORDER BY first_name`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "user_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}))

	users, total, err := repo.Search(context.Background(), "ada", 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 12 {
		t.Errorf("expected total 12, got %d", total)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Search_EscapesWildcards(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	// LIKE metacharacters in the keyword match literally, not as wildcards.
	escaped := `%50\%\_off%`
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE first_name ILIKE \$1 OR last_name ILIKE \$2 OR email ILIKE \$3`).
		WithArgs(escaped, escaped, escaped).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE first_name ILIKE \$1 OR last_name ILIKE \$2 OR email ILIKE \$3 ORDER BY first_name`).
		WillReturnRows(sqlmock.NewRows(userColumns()))

	users, total, err := repo.Search(context.Background(), "50%_off", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(users) != 0 {
		t.Errorf("expected no matches, got %d users, total %d", len(users), total)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Search_CancelledContext(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewUserRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := repo.Search(ctx, "ada", 1, 10)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestGormRepository_SaveChanges_CommitsQueuedOps(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormRepository[model.User](db)

	user := &model.User{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}
	repo.Update(user)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.SaveChanges(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Change-set is cleared; a second commit is a no-op.
	if err := repo.SaveChanges(context.Background()); err != nil {
		t.Fatalf("unexpected error on empty change-set: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGormRepository_SaveChanges_CancelledContext(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewGormRepository[model.User](db)

	repo.Update(&model.User{ID: uuid.New()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.SaveChanges(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestGormRepository_Session_IsolatesChangeSets(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewGormRepository[model.User](db)

	repo.Update(&model.User{ID: uuid.New()})

	session := repo.Session().(*GormRepository[model.User])
	if len(session.pending) != 0 {
		t.Fatalf("expected empty change-set in new session, got %d pending ops", len(session.pending))
	}
	if len(repo.pending) != 1 {
		t.Fatalf("expected original change-set untouched, got %d pending ops", len(repo.pending))
	}
}
