package db

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/notaryapp/backend/internal/models"
)

func testUser(email string, role models.Role) *models.User {
	return &models.User{
		Name:     "Тестовый Пользователь",
		Email:    email,
		Password: "123456",
		Role:     role,
	}
}

// =====================================================
// User Repository Tests
// =====================================================

func TestCreateUserDefaults(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	u := &models.User{Name: "Без Роли", Email: "norole@test.ru", Password: "pw"}
	if err := repo.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.ID.IsZero() {
		t.Fatal("CreateUser did not assign an ID")
	}

	got, err := repo.GetUser(u.ID.String())
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Role != models.RoleUser {
		t.Errorf("role should default to user, got %s", got.Role)
	}
	if !got.NotaryID.IsZero() {
		t.Errorf("notary link should be empty, got %s", got.NotaryID)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	if err := repo.CreateUser(testUser("dup@test.ru", models.RoleUser)); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := repo.CreateUser(testUser("dup@test.ru", models.RoleUser)); err == nil {
		t.Error("duplicate email should violate the unique constraint")
	}
}

func TestGetUserByCredentials(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	if err := repo.CreateUser(testUser("login@test.ru", models.RoleUser)); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := repo.GetUserByCredentials("login@test.ru", "123456")
	if err != nil {
		t.Fatalf("GetUserByCredentials failed: %v", err)
	}
	if got.Email != "login@test.ru" {
		t.Errorf("wrong user returned: %+v", got)
	}

	// Both email and password are exact, case-sensitive matches.
	if _, err := repo.GetUserByCredentials("login@test.ru", "wrong"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("wrong password should miss, got %v", err)
	}
	if _, err := repo.GetUserByCredentials("LOGIN@test.ru", "123456"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("email match must be case-sensitive, got %v", err)
	}
}

func TestUpdateUserNotaryLink(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	n := testNotary("Иванов Иван Иванович", "Москва")
	if err := repo.CreateNotary(n); err != nil {
		t.Fatalf("CreateNotary failed: %v", err)
	}

	u := testUser("notary@test.ru", models.RoleNotary)
	if err := repo.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	u.NotaryID = n.ID
	if err := repo.UpdateUser(u); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	got, err := repo.GetUserByEmail("notary@test.ru")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.NotaryID != n.ID {
		t.Errorf("notary link not persisted: %s", got.NotaryID)
	}
	if !got.IsNotaryLinked() {
		t.Error("IsNotaryLinked should be true")
	}
}

// =====================================================
// Favorites Repository Tests
// =====================================================

func TestFavoritesLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	u := testUser("fav@test.ru", models.RoleUser)
	if err := repo.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	n := testNotary("Избранный Нотариус", "Москва")
	if err := repo.CreateNotary(n); err != nil {
		t.Fatalf("CreateNotary failed: %v", err)
	}

	fav, err := repo.IsFavorite(u.ID, n.ID)
	if err != nil {
		t.Fatalf("IsFavorite failed: %v", err)
	}
	if fav {
		t.Error("fresh pair should not be a favorite")
	}

	if err := repo.AddFavorite(u.ID, n.ID); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	// Adding again is a no-op, not an error.
	if err := repo.AddFavorite(u.ID, n.ID); err != nil {
		t.Fatalf("repeated AddFavorite failed: %v", err)
	}

	fav, _ = repo.IsFavorite(u.ID, n.ID)
	if !fav {
		t.Error("pair should be a favorite after add")
	}

	list, err := repo.ListFavoriteNotaries(u.ID)
	if err != nil {
		t.Fatalf("ListFavoriteNotaries failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != n.ID {
		t.Errorf("favorites list wrong: %+v", list)
	}

	if err := repo.RemoveFavorite(u.ID, n.ID); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}
	// Removing an absent pair is a no-op too.
	if err := repo.RemoveFavorite(u.ID, n.ID); err != nil {
		t.Fatalf("repeated RemoveFavorite failed: %v", err)
	}
	fav, _ = repo.IsFavorite(u.ID, n.ID)
	if fav {
		t.Error("pair should not be a favorite after remove")
	}
}

func TestDeleteNotaryDetachesFavorites(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	u := testUser("cascade@test.ru", models.RoleUser)
	if err := repo.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	n := testNotary("Исчезающий Нотариус", "Москва")
	if err := repo.CreateNotary(n); err != nil {
		t.Fatalf("CreateNotary failed: %v", err)
	}
	if err := repo.AddFavorite(u.ID, n.ID); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}

	if err := repo.DeleteNotary(n.ID.String()); err != nil {
		t.Fatalf("DeleteNotary failed: %v", err)
	}

	list, err := repo.ListFavoriteNotaries(u.ID)
	if err != nil {
		t.Fatalf("ListFavoriteNotaries failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("favorites should cascade away with the notary, got %d", len(list))
	}
}
