package seed

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/notaryapp/backend/internal/db"
	"github.com/notaryapp/backend/internal/models"
)

func setupRepo(t *testing.T) *db.Repository {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.MigrateUp(sqlDB); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}
	return db.NewRepository(sqlDB)
}

func TestSeedPopulatesEmptyStore(t *testing.T) {
	repo := setupRepo(t)

	if err := NewSeeder(repo).SeedIfEmpty(); err != nil {
		t.Fatalf("SeedIfEmpty failed: %v", err)
	}

	notaries, err := repo.CountNotaries()
	if err != nil {
		t.Fatalf("CountNotaries failed: %v", err)
	}
	if notaries == 0 {
		t.Error("no notaries seeded")
	}

	articles, err := repo.CountArticles()
	if err != nil {
		t.Fatalf("CountArticles failed: %v", err)
	}
	if articles == 0 {
		t.Error("no articles seeded")
	}

	users, err := repo.CountUsers()
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if users != 3 {
		t.Errorf("expected 3 demo accounts, got %d", users)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := setupRepo(t)
	seeder := NewSeeder(repo)

	if err := seeder.SeedIfEmpty(); err != nil {
		t.Fatalf("first SeedIfEmpty failed: %v", err)
	}
	notaries, _ := repo.CountNotaries()
	articles, _ := repo.CountArticles()
	users, _ := repo.CountUsers()

	if err := seeder.SeedIfEmpty(); err != nil {
		t.Fatalf("second SeedIfEmpty failed: %v", err)
	}

	if n, _ := repo.CountNotaries(); n != notaries {
		t.Errorf("notary count changed on re-seed: %d -> %d", notaries, n)
	}
	if a, _ := repo.CountArticles(); a != articles {
		t.Errorf("article count changed on re-seed: %d -> %d", articles, a)
	}
	if u, _ := repo.CountUsers(); u != users {
		t.Errorf("user count changed on re-seed: %d -> %d", users, u)
	}
}

func TestSeedDemoCredentials(t *testing.T) {
	repo := setupRepo(t)
	if err := NewSeeder(repo).SeedIfEmpty(); err != nil {
		t.Fatalf("SeedIfEmpty failed: %v", err)
	}

	cases := []struct {
		email string
		role  models.Role
	}{
		{AdminEmail, models.RoleAdmin},
		{UserEmail, models.RoleUser},
		{NotaryEmail, models.RoleNotary},
	}
	for _, c := range cases {
		u, err := repo.GetUserByCredentials(c.email, demoPassword)
		if err != nil {
			t.Errorf("demo account %s not loginable: %v", c.email, err)
			continue
		}
		if u.Role != c.role {
			t.Errorf("account %s has role %s, want %s", c.email, u.Role, c.role)
		}
	}
}

func TestSeedLinksNotaryAccount(t *testing.T) {
	repo := setupRepo(t)
	if err := NewSeeder(repo).SeedIfEmpty(); err != nil {
		t.Fatalf("SeedIfEmpty failed: %v", err)
	}

	account, err := repo.GetUserByEmail(NotaryEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if !account.IsNotaryLinked() {
		t.Fatal("demo notary account should be linked to its directory profile")
	}

	profile, err := repo.GetNotary(account.NotaryID.String())
	if err != nil {
		t.Fatalf("linked profile not resolvable: %v", err)
	}
	if profile.FIO != LinkedNotaryFIO {
		t.Errorf("linked to wrong profile: %q", profile.FIO)
	}
}

// When the directory payload lacks the linked record, the demo account
// is still created, just unlinked.
func TestSeedUsersWithoutLinkedProfile(t *testing.T) {
	repo := setupRepo(t)
	seeder := NewSeeder(repo)

	// Suppress notary seeding by pre-inserting one unrelated record.
	n := &models.Notary{FIO: "Другой Нотариус", Region: "Казань"}
	if err := repo.CreateNotary(n); err != nil {
		t.Fatalf("CreateNotary failed: %v", err)
	}

	if err := seeder.SeedIfEmpty(); err != nil {
		t.Fatalf("SeedIfEmpty failed: %v", err)
	}

	account, err := repo.GetUserByEmail(NotaryEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if account.IsNotaryLinked() {
		t.Error("account should be unlinked when the profile is absent")
	}
}

// External ids in the payload that are not UUIDs still import: each
// gets a generated primary id while the external id is preserved.
func TestSeedHandlesNonUUIDExternalIDs(t *testing.T) {
	repo := setupRepo(t)
	if err := NewSeeder(repo).SeedIfEmpty(); err != nil {
		t.Fatalf("SeedIfEmpty failed: %v", err)
	}

	n, err := repo.GetNotaryByIDString("notary-spb-003")
	if err != nil {
		t.Fatalf("record with non-UUID external id not imported: %v", err)
	}
	if n.ID.String() == "notary-spb-003" {
		t.Error("primary id should be a generated UUID, not the raw external id")
	}
}
