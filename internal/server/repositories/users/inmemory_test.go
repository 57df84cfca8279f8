package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

func TestInMemory_Create_AssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryRepository()
	ctx := context.Background()

	u1, err := repo.Create(ctx, "alice", "h1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	u2, err := repo.Create(ctx, "bob", "h2")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if u1.ID != 1 || u2.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", u1.ID, u2.ID)
	}
	if u1.CreatedAt.IsZero() || !u1.CreatedAt.Equal(u1.UpdatedAt) {
		t.Fatalf("expected matching fresh timestamps, got %+v", u1)
	}
}

func TestInMemory_Create_DuplicateIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, "Alice", "h1"); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	_, err := repo.Create(ctx, "alice", "h2")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestInMemory_GetByUsername_CaseInsensitive(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, "Alice", "h1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := repo.GetByUsername(ctx, "aLiCe")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.ID != created.ID || got.Username != "Alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.PasswordHash != "h1" {
		t.Fatal("expected the full record including the password hash")
	}
}

func TestInMemory_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryRepository()

	_, err := repo.GetByID(context.Background(), 42)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestInMemory_Update_MergesFields(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, "bob", "h1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	newName := "bobby"
	got, err := repo.Update(ctx, created.ID, Update{Username: &newName})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Username != "bobby" {
		t.Fatalf("username not updated: %+v", got)
	}
	if got.PasswordHash != "h1" {
		t.Fatalf("password hash should be untouched: %+v", got)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("UpdatedAt not refreshed: %+v", got)
	}
}

func TestInMemory_Update_CollisionWithOtherUser(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, "alice", "h1"); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	bob, err := repo.Create(ctx, "bob", "h2")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	taken := "ALICE"
	_, err = repo.Update(ctx, bob.ID, Update{Username: &taken})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

// Renaming to a different casing of your own username is not a collision.
func TestInMemory_Update_OwnUsernameCaseChange(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryRepository()
	ctx := context.Background()

	alice, err := repo.Create(ctx, "Alice", "h1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	lower := "alice"
	got, err := repo.Update(ctx, alice.ID, Update{Username: &lower})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected username: %q", got.Username)
	}
}

func TestInMemory_Update_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryRepository()

	name := "ghost"
	_, err := repo.Update(context.Background(), 42, Update{Username: &name})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestInMemory_ConcurrentCreates_UniqueIDs(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryRepository()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.Create(ctx, "user-"+string(rune('a'+i%26))+string(rune('0'+i/26)), "h")
			if err != nil {
				return
			}
			ids <- u.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id assigned: %d", id)
		}
		seen[id] = true
	}
}
