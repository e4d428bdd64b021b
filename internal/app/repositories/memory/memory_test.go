package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

func TestChatStoreSaveRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := NewChatStore()
	chat := models.NewChat(models.ChatTypeDirect, "", []string{"a", "b"}, time.Now())
	if err := store.Create(ctx, chat); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, _ := store.GetByID(ctx, chat.ID)
	second, _ := store.GetByID(ctx, chat.ID)

	first.IsArchived = true
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	if first.Version != 1 {
		t.Errorf("Version after save = %d, want 1", first.Version)
	}

	second.ChatName = "late"
	if err := store.Save(ctx, second); !errors.Is(err, apperrors.ErrVersionConflict) {
		t.Fatalf("stale Save() error = %v, want ErrVersionConflict", err)
	}
}

func TestChatStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewChatStore()
	chat := models.NewChat(models.ChatTypeGroup, "g", []string{"a", "b"}, time.Now())
	_ = store.Create(ctx, chat)

	loaded, _ := store.GetByID(ctx, chat.ID)
	loaded.AddMember("c", models.RoleMember, time.Now())

	again, _ := store.GetByID(ctx, chat.ID)
	if again.HasMember("c") {
		t.Error("mutating a loaded chat leaked into the store")
	}
}

func TestChatStoreFindByMembers(t *testing.T) {
	ctx := context.Background()
	store := NewChatStore()
	now := time.Now()

	direct := models.NewChat(models.ChatTypeDirect, "", []string{"a", "b"}, now)
	group := models.NewChat(models.ChatTypeGroup, "g", []string{"a", "b", "c"}, now)
	_ = store.Create(ctx, direct)
	_ = store.Create(ctx, group)

	tests := []struct {
		name     string
		chatType models.ChatType
		ids      []string
		wantID   string
	}{
		{"direct pair in any order", models.ChatTypeDirect, []string{"b", "a"}, direct.ID.Hex()},
		{"group exact set", models.ChatTypeGroup, []string{"c", "a", "b"}, group.ID.Hex()},
		{"group subset misses", models.ChatTypeGroup, []string{"a", "b"}, ""},
		{"group superset misses", models.ChatTypeGroup, []string{"a", "b", "c", "d"}, ""},
		{"type must match", models.ChatTypeGroup, []string{"a", "b"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindByMembers(ctx, tt.chatType, tt.ids)
			if err != nil {
				t.Fatalf("FindByMembers() error = %v", err)
			}
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("FindByMembers() = %s, want no match", got.ID.Hex())
				}
				return
			}
			if got == nil || got.ID.Hex() != tt.wantID {
				t.Errorf("FindByMembers() = %v, want %s", got, tt.wantID)
			}
		})
	}
}

func TestChatStoreListByMemberOrderAndArchive(t *testing.T) {
	ctx := context.Background()
	store := NewChatStore()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	old := models.NewChat(models.ChatTypeDirect, "", []string{"u", "x"}, base)
	recent := models.NewChat(models.ChatTypeDirect, "", []string{"u", "y"}, base.Add(time.Hour))
	archived := models.NewChat(models.ChatTypeDirect, "", []string{"u", "z"}, base.Add(2*time.Hour))
	archived.IsArchived = true
	for _, c := range []*models.Chat{old, recent, archived} {
		_ = store.Create(ctx, c)
	}

	chats, _ := store.ListByMember(ctx, "u", false)
	if len(chats) != 2 || chats[0].ID != recent.ID || chats[1].ID != old.ID {
		t.Fatalf("ListByMember(false) returned wrong chats or order")
	}

	all, _ := store.ListByMember(ctx, "u", true)
	if len(all) != 3 || all[0].ID != archived.ID {
		t.Fatalf("ListByMember(true) should include the archived chat first")
	}
}

func TestEventStoreFindNearby(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	near := &models.Event{Name: "near", Location: models.NewGeoPoint(-74.0060, 40.7128)}
	nearer := &models.Event{Name: "nearer", Location: models.NewGeoPoint(-74.0050, 40.7130)}
	far := &models.Event{Name: "far", Location: models.NewGeoPoint(-0.1278, 51.5074)}
	for _, e := range []*models.Event{near, nearer, far} {
		_ = store.Create(ctx, e)
	}

	got, err := store.FindNearby(ctx, -74.0049, 40.7131, 10)
	if err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindNearby() returned %d events, want 2", len(got))
	}
	if got[0].Name != "nearer" || got[1].Name != "near" {
		t.Errorf("FindNearby() order = [%s %s], want [nearer near]", got[0].Name, got[1].Name)
	}
}

func TestUserStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(&models.User{ID: "1", Username: "alice", Email: "alice@example.com"})

	tests := []struct {
		name string
		user *models.User
		want error
	}{
		{"duplicate username", &models.User{ID: "2", Username: "ALICE", Email: "other@example.com"}, apperrors.ErrUsernameTaken},
		{"duplicate email", &models.User{ID: "3", Username: "bob", Email: "alice@example.com"}, apperrors.ErrEmailAlreadyExists},
		{"fresh user", &models.User{ID: "4", Username: "carol", Email: "carol@example.com"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Create(ctx, tt.user)
			if !errors.Is(err, tt.want) && err != tt.want {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	missing, _ := store.MissingIDs(ctx, []string{"1", "4", "9"})
	if len(missing) != 1 || missing[0] != "9" {
		t.Errorf("MissingIDs() = %v, want [9]", missing)
	}
}
