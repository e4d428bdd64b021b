package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/models/dto"
	"github.com/Nand2004/GeoConnect-sub000/internal/config"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/reconcile"
)

func floatPtr(f float64) *float64 { return &f }

func createEvent(t *testing.T, env *testEnv, creator string) (*models.Event, *models.Chat) {
	t.Helper()
	event, chat, err := env.svc.Event.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Name:      "Sunday run",
		Location:  dto.LocationRequest{Longitude: floatPtr(-73.9857), Latitude: floatPtr(40.7484)},
		DateTime:  time.Now().Add(48 * time.Hour),
		CreatorID: creator,
		Category:  "sports",
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	return event, chat
}

func membership(eventID, userID string) *dto.EventMembershipRequest {
	return &dto.EventMembershipRequest{EventID: eventID, UserID: userID}
}

func TestJoinAndLeaveMirrorChatMembership(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	creator, joiner := env.user(0), env.user(1)
	event, chat := createEvent(t, env, creator)

	joined, err := env.svc.Event.JoinEvent(ctx, membership(event.ID.Hex(), joiner))
	if err != nil {
		t.Fatalf("JoinEvent() error = %v", err)
	}
	if !joined.IsAttending(joiner) {
		t.Error("joiner missing from attendees")
	}
	linked, _ := env.chatStore.GetByID(ctx, chat.ID)
	if !linked.HasMember(joiner) {
		t.Error("joiner missing from the event chat")
	}

	left, err := env.svc.Event.LeaveEvent(ctx, membership(event.ID.Hex(), joiner))
	if err != nil {
		t.Fatalf("LeaveEvent() error = %v", err)
	}
	if left.IsAttending(joiner) {
		t.Error("joiner still attending after leaving")
	}
	linked, _ = env.chatStore.GetByID(ctx, chat.ID)
	if linked.HasMember(joiner) {
		t.Error("joiner still in the event chat after leaving")
	}
	if !linked.HasMember(creator) {
		t.Error("creator dropped from the event chat")
	}
}

func TestJoinEventRejections(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	creator, joiner := env.user(0), env.user(1)
	event, _ := createEvent(t, env, creator)

	if _, err := env.svc.Event.JoinEvent(ctx, membership(event.ID.Hex(), joiner)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		eventID string
		userID  string
		leave   bool
		want    error
	}{
		{"creator joins own event", event.ID.Hex(), creator, false, apperrors.ErrSelfJoinRejected},
		{"joins twice", event.ID.Hex(), joiner, false, apperrors.ErrAlreadyAttending},
		{"unknown event", primitive.NewObjectID().Hex(), joiner, false, apperrors.ErrEventNotFound},
		{"malformed user", event.ID.Hex(), "nope", false, apperrors.ErrValidationFailed},
		{"leave without attending", event.ID.Hex(), env.user(2), true, apperrors.ErrNotAttending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.leave {
				_, err = env.svc.Event.LeaveEvent(ctx, membership(tt.eventID, tt.userID))
			} else {
				_, err = env.svc.Event.JoinEvent(ctx, membership(tt.eventID, tt.userID))
			}
			assertErrorIs(t, err, tt.want)
		})
	}

	stored, _ := env.eventStore.GetByID(ctx, event.ID)
	if len(stored.Attendees) != 1 {
		t.Errorf("attendees = %d, want 1", len(stored.Attendees))
	}
}

func TestJoinEventSkipsMissingChat(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	event, chat := createEvent(t, env, env.user(0))
	if err := env.chatStore.Delete(ctx, chat.ID); err != nil {
		t.Fatal(err)
	}

	got, err := env.svc.Event.JoinEvent(ctx, membership(event.ID.Hex(), env.user(1)))
	if err != nil {
		t.Fatalf("JoinEvent() error = %v", err)
	}
	if !got.IsAttending(env.user(1)) {
		t.Error("attendee not recorded")
	}
	if n := len(env.signals.Signals()); n != 0 {
		t.Errorf("emitted %d reconciliation signals for a missing chat", n)
	}
}

func TestJoinEventRetriesSecondWrite(t *testing.T) {
	env := newTestEnv(t, Options{Coordinator: CoordinatorConfig{SecondWriteRetries: 2}})
	ctx := context.Background()
	event, chat := createEvent(t, env, env.user(0))
	env.chats.failSaves = 2

	if _, err := env.svc.Event.JoinEvent(ctx, membership(event.ID.Hex(), env.user(1))); err != nil {
		t.Fatalf("JoinEvent() error = %v, want success on the third attempt", err)
	}
	linked, _ := env.chatStore.GetByID(ctx, chat.ID)
	if !linked.HasMember(env.user(1)) {
		t.Error("chat membership not written after retries")
	}
	if env.chats.saveCalls != 3 {
		t.Errorf("chat saves = %d, want 3", env.chats.saveCalls)
	}
}

func TestSecondWriteFailureSequential(t *testing.T) {
	env := newTestEnv(t, Options{Coordinator: CoordinatorConfig{
		Consistency:        config.ConsistencySequential,
		SecondWriteRetries: 1,
		RetryBackoff:       time.Millisecond,
	}})
	ctx := context.Background()
	event, chat := createEvent(t, env, env.user(0))
	joiner := env.user(1)
	env.chats.failSaves = -1

	_, err := env.svc.Event.JoinEvent(ctx, membership(event.ID.Hex(), joiner))
	assertErrorIs(t, err, apperrors.ErrPartialMembershipUpdate)

	var ce *apperrors.CustomError
	if !errors.As(err, &ce) || ce.Code != "MEM_001" {
		t.Errorf("error code = %v, want MEM_001", err)
	}

	stored, _ := env.eventStore.GetByID(ctx, event.ID)
	if !stored.IsAttending(joiner) {
		t.Error("first write should stay committed")
	}
	linked, _ := env.chatStore.GetByID(ctx, chat.ID)
	if linked.HasMember(joiner) {
		t.Error("chat should not contain the joiner")
	}

	signals := env.signals.Signals()
	if len(signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(signals))
	}
	sig := signals[0]
	if sig.Operation != reconcile.OpJoinEvent || sig.EventID != event.ID.Hex() || sig.ChatID != chat.ID.Hex() || sig.UserID != joiner {
		t.Errorf("signal = %+v", sig)
	}
}

func TestSecondWriteFailureCompensate(t *testing.T) {
	t.Run("rollback succeeds", func(t *testing.T) {
		env := newTestEnv(t, Options{Coordinator: CoordinatorConfig{Consistency: config.ConsistencyCompensate}})
		ctx := context.Background()
		event, _ := createEvent(t, env, env.user(0))
		env.chats.failSaves = -1

		_, err := env.svc.Event.JoinEvent(ctx, membership(event.ID.Hex(), env.user(1)))
		if err == nil {
			t.Fatal("JoinEvent() should fail")
		}
		if errors.Is(err, apperrors.ErrPartialMembershipUpdate) {
			t.Errorf("rolled back join reported as partial: %v", err)
		}
		assertErrorIs(t, err, errInjected)

		stored, _ := env.eventStore.GetByID(ctx, event.ID)
		if stored.IsAttending(env.user(1)) {
			t.Error("attendee should have been rolled back")
		}
		if n := len(env.signals.Signals()); n != 0 {
			t.Errorf("signals = %d, want 0", n)
		}
	})

	t.Run("leave rollback restores attendee", func(t *testing.T) {
		env := newTestEnv(t, Options{Coordinator: CoordinatorConfig{Consistency: config.ConsistencyCompensate}})
		ctx := context.Background()
		event, _ := createEvent(t, env, env.user(0))
		if _, err := env.svc.Event.JoinEvent(ctx, membership(event.ID.Hex(), env.user(1))); err != nil {
			t.Fatal(err)
		}
		env.chats.failSaves = -1

		if _, err := env.svc.Event.LeaveEvent(ctx, membership(event.ID.Hex(), env.user(1))); err == nil {
			t.Fatal("LeaveEvent() should fail")
		}
		stored, _ := env.eventStore.GetByID(ctx, event.ID)
		if !stored.IsAttending(env.user(1)) {
			t.Error("attendee should have been restored")
		}
	})

	t.Run("rollback fails too", func(t *testing.T) {
		env := newTestEnv(t, Options{Coordinator: CoordinatorConfig{Consistency: config.ConsistencyCompensate}})
		ctx := context.Background()
		event, _ := createEvent(t, env, env.user(0))
		env.chats.failSaves = -1
		env.events.failSaves = true
		env.events.allowedSaves = 1

		_, err := env.svc.Event.JoinEvent(ctx, membership(event.ID.Hex(), env.user(1)))
		assertErrorIs(t, err, apperrors.ErrPartialMembershipUpdate)
		if n := len(env.signals.Signals()); n != 1 {
			t.Errorf("signals = %d, want 1", n)
		}
	})
}

func TestCreateEventLinksChat(t *testing.T) {
	env := newTestEnv(t, Options{})
	creator := env.user(0)
	event, chat := createEvent(t, env, creator)

	if event.ChatID == nil || *event.ChatID != chat.ID {
		t.Fatalf("event.ChatID = %v, want %s", event.ChatID, chat.ID.Hex())
	}
	if chat.EventID == nil || *chat.EventID != event.ID {
		t.Fatalf("chat.EventID = %v, want %s", chat.EventID, event.ID.Hex())
	}
	if chat.ChatType != models.ChatTypeGroup || chat.ChatName != event.Name {
		t.Errorf("chat = %s %q, want group named after the event", chat.ChatType, chat.ChatName)
	}
	if len(chat.Users) != 1 || chat.Users[0].UserID != creator || chat.Users[0].Role != models.RoleAdmin {
		t.Errorf("chat members = %+v, want only the creator as admin", chat.Users)
	}
	if len(event.Attendees) != 0 {
		t.Errorf("creator must not be an attendee")
	}
}

func TestCreateEventRemovesChatWhenEventInsertFails(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.events.failCreate = true

	_, _, err := env.svc.Event.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Name:      "Doomed",
		Location:  dto.LocationRequest{Longitude: floatPtr(0), Latitude: floatPtr(0)},
		DateTime:  time.Now(),
		CreatorID: env.user(0),
	})
	assertErrorIs(t, err, errInjected)
	if n := env.chatStore.Count(); n != 0 {
		t.Errorf("chats left behind = %d, want 0", n)
	}
}

func TestCreateEventRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, Options{})
	base := func() dto.CreateEventRequest {
		return dto.CreateEventRequest{
			Name:      "Picnic",
			Location:  dto.LocationRequest{Longitude: floatPtr(2.35), Latitude: floatPtr(48.85)},
			DateTime:  time.Now(),
			CreatorID: env.user(0),
		}
	}

	tests := []struct {
		name   string
		mutate func(*dto.CreateEventRequest)
		want   error
	}{
		{"unknown creator", func(r *dto.CreateEventRequest) { r.CreatorID = uuid.NewString() }, apperrors.ErrUserNotFound},
		{"unknown category", func(r *dto.CreateEventRequest) { r.Category = "opera" }, apperrors.ErrValidationFailed},
		{"missing location", func(r *dto.CreateEventRequest) { r.Location = dto.LocationRequest{} }, apperrors.ErrValidationFailed},
		{"latitude out of range", func(r *dto.CreateEventRequest) { r.Location.Latitude = floatPtr(91) }, apperrors.ErrValidationFailed},
		{"missing date", func(r *dto.CreateEventRequest) { r.DateTime = time.Time{} }, apperrors.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)
			_, _, err := env.svc.Event.CreateEvent(context.Background(), &req)
			assertErrorIs(t, err, tt.want)
		})
	}
}

func TestDeleteEventCascades(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	creator := env.user(0)
	event, chat := createEvent(t, env, creator)

	err := env.svc.Event.DeleteEvent(ctx, event.ID.Hex(), env.user(1))
	assertErrorIs(t, err, apperrors.ErrNotEventOwner)

	if err := env.svc.Event.DeleteEvent(ctx, event.ID.Hex(), creator); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	if _, err := env.eventStore.GetByID(ctx, event.ID); !errors.Is(err, apperrors.ErrEventNotFound) {
		t.Errorf("event still present: %v", err)
	}
	if _, err := env.chatStore.GetByID(ctx, chat.ID); !errors.Is(err, apperrors.ErrChatNotFound) {
		t.Errorf("chat still present: %v", err)
	}
}

func TestDeleteEventCascadeFailureIsPartial(t *testing.T) {
	env := newTestEnv(t, Options{})
	event, _ := createEvent(t, env, env.user(0))
	env.chats.failDeletes = -1

	err := env.svc.Event.DeleteEvent(context.Background(), event.ID.Hex(), env.user(0))
	assertErrorIs(t, err, apperrors.ErrPartialMembershipUpdate)

	signals := env.signals.Signals()
	if len(signals) != 1 || signals[0].Operation != reconcile.OpDeleteEvent {
		t.Errorf("signals = %+v, want one delete_event signal", signals)
	}
}

func TestUpdateEventOwnerOnly(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	event, _ := createEvent(t, env, env.user(0))
	name := "Saturday run"

	_, err := env.svc.Event.UpdateEvent(ctx, event.ID.Hex(), env.user(1), &dto.UpdateEventRequest{Name: &name})
	assertErrorIs(t, err, apperrors.ErrNotEventOwner)

	got, err := env.svc.Event.UpdateEvent(ctx, event.ID.Hex(), env.user(0), &dto.UpdateEventRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if got.Name != name {
		t.Errorf("Name = %q, want %q", got.Name, name)
	}
}

func TestNearbyEvents(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	createEvent(t, env, env.user(0)) // midtown Manhattan

	tests := []struct {
		name      string
		lon, lat  float64
		radius    float64
		wantCount int
		wantErr   error
	}{
		{"default radius", -73.99, 40.75, 0, 1, nil},
		{"too far for default", -73.0, 40.75, 0, 0, nil},
		{"wider radius", -73.0, 40.75, 100, 1, nil},
		{"radius over limit", -73.99, 40.75, 501, 0, apperrors.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.svc.Event.NearbyEvents(ctx, &dto.NearbyQuery{
				Longitude: floatPtr(tt.lon), Latitude: floatPtr(tt.lat), Radius: tt.radius,
			})
			if tt.wantErr != nil {
				assertErrorIs(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("NearbyEvents() error = %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("NearbyEvents() = %d events, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestListUserEventsCreatedOrAttending(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	created, _ := createEvent(t, env, env.user(0))
	joined, _ := createEvent(t, env, env.user(1))
	createEvent(t, env, env.user(2))

	if _, err := env.svc.Event.JoinEvent(ctx, membership(joined.ID.Hex(), env.user(0))); err != nil {
		t.Fatalf("JoinEvent() error = %v", err)
	}

	got, err := env.svc.Event.ListUserEvents(ctx, env.user(0))
	if err != nil {
		t.Fatalf("ListUserEvents() error = %v", err)
	}
	ids := map[primitive.ObjectID]bool{}
	for _, e := range got {
		ids[e.ID] = true
	}
	if len(got) != 2 || !ids[created.ID] || !ids[joined.ID] {
		t.Errorf("ListUserEvents() returned %d events, want the created and the joined one", len(got))
	}

	_, err = env.svc.Event.ListUserEvents(ctx, "not-a-uuid")
	assertErrorIs(t, err, apperrors.ErrValidationFailed)
}
