package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/repositories"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/repositories/memory"
	"github.com/Nand2004/GeoConnect-sub000/internal/config"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/broadcast"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/reconcile"
)

var errInjected = errors.New("injected store failure")

// flakyChats wraps a chat store and fails the first N saves or deletes
// (-1 fails them all).
type flakyChats struct {
	repositories.ChatRepository

	mu          sync.Mutex
	failSaves   int
	failDeletes int
	saveCalls   int
}

func (f *flakyChats) Save(ctx context.Context, chat *models.Chat) error {
	f.mu.Lock()
	f.saveCalls++
	fail := f.failSaves != 0
	if f.failSaves > 0 {
		f.failSaves--
	}
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.ChatRepository.Save(ctx, chat)
}

func (f *flakyChats) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	fail := f.failDeletes != 0
	if f.failDeletes > 0 {
		f.failDeletes--
	}
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.ChatRepository.Delete(ctx, id)
}

// flakyEvents fails event inserts, and saves after the first allowedSaves
type flakyEvents struct {
	repositories.EventRepository

	failCreate   bool
	allowedSaves int
	failSaves    bool
}

func (f *flakyEvents) Create(ctx context.Context, event *models.Event) error {
	if f.failCreate {
		return errInjected
	}
	return f.EventRepository.Create(ctx, event)
}

func (f *flakyEvents) Save(ctx context.Context, event *models.Event) error {
	if f.failSaves {
		if f.allowedSaves == 0 {
			return errInjected
		}
		f.allowedSaves--
	}
	return f.EventRepository.Save(ctx, event)
}

type testEnv struct {
	chatStore  *memory.ChatStore
	eventStore *memory.EventStore
	users      *memory.UserStore
	chats      *flakyChats
	events     *flakyEvents
	recorder   *broadcast.Recorder
	signals    *reconcile.Recorder
	svc        *Services
	userIDs    []string
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	env := &testEnv{
		chatStore:  memory.NewChatStore(),
		eventStore: memory.NewEventStore(),
		recorder:   broadcast.NewRecorder(),
		signals:    &reconcile.Recorder{},
	}
	seeded := make([]*models.User, 0, 5)
	for _, name := range []string{"ada", "bob", "cy", "dee", "eve"} {
		u := &models.User{ID: uuid.NewString(), Username: name, Email: name + "@example.com", Hobbies: []string{}}
		seeded = append(seeded, u)
		env.userIDs = append(env.userIDs, u.ID)
	}
	env.users = memory.NewUserStore(seeded...)
	env.chats = &flakyChats{ChatRepository: env.chatStore}
	env.events = &flakyEvents{EventRepository: env.eventStore}

	if opts.Coordinator.Consistency == "" {
		opts.Coordinator.Consistency = config.ConsistencySequential
	}
	repos := repositories.Repositories{Chats: env.chats, Events: env.events, Users: env.users}
	env.svc = New(repos, env.recorder, env.signals, opts, zerolog.Nop())
	return env
}

// user returns the id of the i-th seeded user
func (e *testEnv) user(i int) string {
	return e.userIDs[i]
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
