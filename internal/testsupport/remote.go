package testsupport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"inspectline/internal/domain"
)

// ErrInjected is returned by FakeRemote when a failure was armed.
var ErrInjected = errors.New("injected remote failure")

// FakeRemote is an in-memory task store, asset catalog and user directory.
// Failures are armed per operation; FailCreateAfter lets a fan-out succeed a
// given number of times before the next create fails.
type FakeRemote struct {
	mu sync.Mutex

	tasks   []domain.Task
	baSets  []domain.Asset
	kits    []domain.Asset
	users   []domain.User
	nextID  int
	clock   time.Time
	Calls   map[string]int
	Replace []domain.Task

	FailList        bool
	FailCreate      bool
	FailCreateAfter int
	FailReplace     bool
	FailDelete      bool
	FailAssets      bool
	FailUsers       bool
}

func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		clock:           time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC),
		Calls:           map[string]int{},
		FailCreateAfter: -1,
	}
}

// WithAssets seeds both catalog collections.
func (f *FakeRemote) WithAssets(baSets, kits []domain.Asset) *FakeRemote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baSets = append([]domain.Asset(nil), baSets...)
	f.kits = append([]domain.Asset(nil), kits...)
	return f
}

func (f *FakeRemote) WithUsers(users ...domain.User) *FakeRemote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append([]domain.User(nil), users...)
	return f
}

// Seed stores tasks as if created earlier. Tasks without an id get one.
func (f *FakeRemote) Seed(tasks ...domain.Task) *FakeRemote {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range tasks {
		f.assignIdentity(&t)
		f.tasks = append(f.tasks, t.Clone())
	}
	return f
}

// Stored returns what the fake store currently persists, in insertion order.
func (f *FakeRemote) Stored() []domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Task, len(f.tasks))
	for i := range f.tasks {
		out[i] = f.tasks[i].Clone()
	}
	return out
}

func (f *FakeRemote) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

func (f *FakeRemote) ListTasks(ctx context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["list"]++
	if f.FailList {
		return nil, ErrInjected
	}
	out := make([]domain.Task, len(f.tasks))
	for i := range f.tasks {
		out[i] = f.tasks[i].Clone()
	}
	return out, nil
}

func (f *FakeRemote) CreateTask(ctx context.Context, draft domain.Task) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["create"]++
	if f.FailCreate {
		return domain.Task{}, ErrInjected
	}
	if f.FailCreateAfter >= 0 {
		if f.FailCreateAfter == 0 {
			return domain.Task{}, ErrInjected
		}
		f.FailCreateAfter--
	}
	t := draft.Clone()
	t.ID = ""
	f.assignIdentity(&t)
	f.tasks = append(f.tasks, t.Clone())
	return t, nil
}

func (f *FakeRemote) ReplaceTask(ctx context.Context, id string, t domain.Task) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["replace"]++
	if f.FailReplace {
		return domain.Task{}, ErrInjected
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			next := t.Clone()
			next.ID = id
			next.CreatedAt = f.tasks[i].CreatedAt
			f.tasks[i] = next
			f.Replace = append(f.Replace, next.Clone())
			return next.Clone(), nil
		}
	}
	return domain.Task{}, fmt.Errorf("task %s: not found", id)
}

func (f *FakeRemote) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["delete"]++
	if f.FailDelete {
		return ErrInjected
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %s: not found", id)
}

func (f *FakeRemote) ListBASets(ctx context.Context) ([]domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["baSets"]++
	if f.FailAssets {
		return nil, ErrInjected
	}
	return append([]domain.Asset(nil), f.baSets...), nil
}

func (f *FakeRemote) ListSafetyKits(ctx context.Context) ([]domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["safetyKits"]++
	if f.FailAssets {
		return nil, ErrInjected
	}
	return append([]domain.Asset(nil), f.kits...), nil
}

func (f *FakeRemote) ListUsers(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["users"]++
	if f.FailUsers {
		return nil, ErrInjected
	}
	return append([]domain.User(nil), f.users...), nil
}

// assignIdentity gives t an id and a createdAt one minute after the previous task.
func (f *FakeRemote) assignIdentity(t *domain.Task) {
	if t.ID == "" {
		f.nextID++
		t.ID = fmt.Sprintf("task-%03d", f.nextID)
	}
	if t.CreatedAt == "" {
		f.clock = f.clock.Add(time.Minute)
		t.CreatedAt = f.clock.Format(time.RFC3339Nano)
	}
}
