package repo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"inspectline/internal/domain"
)

// TaskStore is the remote system of record for tasks.
type TaskStore interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, draft domain.Task) (domain.Task, error)
	ReplaceTask(ctx context.Context, id string, t domain.Task) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Tasks caches the whole task collection and is the only path through which
// tasks are read from or written to the remote store. The cache changes only
// after the remote store confirmed a write, so readers never see a state the
// store does not hold.
type Tasks struct {
	store  TaskStore
	logger *slog.Logger

	// writeMu serializes remote writes and refreshes so a refresh cannot
	// overwrite a confirmed write with an older listing.
	writeMu sync.Mutex

	mu     sync.RWMutex
	cache  []domain.Task
	loaded bool

	subMu   sync.Mutex
	subs    map[int]func([]domain.Task)
	nextSub int
}

func New(store TaskStore, logger *slog.Logger) *Tasks {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tasks{
		store:  store,
		logger: logger,
		subs:   map[int]func([]domain.Task){},
	}
}

// List returns the cached collection newest first, fetching it on first use.
func (r *Tasks) List(ctx context.Context) ([]domain.Task, error) {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if !loaded {
		if err := r.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return r.Snapshot(), nil
}

// Snapshot returns the cache as it is, without fetching.
func (r *Tasks) Snapshot() []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.cache)
}

// Loaded reports whether the collection was fetched at least once.
func (r *Tasks) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Refresh refetches the collection and replaces the cache wholesale. On
// failure the previous contents stay in place.
func (r *Tasks) Refresh(ctx context.Context) error {
	var snap []domain.Task
	defer func() { r.notify(snap) }()
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	tasks, err := r.store.ListTasks(ctx)
	if err != nil {
		r.logger.Warn("task refresh failed", "error", err)
		return &RemoteReadError{Err: err}
	}
	tasks = cloneAll(tasks)
	sortNewestFirst(tasks)
	r.mu.Lock()
	r.cache = tasks
	r.loaded = true
	snap = cloneAll(r.cache)
	r.mu.Unlock()
	r.logger.Debug("task cache refreshed", "count", len(tasks))
	return nil
}

// Get returns the cached task with id, fetching the collection on first use.
func (r *Tasks) Get(ctx context.Context, id string) (domain.Task, error) {
	if _, err := r.List(ctx); err != nil {
		return domain.Task{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(id)
	if i < 0 {
		return domain.Task{}, &NotFoundError{ID: id}
	}
	return r.cache[i].Clone(), nil
}

// Create sends the draft to the remote store and prepends the persisted
// task to the cache.
func (r *Tasks) Create(ctx context.Context, draft domain.Task) (domain.Task, error) {
	var snap []domain.Task
	defer func() { r.notify(snap) }()
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	saved, err := r.store.CreateTask(ctx, draft)
	if err == nil && saved.ID == "" {
		err = errors.New("store returned task without id")
	}
	if err != nil {
		r.logger.Warn("task create failed", "error", err)
		return domain.Task{}, &RemoteWriteError{Op: "create", Err: err}
	}
	saved = saved.Clone()
	r.mu.Lock()
	r.cache = append([]domain.Task{saved}, r.cache...)
	snap = cloneAll(r.cache)
	r.mu.Unlock()
	r.logger.Info("task created", "task_id", saved.ID, "task_type", saved.TaskType, "assigned_to", saved.AssignedTo)
	return saved.Clone(), nil
}

// Update applies patch to the cached task, sends the result to the remote
// store and replaces the cache entry with what the store persisted.
func (r *Tasks) Update(ctx context.Context, id string, patch Patch) (domain.Task, error) {
	var snap []domain.Task
	defer func() { r.notify(snap) }()
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.RLock()
	i := r.indexLocked(id)
	var current domain.Task
	if i >= 0 {
		current = r.cache[i].Clone()
	}
	r.mu.RUnlock()
	if i < 0 {
		return domain.Task{}, &NotFoundError{ID: id}
	}
	next := patch.Apply(current)
	saved, err := r.store.ReplaceTask(ctx, id, next)
	if err != nil {
		r.logger.Warn("task update failed", "task_id", id, "error", err)
		return domain.Task{}, &RemoteWriteError{Op: "update", ID: id, Err: err}
	}
	if saved.ID == "" {
		saved.ID = id
	}
	saved = saved.Clone()
	r.mu.Lock()
	if j := r.indexLocked(id); j >= 0 {
		r.cache[j] = saved
	}
	snap = cloneAll(r.cache)
	r.mu.Unlock()
	r.logger.Info("task updated", "task_id", id, "from_status", current.Status, "to_status", saved.Status)
	return saved.Clone(), nil
}

// Delete removes the task remotely first and only then from the cache.
func (r *Tasks) Delete(ctx context.Context, id string) error {
	var snap []domain.Task
	defer func() { r.notify(snap) }()
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.RLock()
	i := r.indexLocked(id)
	r.mu.RUnlock()
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	if err := r.store.DeleteTask(ctx, id); err != nil {
		r.logger.Warn("task delete failed", "task_id", id, "error", err)
		return &RemoteWriteError{Op: "delete", ID: id, Err: err}
	}
	r.mu.Lock()
	if j := r.indexLocked(id); j >= 0 {
		r.cache = append(r.cache[:j:j], r.cache[j+1:]...)
	}
	snap = cloneAll(r.cache)
	r.mu.Unlock()
	r.logger.Info("task deleted", "task_id", id)
	return nil
}

// Subscribe registers fn to receive a snapshot after every cache change.
// fn runs once the write has released its locks, so it may call back into
// the repository. The returned func removes the subscription.
func (r *Tasks) Subscribe(fn func([]domain.Task)) func() {
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subMu.Unlock()
	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

// notify hands snap to every subscriber. A nil snap means the cache did not
// change. It must be called without writeMu held.
func (r *Tasks) notify(snap []domain.Task) {
	if snap == nil {
		return
	}
	r.subMu.Lock()
	fns := make([]func([]domain.Task), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()
	for _, fn := range fns {
		fn(cloneAll(snap))
	}
}

func (r *Tasks) indexLocked(id string) int {
	for i := range r.cache {
		if r.cache[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(in []domain.Task) []domain.Task {
	out := make([]domain.Task, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func sortNewestFirst(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ti, erri := time.Parse(time.RFC3339Nano, tasks[i].CreatedAt)
		tj, errj := time.Parse(time.RFC3339Nano, tasks[j].CreatedAt)
		if erri == nil && errj == nil {
			return ti.After(tj)
		}
		return tasks[i].CreatedAt > tasks[j].CreatedAt
	})
}
