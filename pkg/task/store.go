package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/td0m/rememo/pkg/persist"
	"github.com/td0m/rememo/pkg/task/date"
)

// keys of the two persisted collections
const (
	TasksKey   = "@tasks"
	HistoryKey = "@Effort_history"
)

type StoreManager interface {
	ListTasks(ctx context.Context) ([]Task, error)
	GetTask(ctx context.Context, id ID) (Task, error)
	AddTask(ctx context.Context, t Task) (Task, error)
	UpdateTask(ctx context.Context, t Task) (bool, error)
	DeleteTask(ctx context.Context, id ID) (bool, error)
	SetCompleted(ctx context.Context, id ID, completed bool) (bool, error)
	Refill(ctx context.Context, id ID, amount int) (Task, error)

	ListHistory(ctx context.Context) ([]EffortHistory, error)
	ListTodaysHistory(ctx context.Context) ([]EffortHistory, error)
	HistoryOn(ctx context.Context, day time.Time) ([]EffortHistory, error)
	RecordEffort(ctx context.Context, taskID ID, completed bool, at time.Time) (EffortHistory, error)
	DailyProgress(ctx context.Context) (Progress, error)

	ClearAll(ctx context.Context) error
}

var _ StoreManager = &Store{}

var (
	ErrIDAlreadyExists = errors.New("task with the given ID already exists")
	ErrNotFound        = errors.New("not found")
	ErrEmptyName       = errors.New("task name is required")
	ErrInvalidTime     = errors.New("invalid reminder time")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrSupplyOverflow  = errors.New("supply would overflow")
)

// Logger is satisfied by *log.Logger
type Logger interface {
	Printf(format string, v ...interface{})
}

// Store keeps tasks and their effort history as two blobs in a key-value store.
// Every operation reads, mutates and writes back a whole collection; the mutex makes
// those cycles safe for concurrent callers sharing one Store
type Store struct {
	mu  sync.Mutex
	kv  persist.KV
	now func() time.Time
	loc *time.Location
	log Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the time zone used to decide which calendar day an entry belongs to
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

func WithLogger(l Logger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(kv persist.KV, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		now: time.Now,
		loc: time.Local,
		log: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks(ctx)
}

func (s *Store) GetTask(ctx context.Context, id ID) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.tasks(ctx)
	if err != nil {
		return Task{}, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return tasks[i], nil
}

// AddTask assigns an ID when t has none and appends it
func (s *Store) AddTask(ctx context.Context, t Task) (Task, error) {
	if err := t.validate(); err != nil {
		return Task{}, err
	}
	t = t.clone()
	t.defaults()
	if t.ID == "" {
		t.ID = NewID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.tasks(ctx)
	if err != nil {
		return Task{}, err
	}
	if indexOf(tasks, t.ID) >= 0 {
		return Task{}, ErrIDAlreadyExists
	}
	tasks = append(tasks, t)
	if err := s.saveTasks(ctx, tasks); err != nil {
		return Task{}, err
	}
	return t.clone(), nil
}

// UpdateTask replaces the task with the same ID.
// found is false, and nothing is written, when no task has that ID
func (s *Store) UpdateTask(ctx context.Context, t Task) (bool, error) {
	if err := t.validate(); err != nil {
		return false, err
	}
	t = t.clone()
	t.defaults()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(ctx, t)
}

func (s *Store) update(ctx context.Context, t Task) (bool, error) {
	tasks, err := s.tasks(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(tasks, t.ID)
	if i < 0 {
		return false, nil
	}
	tasks[i] = t
	return true, s.saveTasks(ctx, tasks)
}

// DeleteTask removes the task. History entries that reference it are kept
func (s *Store) DeleteTask(ctx context.Context, id ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.tasks(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return false, nil
	}
	tasks = append(tasks[:i], tasks[i+1:]...)
	return true, s.saveTasks(ctx, tasks)
}

func (s *Store) SetCompleted(ctx context.Context, id ID, completed bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.tasks(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return false, nil
	}
	tasks[i].Completed = completed
	return true, s.saveTasks(ctx, tasks)
}

// Refill adds amount to the tracked supply, starting supply tracking if needed
func (s *Store) Refill(ctx context.Context, id ID, amount int) (Task, error) {
	if amount < 0 {
		return Task{}, ErrNegativeAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.tasks(ctx)
	if err != nil {
		return Task{}, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	t := tasks[i]
	if t.CurrentSupply != nil && amount > math.MaxInt-*t.CurrentSupply {
		return Task{}, ErrSupplyOverflow
	}
	supply := amount
	if t.CurrentSupply != nil {
		supply += *t.CurrentSupply
	}
	t.CurrentSupply = Count(supply)
	tasks[i] = t
	if err := s.saveTasks(ctx, tasks); err != nil {
		return Task{}, err
	}
	return t.clone(), nil
}

func (s *Store) ListHistory(ctx context.Context) ([]EffortHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history(ctx)
}

func (s *Store) ListTodaysHistory(ctx context.Context) ([]EffortHistory, error) {
	return s.HistoryOn(ctx, s.now())
}

// HistoryOn returns the entries recorded on the calendar day of day, in the store's location
func (s *Store) HistoryOn(ctx context.Context, day time.Time) ([]EffortHistory, error) {
	all, err := s.ListHistory(ctx)
	if err != nil {
		return nil, err
	}
	out := []EffortHistory{}
	for _, h := range all {
		if date.SameDay(h.Timestamp, day, s.loc) {
			out = append(out, h)
		}
	}
	return out, nil
}

// RecordEffort appends a history entry. A completed effort also uses up one unit of
// the task's supply, if it has any left.
// The history is written before the task, a failure in between is not rolled back
func (s *Store) RecordEffort(ctx context.Context, taskID ID, completed bool, at time.Time) (EffortHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.history(ctx)
	if err != nil {
		return EffortHistory{}, err
	}
	entry := EffortHistory{
		ID:        NewID(),
		TaskID:    taskID,
		Timestamp: at,
		Completed: completed,
	}
	history = append(history, entry)
	if err := s.saveHistory(ctx, history); err != nil {
		return EffortHistory{}, err
	}

	if !completed {
		return entry, nil
	}
	tasks, err := s.tasks(ctx)
	if err != nil {
		return entry, err
	}
	i := indexOf(tasks, taskID)
	if i < 0 {
		return entry, nil
	}
	t := tasks[i]
	if t.CurrentSupply == nil || *t.CurrentSupply <= 0 {
		return entry, nil
	}
	t.CurrentSupply = Count(*t.CurrentSupply - 1)
	if _, err := s.update(ctx, t); err != nil {
		return entry, fmt.Errorf("update supply: %w", err)
	}
	return entry, nil
}

// ClearAll removes both collections with a single call to the backend
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Remove(ctx, TasksKey, HistoryKey); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}

func (s *Store) tasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	ok, err := s.load(ctx, TasksKey, &tasks)
	if err != nil || !ok || tasks == nil {
		return []Task{}, err
	}
	for i := range tasks {
		tasks[i].defaults()
	}
	return tasks, nil
}

func (s *Store) history(ctx context.Context) ([]EffortHistory, error) {
	var history []EffortHistory
	ok, err := s.load(ctx, HistoryKey, &history)
	if err != nil || !ok || history == nil {
		return []EffortHistory{}, err
	}
	return history, nil
}

// load reports false when the blob is missing or cannot be decoded.
// decode failures are logged, only backend errors are returned
func (s *Store) load(ctx context.Context, key string, v interface{}) (bool, error) {
	bs, err := s.kv.Get(ctx, key)
	if errors.Is(err, persist.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if _, err := persist.Decode(bs, v); err != nil {
		s.log.Printf("decode %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (s *Store) saveTasks(ctx context.Context, tasks []Task) error {
	return s.save(ctx, TasksKey, tasks)
}

func (s *Store) saveHistory(ctx context.Context, history []EffortHistory) error {
	return s.save(ctx, HistoryKey, history)
}

func (s *Store) save(ctx context.Context, key string, v interface{}) error {
	bs, err := persist.Encode(v)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, bs); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func indexOf(tasks []Task, id ID) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
