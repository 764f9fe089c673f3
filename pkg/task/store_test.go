package task

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/td0m/rememo/pkg/persist"
)

var (
	loc = time.FixedZone("test", 3*60*60)
	now = time.Date(2026, 3, 10, 10, 0, 0, 0, loc)
)

func newTestStore(kv persist.KV, opts ...Option) *Store {
	opts = append([]Option{WithClock(func() time.Time { return now }), WithLocation(loc)}, opts...)
	return NewStore(kv, opts...)
}

func vitamins() Task {
	return Task{
		Name:            "vitamins",
		Times:           []string{"09:00", "21:00"},
		StartDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Color:           "#4CAF50",
		ReminderEnabled: true,
	}
}

// failingKV fails every write after the first `writes` succeed
type failingKV struct {
	persist.KV
	writes int
}

var errDiskFull = errors.New("disk full")

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.writes <= 0 {
		return errDiskFull
	}
	f.writes--
	return f.KV.Set(ctx, key, value)
}

func (f *failingKV) Remove(ctx context.Context, keys ...string) error {
	return errDiskFull
}

func TestStore_AddTask(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(persist.InMemory())

	t.Run("assigns an id and appends", func(t *testing.T) {
		is := is.New(t)
		before, err := s.ListTasks(ctx)
		is.NoErr(err)
		added, err := s.AddTask(ctx, vitamins())
		is.NoErr(err)
		is.True(added.ID != "")

		after, err := s.ListTasks(ctx)
		is.NoErr(err)
		is.Equal(len(after), len(before)+1)
		n := 0
		for _, got := range after {
			if got.ID == added.ID {
				n++
				is.Equal(got, added)
			}
		}
		is.Equal(n, 1)
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		is := is.New(t)
		v := vitamins()
		v.ID = "abc123"
		added, err := s.AddTask(ctx, v)
		is.NoErr(err)
		is.Equal(added.ID, "abc123")
	})

	t.Run("rejects a duplicate id", func(t *testing.T) {
		is := is.New(t)
		v := vitamins()
		v.ID = "abc123"
		_, err := s.AddTask(ctx, v)
		is.Equal(err, ErrIDAlreadyExists)
	})

	t.Run("validates", func(t *testing.T) {
		is := is.New(t)
		v := vitamins()
		v.Name = "  "
		_, err := s.AddTask(ctx, v)
		is.Equal(err, ErrEmptyName)

		v = vitamins()
		v.Times = []string{"9am"}
		_, err = s.AddTask(ctx, v)
		is.True(errors.Is(err, ErrInvalidTime))

		v = vitamins()
		v.Times = []string{"+9:00"}
		_, err = s.AddTask(ctx, v)
		is.True(errors.Is(err, ErrInvalidTime))

		v = vitamins()
		v.CurrentSupply = Count(-1)
		_, err = s.AddTask(ctx, v)
		is.Equal(err, ErrNegativeAmount)
	})

	t.Run("propagates write failures", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(&failingKV{KV: persist.InMemory()})
		_, err := s.AddTask(ctx, vitamins())
		is.True(errors.Is(err, errDiskFull))
	})
}

func TestStore_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(persist.InMemory())
	added, err := s.AddTask(ctx, vitamins())
	is.New(t).NoErr(err)

	t.Run("update replaces the whole task", func(t *testing.T) {
		is := is.New(t)
		changed := added
		changed.Name = "vitamin D"
		changed.Times = []string{"08:00"}
		found, err := s.UpdateTask(ctx, changed)
		is.NoErr(err)
		is.True(found)
		got, err := s.GetTask(ctx, added.ID)
		is.NoErr(err)
		is.Equal(got, changed)
	})

	t.Run("update of a missing id reports not found", func(t *testing.T) {
		is := is.New(t)
		ghost := vitamins()
		ghost.ID = "ghost"
		found, err := s.UpdateTask(ctx, ghost)
		is.NoErr(err)
		is.True(!found)
		_, err = s.GetTask(ctx, "ghost")
		is.Equal(err, ErrNotFound)
	})

	t.Run("delete of a missing id changes nothing", func(t *testing.T) {
		is := is.New(t)
		before, _ := s.ListTasks(ctx)
		found, err := s.DeleteTask(ctx, "ghost")
		is.NoErr(err)
		is.True(!found)
		after, _ := s.ListTasks(ctx)
		is.Equal(before, after)
	})

	t.Run("delete", func(t *testing.T) {
		is := is.New(t)
		found, err := s.DeleteTask(ctx, added.ID)
		is.NoErr(err)
		is.True(found)
		tasks, _ := s.ListTasks(ctx)
		is.Equal(len(tasks), 0)
	})
}

// replays random operations against the store and a map and compares the results
func TestStore_MatchesModel(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(persist.InMemory())
	rng := rand.New(rand.NewSource(42))

	model := map[ID]Task{}
	order := []ID{}
	for i := 0; i < 300; i++ {
		id := "t" + strconv.Itoa(rng.Intn(20))
		switch rng.Intn(3) {
		case 0:
			v := vitamins()
			v.ID = id
			v.Name = fmt.Sprintf("task %d", i)
			_, err := s.AddTask(ctx, v)
			if _, exists := model[id]; exists {
				is.Equal(err, ErrIDAlreadyExists)
				continue
			}
			is.NoErr(err)
			model[id] = v
			order = append(order, id)
		case 1:
			v := vitamins()
			v.ID = id
			v.Name = fmt.Sprintf("renamed %d", i)
			v.Completed = i%2 == 0
			found, err := s.UpdateTask(ctx, v)
			is.NoErr(err)
			_, exists := model[id]
			is.Equal(found, exists)
			if exists {
				model[id] = v
			}
		case 2:
			found, err := s.DeleteTask(ctx, id)
			is.NoErr(err)
			_, exists := model[id]
			is.Equal(found, exists)
			delete(model, id)
			for j, o := range order {
				if o == id {
					order = append(order[:j], order[j+1:]...)
					break
				}
			}
		}
	}

	tasks, err := s.ListTasks(ctx)
	is.NoErr(err)
	is.Equal(len(tasks), len(order))
	for i, got := range tasks {
		is.Equal(got.ID, order[i])
		is.Equal(got, model[order[i]])
	}
}

func TestStore_ConcurrentAdds(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(persist.InMemory())

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddTask(ctx, vitamins())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		is.NoErr(err)
	}
	tasks, err := s.ListTasks(ctx)
	is.NoErr(err)
	is.Equal(len(tasks), 50)
}

func TestStore_RecordEffort(t *testing.T) {
	ctx := context.Background()

	withSupply := func(t *testing.T, s *Store, supply int) Task {
		v := vitamins()
		v.CurrentSupply = Count(supply)
		added, err := s.AddTask(ctx, v)
		is.New(t).NoErr(err)
		return added
	}

	t.Run("decrements supply", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(persist.InMemory())
		task := withSupply(t, s, 5)
		entry, err := s.RecordEffort(ctx, task.ID, true, now)
		is.NoErr(err)
		is.Equal(entry.TaskID, task.ID)
		is.True(entry.Completed)

		got, _ := s.GetTask(ctx, task.ID)
		is.Equal(*got.CurrentSupply, 4)
		history, _ := s.ListHistory(ctx)
		is.Equal(len(history), 1)
		is.Equal(history[0].ID, entry.ID)
		is.True(history[0].Timestamp.Equal(now))
	})

	t.Run("supply never goes below zero", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(persist.InMemory())
		task := withSupply(t, s, 0)
		_, err := s.RecordEffort(ctx, task.ID, true, now)
		is.NoErr(err)
		got, _ := s.GetTask(ctx, task.ID)
		is.Equal(*got.CurrentSupply, 0)
		history, _ := s.ListHistory(ctx)
		is.Equal(len(history), 1)
		is.True(history[0].Completed)
	})

	t.Run("skipped effort keeps supply", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(persist.InMemory())
		task := withSupply(t, s, 3)
		_, err := s.RecordEffort(ctx, task.ID, false, now)
		is.NoErr(err)
		got, _ := s.GetTask(ctx, task.ID)
		is.Equal(*got.CurrentSupply, 3)
	})

	t.Run("task without supply", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(persist.InMemory())
		task, _ := s.AddTask(ctx, vitamins())
		_, err := s.RecordEffort(ctx, task.ID, true, now)
		is.NoErr(err)
		got, _ := s.GetTask(ctx, task.ID)
		is.True(got.CurrentSupply == nil)
	})

	t.Run("dangling task id is tolerated", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(persist.InMemory())
		_, err := s.RecordEffort(ctx, "deleted-long-ago", true, now)
		is.NoErr(err)
		history, _ := s.ListHistory(ctx)
		is.Equal(len(history), 1)
	})

	t.Run("task write failure leaves history written", func(t *testing.T) {
		is := is.New(t)
		kv := &failingKV{KV: persist.InMemory(), writes: 2}
		s := newTestStore(kv)
		task := withSupply(t, s, 2) // first write
		_, err := s.RecordEffort(ctx, task.ID, true, now)
		is.True(errors.Is(err, errDiskFull))
		history, _ := s.ListHistory(ctx)
		is.Equal(len(history), 1)
		got, _ := s.GetTask(ctx, task.ID)
		is.Equal(*got.CurrentSupply, 2)
	})
}

func TestStore_ListTodaysHistory(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(persist.InMemory())

	yesterday := time.Date(2026, 3, 9, 23, 59, 0, 0, loc)
	today := time.Date(2026, 3, 10, 0, 1, 0, 0, loc)
	// 22:30 UTC on the 9th is 01:30 on the 10th in loc
	todayUTC := time.Date(2026, 3, 9, 22, 30, 0, 0, time.UTC)
	for _, at := range []time.Time{yesterday, today, todayUTC} {
		_, err := s.RecordEffort(ctx, "x", false, at)
		is.NoErr(err)
	}

	got, err := s.ListTodaysHistory(ctx)
	is.NoErr(err)
	is.Equal(len(got), 2)
	is.True(got[0].Timestamp.Equal(today))
	is.True(got[1].Timestamp.Equal(todayUTC))

	got, err = s.HistoryOn(ctx, yesterday)
	is.NoErr(err)
	is.Equal(len(got), 1)
	is.True(got[0].Timestamp.Equal(yesterday))
}

func TestStore_ClearAll(t *testing.T) {
	ctx := context.Background()

	t.Run("removes both collections", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(persist.InMemory())
		task, _ := s.AddTask(ctx, vitamins())
		s.RecordEffort(ctx, task.ID, true, now)

		is.NoErr(s.ClearAll(ctx))
		tasks, err := s.ListTasks(ctx)
		is.NoErr(err)
		is.Equal(len(tasks), 0)
		history, err := s.ListHistory(ctx)
		is.NoErr(err)
		is.Equal(len(history), 0)
	})

	t.Run("propagates failure", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(&failingKV{KV: persist.InMemory()})
		is.True(errors.Is(s.ClearAll(ctx), errDiskFull))
	})
}

func TestStore_Decoding(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed blob reads as empty and is logged", func(t *testing.T) {
		is := is.New(t)
		kv := persist.InMemory()
		is.NoErr(kv.Set(ctx, TasksKey, []byte(`{"version":1,"data":[{"id":`)))
		var buf bytes.Buffer
		s := newTestStore(kv, WithLogger(log.New(&buf, "", 0)))

		tasks, err := s.ListTasks(ctx)
		is.NoErr(err)
		is.Equal(len(tasks), 0)
		is.True(buf.Len() > 0)
	})

	t.Run("null data reads as an empty list", func(t *testing.T) {
		is := is.New(t)
		kv := persist.InMemory()
		is.NoErr(kv.Set(ctx, TasksKey, []byte(`{"version":1,"data":null}`)))
		is.NoErr(kv.Set(ctx, HistoryKey, []byte(`{"version":1,"data":null}`)))
		s := newTestStore(kv)

		tasks, err := s.ListTasks(ctx)
		is.NoErr(err)
		is.True(tasks != nil)
		is.Equal(len(tasks), 0)
		history, err := s.ListHistory(ctx)
		is.NoErr(err)
		is.True(history != nil)
		is.Equal(len(history), 0)
	})

	t.Run("legacy records get defaults", func(t *testing.T) {
		is := is.New(t)
		kv := persist.InMemory()
		legacy := `[{"id":"a1","name":"stretch","startDate":"2026-03-01T08:00:00.000Z","color":"#2196F3","reminderEnabled":true,"completed":false}]`
		is.NoErr(kv.Set(ctx, TasksKey, []byte(legacy)))
		s := newTestStore(kv)

		tasks, err := s.ListTasks(ctx)
		is.NoErr(err)
		is.Equal(len(tasks), 1)
		is.Equal(tasks[0].Name, "stretch")
		is.Equal(tasks[0].Times, []string{})
		is.True(tasks[0].CurrentSupply == nil)
	})

	t.Run("field names on the wire", func(t *testing.T) {
		is := is.New(t)
		v := vitamins()
		v.ID = "a1"
		v.CurrentSupply = Count(3)
		v.EnergyAt = Count(1)
		v.EnergyReminder = true
		bs, err := json.Marshal(v)
		is.NoErr(err)
		var m map[string]interface{}
		is.NoErr(json.Unmarshal(bs, &m))
		for _, key := range []string{"id", "name", "times", "startDate", "color", "reminderEnabled", "completed", "currentSupply", "EnergyAt", "EnergyReminder"} {
			_, ok := m[key]
			is.True(ok) // missing key
		}

		bs, err = json.Marshal(EffortHistory{ID: "h1", TaskID: "a1", Timestamp: now, Completed: true})
		is.NoErr(err)
		m = nil
		is.NoErr(json.Unmarshal(bs, &m))
		for _, key := range []string{"id", "taskId", "timestamp", "Completed"} {
			_, ok := m[key]
			is.True(ok) // missing key
		}
	})

	t.Run("round trip through the persisted format", func(t *testing.T) {
		is := is.New(t)
		a := vitamins()
		a.ID = "a"
		b := vitamins()
		b.ID = "b"
		b.Name = "inhaler"
		b.Times = []string{}
		b.CurrentSupply = Count(0)
		b.EnergyAt = Count(10)
		b.EnergyReminder = true
		b.Completed = true
		in := []Task{a, b}

		bs, err := persist.Encode(in)
		is.NoErr(err)
		var out []Task
		_, err = persist.Decode(bs, &out)
		is.NoErr(err)
		is.Equal(out, in)
	})
}

func TestStore_SetCompletedAndRefill(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(persist.InMemory())
	task, _ := s.AddTask(ctx, vitamins())

	t.Run("set completed", func(t *testing.T) {
		is := is.New(t)
		found, err := s.SetCompleted(ctx, task.ID, true)
		is.NoErr(err)
		is.True(found)
		got, _ := s.GetTask(ctx, task.ID)
		is.True(got.Completed)

		found, err = s.SetCompleted(ctx, "ghost", true)
		is.NoErr(err)
		is.True(!found)
	})

	t.Run("refill starts and grows the supply", func(t *testing.T) {
		is := is.New(t)
		got, err := s.Refill(ctx, task.ID, 10)
		is.NoErr(err)
		is.Equal(*got.CurrentSupply, 10)
		got, err = s.Refill(ctx, task.ID, 5)
		is.NoErr(err)
		is.Equal(*got.CurrentSupply, 15)
	})

	t.Run("refill errors", func(t *testing.T) {
		is := is.New(t)
		_, err := s.Refill(ctx, task.ID, -1)
		is.Equal(err, ErrNegativeAmount)
		_, err = s.Refill(ctx, "ghost", 1)
		is.Equal(err, ErrNotFound)
	})

	t.Run("refill refuses to overflow", func(t *testing.T) {
		is := is.New(t)
		full := vitamins()
		full.CurrentSupply = Count(math.MaxInt)
		full, err := s.AddTask(ctx, full)
		is.NoErr(err)

		_, err = s.Refill(ctx, full.ID, 1)
		is.Equal(err, ErrSupplyOverflow)
		got, _ := s.GetTask(ctx, full.ID)
		is.Equal(*got.CurrentSupply, math.MaxInt)

		got, err = s.Refill(ctx, full.ID, 0)
		is.NoErr(err)
		is.Equal(*got.CurrentSupply, math.MaxInt)
	})
}

func TestStore_DailyProgress(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(persist.InMemory())

	started, _ := s.AddTask(ctx, vitamins()) // 2 slots
	later := vitamins()
	later.StartDate = now.AddDate(0, 0, 3)
	s.AddTask(ctx, later) // not started yet

	s.RecordEffort(ctx, started.ID, true, now)
	s.RecordEffort(ctx, started.ID, false, now)
	s.RecordEffort(ctx, started.ID, true, now.AddDate(0, 0, -1))

	p, err := s.DailyProgress(ctx)
	is.NoErr(err)
	is.Equal(p, Progress{Scheduled: 2, Completed: 1})
	is.Equal(p.Ratio(), 0.5)
	is.Equal(Progress{}.Ratio(), 0.0)
	is.Equal(Progress{Scheduled: 1, Completed: 3}.Ratio(), 1.0)
}
