package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/td0m/rememo/pkg/persist"
	"github.com/td0m/rememo/pkg/task"
)

var (
	years   = flag.Int("years", 10, "Years of history to generate")
	perDay  = flag.Int("per-day", 6, "Efforts recorded per day")
	ntasks  = flag.Int("tasks", 20, "Number of tasks")
	backend = flag.String("backend", "file", "file or sqlite")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "rememo-size")
	check(err)
	defer os.RemoveAll(dir)

	var kv persist.KV
	switch *backend {
	case "sqlite":
		db, err := persist.InSQLite(filepath.Join(dir, "rememo.db"))
		check(err)
		defer db.Close()
		kv = db
	default:
		kv, err = persist.InDir(dir)
		check(err)
	}
	store := task.NewStore(kv)

	start := time.Now().AddDate(-*years, 0, 0)
	ids := make([]task.ID, *ntasks)
	for i := range ids {
		t, err := store.AddTask(ctx, task.Task{
			Name:            fmt.Sprintf("task %d", i),
			Times:           []string{"09:00", "21:00"},
			StartDate:       start,
			ReminderEnabled: true,
		})
		check(err)
		ids[i] = t.ID
	}

	// build the history in memory, recording one effort at a time would rewrite the blob each call
	total := 365 * *perDay * *years
	history := make([]task.EffortHistory, total)
	for i := range history {
		history[i] = task.EffortHistory{
			ID:        task.NewID(),
			TaskID:    ids[i%len(ids)],
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour / time.Duration(*perDay)),
			Completed: i%5 != 0,
		}
	}

	var bs []byte
	writeTime := measureTime(func() {
		bs, err = persist.Encode(history)
		check(err)
		check(kv.Set(ctx, task.HistoryKey, bs))
	})

	var today []task.EffortHistory
	readTime := measureTime(func() {
		today, err = store.ListTodaysHistory(ctx)
		check(err)
	})

	appendTime := measureTime(func() {
		_, err := store.RecordEffort(ctx, ids[0], true, time.Now())
		check(err)
	})

	fmt.Printf("History: %d years, %d per day (%d total, %d today)\n", *years, *perDay, total, len(today))
	fmt.Printf("Blob size: %dKB\n", len(bs)/1024)
	fmt.Printf("Write time: %dms\n", writeTime.Milliseconds())
	fmt.Printf("Read time: %dms\n", readTime.Milliseconds())
	fmt.Printf("Append time: %dms\n", appendTime.Milliseconds())
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func measureTime(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}
