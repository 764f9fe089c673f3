package notify

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/td0m/rememo/pkg/persist"
)

func TestLocal_Fire(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	l := newLocal()
	_, err := l.RequestPermission(ctx)
	is.NoErr(err)

	daily, err := l.Schedule(ctx, Content{Title: "daily"}, &Daily{Hour: 13, Minute: 0})
	is.NoErr(err)
	_, err = l.Schedule(ctx, Content{Title: "now"}, nil)
	is.NoErr(err)

	t.Run("immediate fires once", func(t *testing.T) {
		is := is.New(t)
		ds, err := l.Fire(ctx, now)
		is.NoErr(err)
		is.Equal(len(ds), 1)
		is.Equal(ds[0].Content.Title, "now")
		is.Equal(ds[0].Handler, Handler{ShowAlert: true})

		ds, err = l.Fire(ctx, now)
		is.NoErr(err)
		is.Equal(len(ds), 0)
	})

	t.Run("daily moves to the next day", func(t *testing.T) {
		is := is.New(t)
		at := time.Date(2026, 3, 10, 13, 0, 30, 0, time.UTC)
		ds, err := l.Fire(ctx, at)
		is.NoErr(err)
		is.Equal(len(ds), 1)
		is.Equal(ds[0].ID, daily)

		all, _ := l.ListScheduled(ctx)
		is.Equal(len(all), 1)
		is.Equal(all[0].Next, time.Date(2026, 3, 11, 13, 0, 0, 0, time.UTC))
	})

	t.Run("missed days fire once", func(t *testing.T) {
		is := is.New(t)
		at := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
		ds, err := l.Fire(ctx, at)
		is.NoErr(err)
		is.Equal(len(ds), 1)
		all, _ := l.ListScheduled(ctx)
		is.Equal(all[0].Next, time.Date(2026, 3, 15, 13, 0, 0, 0, time.UTC))
	})
}

func TestLocal_FireWithoutPermission(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	l := NewLocal(persist.InMemory(), LocalClock(func() time.Time { return now }), PromptAnswer(Denied))
	l.RequestPermission(ctx)
	l.Schedule(ctx, Content{Title: "now"}, nil)

	ds, err := l.Fire(ctx, now)
	is.NoErr(err)
	is.Equal(len(ds), 0)
	all, _ := l.ListScheduled(ctx)
	is.Equal(len(all), 0) // dropped, not queued
}

func TestLocal_SharedState(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	kv := persist.InMemory()
	scheduler := NewLocal(kv)
	id, err := scheduler.Schedule(ctx, Content{Title: "x"}, &Daily{Hour: 8, Minute: 15})
	is.NoErr(err)

	deliverer := NewLocal(kv)
	all, err := deliverer.ListScheduled(ctx)
	is.NoErr(err)
	is.Equal(len(all), 1)
	is.Equal(all[0].ID, id)
}

func TestLocal_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel unknown id", func(t *testing.T) {
		is := is.New(t)
		is.Equal(newLocal().Cancel(ctx, "nope"), ErrUnknown)
	})

	t.Run("invalid trigger", func(t *testing.T) {
		is := is.New(t)
		_, err := newLocal().Schedule(ctx, Content{}, &Daily{Hour: 24})
		is.True(err != nil)
	})

	t.Run("token needs permission", func(t *testing.T) {
		is := is.New(t)
		_, err := newLocal().DeliveryToken(ctx)
		is.Equal(err, ErrPermissionDenied)
	})

	t.Run("reset asks again", func(t *testing.T) {
		is := is.New(t)
		l := NewLocal(persist.InMemory(), PromptAnswer(Denied))
		l.RequestPermission(ctx)
		is.NoErr(l.Reset(ctx))
		status, err := l.PermissionStatus(ctx)
		is.NoErr(err)
		is.Equal(status, Undetermined)
	})
}

func TestLocal_Run(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	l := newLocal()
	l.RequestPermission(ctx)
	l.Schedule(ctx, Content{Title: "now"}, nil)

	got := make(chan Delivery, 1)
	done := make(chan error)
	go func() {
		done <- l.Run(ctx, 10*time.Millisecond, func(d Delivery) {
			got <- d
			cancel()
		})
	}()

	select {
	case d := <-got:
		is.Equal(d.Content.Title, "now")
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}
	is.Equal(<-done, context.Canceled)
}
