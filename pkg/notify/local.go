package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/td0m/rememo/pkg/persist"
	"github.com/td0m/rememo/pkg/task/date"
)

// StateKey is where Local keeps its state
const StateKey = "@notifications"

var (
	ErrPermissionDenied = errors.New("notification permission not granted")
	ErrUnknown          = errors.New("no scheduled notification with that id")
	ErrInvalidTrigger   = errors.New("invalid trigger time")
)

var _ Platform = &Local{}

// Delivery is a notification that came due
type Delivery struct {
	Scheduled
	At      time.Time
	Handler Handler
}

type localState struct {
	Permission Permission  `json:"permission"`
	Token      string      `json:"token,omitempty"`
	Channels   []Channel   `json:"channels"`
	Scheduled  []Scheduled `json:"scheduled"`
}

// Local is an on-device notification platform. Its state lives in a KV so that one
// process can schedule while another one delivers
type Local struct {
	mu      sync.Mutex
	kv      persist.KV
	now     func() time.Time
	answer  Permission
	handler Handler
}

type LocalOption func(*Local)

func LocalClock(now func() time.Time) LocalOption {
	return func(l *Local) { l.now = now }
}

// PromptAnswer is what the user answers when permission is requested, Granted by default
func PromptAnswer(p Permission) LocalOption {
	return func(l *Local) { l.answer = p }
}

func NewLocal(kv persist.KV, opts ...LocalOption) *Local {
	l := &Local{
		kv:      kv,
		now:     time.Now,
		answer:  Granted,
		handler: Handler{ShowAlert: true},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) SetHandler(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
}

func (l *Local) PermissionStatus(ctx context.Context) (Permission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	return s.Permission, nil
}

// RequestPermission prompts only once, an answer sticks
func (l *Local) RequestPermission(ctx context.Context) (Permission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	if s.Permission != Undetermined {
		return s.Permission, nil
	}
	s.Permission = l.answer
	return s.Permission, l.save(ctx, s)
}

// Reset forgets the permission answer and the token
func (l *Local) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return err
	}
	s.Permission = Undetermined
	s.Token = ""
	return l.save(ctx, s)
}

func (l *Local) DeliveryToken(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	if s.Permission != Granted {
		return "", ErrPermissionDenied
	}
	if s.Token == "" {
		s.Token = "local:" + uuid.NewString()
		if err := l.save(ctx, s); err != nil {
			return "", err
		}
	}
	return s.Token, nil
}

func (l *Local) CreateChannel(ctx context.Context, c Channel) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return err
	}
	for i := range s.Channels {
		if s.Channels[i].ID == c.ID {
			s.Channels[i] = c
			return l.save(ctx, s)
		}
	}
	s.Channels = append(s.Channels, c)
	return l.save(ctx, s)
}

func (l *Local) Channels(ctx context.Context) ([]Channel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.Channels, nil
}

func (l *Local) Schedule(ctx context.Context, c Content, trigger *Daily) (string, error) {
	now := l.now()
	next := now
	if trigger != nil {
		clock := date.Clock{Hour: trigger.Hour, Minute: trigger.Minute}
		if !clock.Valid() {
			return "", fmt.Errorf("%w: %02d:%02d", ErrInvalidTrigger, trigger.Hour, trigger.Minute)
		}
		next = clock.Next(now)
		t := *trigger
		trigger = &t
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	n := Scheduled{
		ID:      uuid.NewString(),
		Content: c,
		Trigger: trigger,
		Next:    next,
	}
	s.Scheduled = append(s.Scheduled, n)
	return n.ID, l.save(ctx, s)
}

func (l *Local) ListScheduled(ctx context.Context) ([]Scheduled, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.Scheduled, nil
}

func (l *Local) Cancel(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return err
	}
	for i, n := range s.Scheduled {
		if n.ID == id {
			s.Scheduled = append(s.Scheduled[:i], s.Scheduled[i+1:]...)
			return l.save(ctx, s)
		}
	}
	return ErrUnknown
}

// Fire delivers everything due at now. Immediate notifications are removed, daily ones
// move to their next occurrence. Without permission nothing is delivered but the
// schedule still advances
func (l *Local) Fire(ctx context.Context, now time.Time) ([]Delivery, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	var (
		out  []Delivery
		kept = s.Scheduled[:0]
		due  bool
	)
	for _, n := range s.Scheduled {
		if n.Next.After(now) {
			kept = append(kept, n)
			continue
		}
		due = true
		if s.Permission == Granted {
			out = append(out, Delivery{Scheduled: n, At: now, Handler: l.handler})
		}
		if n.Trigger != nil {
			n.Next = date.Clock{Hour: n.Trigger.Hour, Minute: n.Trigger.Minute}.Next(now)
			kept = append(kept, n)
		}
	}
	if !due {
		return nil, nil
	}
	s.Scheduled = kept
	return out, l.save(ctx, s)
}

// Run calls Fire every interval and hands deliveries to deliver until ctx is done
func (l *Local) Run(ctx context.Context, interval time.Duration, deliver func(Delivery)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ds, err := l.Fire(ctx, l.now())
		if err != nil && ctx.Err() == nil {
			return err
		}
		for _, d := range ds {
			deliver(d)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Local) load(ctx context.Context) (localState, error) {
	s := localState{Permission: Undetermined, Channels: []Channel{}, Scheduled: []Scheduled{}}
	bs, err := l.kv.Get(ctx, StateKey)
	if errors.Is(err, persist.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if _, err := persist.Decode(bs, &s); err != nil {
		return s, fmt.Errorf("decode notification state: %w", err)
	}
	if s.Permission == "" {
		s.Permission = Undetermined
	}
	return s, nil
}

func (l *Local) save(ctx context.Context, s localState) error {
	bs, err := persist.Encode(s)
	if err != nil {
		return err
	}
	return l.kv.Set(ctx, StateKey, bs)
}
