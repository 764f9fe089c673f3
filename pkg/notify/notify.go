// Package notify turns a task's reminder settings into notifications registered on a
// notification platform.
package notify

import (
	"context"
	"time"
)

type Permission string

const (
	Granted      Permission = "granted"
	Denied       Permission = "denied"
	Undetermined Permission = "undetermined"
)

// payload types
const (
	TypeReminder = ""
	TypeEnergy   = "Energy"
)

// Payload is attached to every notification so that it can be matched back to its task
type Payload struct {
	TaskID string `json:"taskId"`
	Type   string `json:"type,omitempty"`
}

type Content struct {
	Title string  `json:"title"`
	Body  string  `json:"body"`
	Data  Payload `json:"data"`
}

// Daily repeats every day at the given wall-clock time
type Daily struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type Scheduled struct {
	ID      string  `json:"id"`
	Content Content `json:"content"`
	// nil for notifications shown immediately
	Trigger *Daily    `json:"trigger,omitempty"`
	Next    time.Time `json:"next"`
}

type Importance int

const (
	ImportanceDefault Importance = iota
	ImportanceHigh
	ImportanceMax
)

// Channel groups notifications on platforms that require one before delivering
type Channel struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Importance Importance `json:"importance"`
	Vibration  []int      `json:"vibration,omitempty"`
	LightColor string     `json:"lightColor,omitempty"`
}

// Handler decides how a notification that arrives in the foreground is presented
type Handler struct {
	ShowAlert bool
	PlaySound bool
	SetBadge  bool
}

// Platform is the host notification service
type Platform interface {
	PermissionStatus(ctx context.Context) (Permission, error)
	RequestPermission(ctx context.Context) (Permission, error)
	DeliveryToken(ctx context.Context) (string, error)
	CreateChannel(ctx context.Context, c Channel) error
	// Schedule with a nil trigger shows the notification immediately
	Schedule(ctx context.Context, c Content, trigger *Daily) (string, error)
	ListScheduled(ctx context.Context) ([]Scheduled, error)
	Cancel(ctx context.Context, id string) error
}

// platforms that present notifications themselves implement this
type handlerSetter interface {
	SetHandler(h Handler)
}
