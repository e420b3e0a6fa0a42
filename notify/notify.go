// Package notify carries user-facing notices (the toasts of the UI) from the
// client core to whichever surface is rendering: a web page flash, a terminal,
// or a log.
package notify

import "sync"

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Category lets a surface tell "check your network" apart from "the operation failed"
type Category string

const (
	CategoryGeneral    Category = "general"
	CategorySession    Category = "session"
	CategoryConnection Category = "connection"
	CategoryValidation Category = "validation"
)

type Notice struct {
	Level    Level
	Category Category
	Message  string
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to a Notifier
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Nop discards every notice
var Nop Notifier = NotifierFunc(func(Notice) {})

func Success(n Notifier, message string) {
	n.Notify(Notice{Level: LevelSuccess, Category: CategoryGeneral, Message: message})
}

func Info(n Notifier, message string) {
	n.Notify(Notice{Level: LevelInfo, Category: CategoryGeneral, Message: message})
}

func Error(n Notifier, message string) {
	n.Notify(Notice{Level: LevelError, Category: CategoryGeneral, Message: message})
}

// Recorder keeps notices in memory until drained. The web front-end uses one per
// request to build the page flash; tests use it to assert on notices.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Drain returns and forgets the recorded notices
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// Multi fans a notice out to several notifiers
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(n Notice) {
		for _, target := range notifiers {
			if target != nil {
				target.Notify(n)
			}
		}
	})
}
