package driver

import "time"

// Status captures the progress state of one literal.
type Status string

const (
	// StatusQueued indicates the literal is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the literal is being encoded.
	StatusWorking Status = "working"
	// StatusDone indicates the literal encoded cleanly.
	StatusDone Status = "done"
	// StatusError indicates the literal produced diagnostics.
	StatusError Status = "error"
)

// Event reports progress for a literal.
type Event struct {
	Literal string
	Index   int
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a plain function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func notify(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
