package review

type EventKind string

const (
	EventStart    EventKind = "start"
	EventFragment EventKind = "fragment"
	EventDone     EventKind = "done"
	EventFailed   EventKind = "failed"
)

// Event is emitted for every step of an invocation. For EventFragment Text is
// the new fragment; for EventDone and EventFailed it is the buffer so far.
type Event struct {
	Kind     EventKind
	Index    int
	Criteria []string
	Text     string
	Err      error
}

// Sink consumes events synchronously, in order.
type Sink func(Event)

func Discard(Event) {}
