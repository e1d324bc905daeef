package infra

// EventType represents the type of event in the rating pipeline
type EventType int

const (
	SessionCompleted EventType = iota
	SessionRated
	SessionRatingFailed
	InvoiceLineRecorded
)

// String returns the string representation of the EventType
func (et EventType) String() string {
	switch et {
	case SessionCompleted:
		return "SessionCompleted"
	case SessionRated:
		return "SessionRated"
	case SessionRatingFailed:
		return "SessionRatingFailed"
	case InvoiceLineRecorded:
		return "InvoiceLineRecorded"
	default:
		return "Unknown"
	}
}

type Event interface{ EventType() EventType }
type Handler func(Event)

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine. It is not safe for concurrent Subscribe.
type Bus struct{ subs map[EventType][]Handler }

func NewBus() *Bus { return &Bus{subs: map[EventType][]Handler{}} }
func (b *Bus) Publish(e Event) {
	for _, h := range b.subs[e.EventType()] {
		h(e)
	}
}
func (b *Bus) Subscribe(evt EventType, h Handler) { b.subs[evt] = append(b.subs[evt], h) }

// Subscribers returns how many handlers are registered for evt.
func (b *Bus) Subscribers(evt EventType) int { return len(b.subs[evt]) }
