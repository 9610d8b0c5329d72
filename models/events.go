package models

// Event names for the interactive session layer.
const (
	EventLocationSet   = "location-set"
	EventSearchResults = "search-results"
	EventBrowserClosed = "browser-closed"
	EventError         = "error"
)

// Event is one interactive-protocol notification. Exactly one of the
// payload fields relevant to Name is populated.
type Event struct {
	Name     string    `json:"event"`
	Service  string    `json:"svc"`
	Location string    `json:"loc,omitempty"`
	Query    string    `json:"q,omitempty"`
	Products []Product `json:"products,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// EventSink receives interactive-protocol events. Implementations must be
// safe for concurrent use.
type EventSink interface {
	Publish(evt Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(Event) {}
