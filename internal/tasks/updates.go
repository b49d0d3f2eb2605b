package tasks

import (
	"fmt"
	"time"
)

// Update reports listener activity to the CLI or UI layer.
type Update struct {
	Phase      Phase
	Collection string
	Count      int   // Snapshot size after a refresh
	Err        error // Set for Failed
	At         time.Time
}

// Phase of a subscription.
type Phase int

const (
	Subscribed Phase = iota
	Refreshed
	Invalidated
	Failed
	Closed
)

func (p Phase) String() string {
	switch p {
	case Subscribed:
		return "subscribed"
	case Refreshed:
		return "refreshed"
	case Invalidated:
		return "invalidated"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return ""
	}
}

// Message is a human-readable summary for display.
func (u Update) Message() string {
	switch u.Phase {
	case Subscribed:
		return fmt.Sprintf("Listening for %s changes", u.Collection)
	case Refreshed:
		return fmt.Sprintf("Refreshed %s (%d items)", u.Collection, u.Count)
	case Invalidated:
		return fmt.Sprintf("%s changed", u.Collection)
	case Failed:
		return fmt.Sprintf("Failed to refresh %s: %v", u.Collection, u.Err)
	case Closed:
		return fmt.Sprintf("Stopped listening for %s", u.Collection)
	default:
		return ""
	}
}

func subscribedUpdate(collection string) Update {
	return Update{Phase: Subscribed, Collection: collection, At: time.Now()}
}

func refreshedUpdate(collection string, count int) Update {
	return Update{Phase: Refreshed, Collection: collection, Count: count, At: time.Now()}
}

func invalidatedUpdate(collection string) Update {
	return Update{Phase: Invalidated, Collection: collection, At: time.Now()}
}

func failedUpdate(collection string, err error) Update {
	return Update{Phase: Failed, Collection: collection, Err: err, At: time.Now()}
}

func closedUpdate(collection string) Update {
	return Update{Phase: Closed, Collection: collection, At: time.Now()}
}
