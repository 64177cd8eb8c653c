// Package realtime broadcasts record changes so that open list views can
// reload the affected kind.
package realtime

import (
	"context"
	"time"

	"github.com/meghashyamc/apotek/db"
)

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

type Change struct {
	Kind db.Kind   `json:"kind"`
	ID   string    `json:"id"`
	Op   Op        `json:"op"`
	At   time.Time `json:"at"`
}

// Hub delivers each published change to the subscribers of its kind.
type Hub interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe delivers changes of kind on the returned channel. Call the
	// returned cancel function to unsubscribe and close the channel.
	Subscribe(ctx context.Context, kind db.Kind) (<-chan Change, func(), error)
	Close() error
}

const subscriberBuffer = 16

func channelName(kind db.Kind) string {
	return "records:" + string(kind)
}
