package hub

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/pawn"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
)

// Broadcaster listens for pawn snapshots and broadcasts them to the hub.
type Broadcaster struct {
	hub       *Hub
	logger    *zap.Logger
	changes   <-chan pawn.Snapshot
	interval  time.Duration
	lastState pawn.Snapshot
	seq       int64
	// initial lets SendInitialState read lastState and seq on the Run
	// goroutine, which owns them.
	initial chan chan []byte
	done    chan struct{}
}

func NewBroadcaster(h *Hub, changes <-chan pawn.Snapshot, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		hub:      h,
		logger:   logger,
		changes:  changes,
		interval: fullSyncInterval,
		initial:  make(chan chan []byte),
		done:     make(chan struct{}),
	}
}

// SetFullSyncInterval changes how often a full state is pushed while a
// session is active. Must be called before Run.
func (b *Broadcaster) SetFullSyncInterval(d time.Duration) {
	if d > 0 {
		b.interval = d
	}
}

// Run starts the broadcaster loop until the snapshot channel closes or ctx
// is done. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	defer close(b.done)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	var deltaCount int64

	for {
		select {
		case <-ctx.Done():
			return

		case state, ok := <-b.changes:
			if !ok {
				return
			}

			prev := b.lastState
			b.lastState = state

			switch {
			case state.Active && (!prev.Active || state.Session != prev.Session):
				b.seq++
				b.broadcast(NewEventMessage(b.seq, EventSessionStarted, &state))
				deltaCount = 0
				continue
			case !state.Active && prev.Active:
				b.seq++
				b.broadcast(NewEventMessage(b.seq, EventSessionEnded, &state))
				continue
			case !state.Changed():
				continue
			}

			b.seq++
			deltaCount++

			// Send full sync periodically
			if deltaCount >= deltaCountSync {
				b.broadcast(NewFullMessage(b.seq, &state))
				deltaCount = 0
			} else {
				b.broadcast(NewDeltaMessage(b.seq, &state))
			}

		case <-ticker.C:
			if b.lastState.Active {
				b.seq++
				state := b.lastState
				b.broadcast(NewFullMessage(b.seq, &state))
			}

		case reply := <-b.initial:
			b.seq++
			state := b.lastState
			reply <- b.marshal(NewFullMessage(b.seq, &state))
		}
	}
}

// SendInitialState sends the current full state to a newly connected client.
func (b *Broadcaster) SendInitialState(ctx context.Context, c *Client) {
	reply := make(chan []byte, 1)
	select {
	case b.initial <- reply:
	case <-b.done:
		return
	case <-ctx.Done():
		return
	}
	data := <-reply
	if data == nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (b *Broadcaster) marshal(msg *WSMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("error marshaling message", zap.String("type", msg.Type), zap.Error(err))
		return nil
	}
	return data
}

func (b *Broadcaster) broadcast(msg *WSMessage) {
	if data := b.marshal(msg); data != nil {
		b.hub.Broadcast(data)
	}
}
