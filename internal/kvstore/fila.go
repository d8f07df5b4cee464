package kvstore

import (
	"context"
	"encoding/json"
	"errors"
)

// filaKey holds the ordered list of fleet numbers waiting for a ramp.
const filaKey = "fila-frotas"

// FleetQueue is an ordered queue of fleet numbers stored durably in
// the key-value store.
type FleetQueue struct {
	store Store
}

func NewFleetQueue(store Store) *FleetQueue {
	return &FleetQueue{store: store}
}

// List returns the queue in order. An absent key is an empty queue.
func (q *FleetQueue) List(ctx context.Context) ([]string, error) {
	raw, err := q.store.Get(ctx, ScopeDurable, filaKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var numeros []string
	if err := json.Unmarshal([]byte(raw), &numeros); err != nil {
		return nil, err
	}
	return numeros, nil
}

// Push appends a fleet number unless it is already queued.
func (q *FleetQueue) Push(ctx context.Context, numero string) error {
	numeros, err := q.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range numeros {
		if n == numero {
			return nil
		}
	}
	return q.save(ctx, append(numeros, numero))
}

// Remove drops a fleet number from the queue, preserving order.
func (q *FleetQueue) Remove(ctx context.Context, numero string) error {
	numeros, err := q.List(ctx)
	if err != nil {
		return err
	}
	out := numeros[:0]
	for _, n := range numeros {
		if n != numero {
			out = append(out, n)
		}
	}
	return q.save(ctx, out)
}

func (q *FleetQueue) save(ctx context.Context, numeros []string) error {
	if len(numeros) == 0 {
		return q.store.Delete(ctx, ScopeDurable, filaKey)
	}
	raw, err := json.Marshal(numeros)
	if err != nil {
		return err
	}
	return q.store.Set(ctx, ScopeDurable, filaKey, string(raw))
}
