// Package seed provides the initial events list. The application treats
// events as read-only reference data; this is the only writer.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/eventlog-app/eventlog/internal/model"
	"github.com/eventlog-app/eventlog/internal/repository"
)

//go:embed events.json
var eventsJSON []byte

// Events decodes the embedded seed list.
func Events() ([]model.Event, error) {
	var events []model.Event
	if err := json.Unmarshal(eventsJSON, &events); err != nil {
		return nil, fmt.Errorf("decode seed events: %w", err)
	}
	return events, nil
}

// EnsureEvents writes the seed list once, the first time the store starts
// empty. An already-populated (even empty-list) events key is left alone.
func EnsureEvents(ctx context.Context, events *repository.EventRepository) error {
	seeded, err := events.Seeded(ctx)
	if err != nil {
		return err
	}
	if seeded {
		return nil
	}
	list, err := Events()
	if err != nil {
		return err
	}
	return events.Put(ctx, list)
}
