package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// eventRecord is the wire form of one "item changed" notification in an
// event file: a kind discriminator plus the kind's payload.
type eventRecord struct {
	Kind string          `json:"kind"`
	At   time.Time       `json:"at,omitempty"`
	Item json.RawMessage `json:"item"`
}

// LoadEvents reads a JSON event file (an array of {kind, item} records) and
// decodes each record into its concrete catalog type.
func LoadEvents(path string) ([]Notification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	var records []eventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse event file: %w", err)
	}

	notifications := make([]Notification, 0, len(records))
	for i, record := range records {
		var item Item
		switch record.Kind {
		case "show":
			item = &Show{}
		case "season":
			item = &Season{}
		case "episode":
			item = &Episode{}
		case "movie":
			item = &Movie{}
		default:
			return nil, fmt.Errorf("event %d: unknown kind %q", i, record.Kind)
		}
		if err := json.Unmarshal(record.Item, item); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		at := record.At
		if at.IsZero() {
			at = time.Now()
		}
		notifications = append(notifications, Notification{Item: item, At: at})
	}
	return notifications, nil
}
