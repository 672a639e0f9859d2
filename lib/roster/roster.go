// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrNotObject is returned by Decode when the payload is valid JSON but
// not an object keyed by activity name.
var ErrNotObject = errors.New("roster: payload is not a JSON object")

// Activity is one entry in the roster. Name is the object key on the
// wire; the remaining fields come from the object value.
type Activity struct {
	// Name is the unique activity name (e.g., "Chess Club").
	Name string `json:"-"`

	Description string `json:"description"`

	// Schedule is free-form text chosen by the registry (e.g.,
	// "Fridays, 3:30 PM - 5:00 PM").
	Schedule string `json:"schedule"`

	// MaxParticipants is the capacity. The client never enforces it;
	// the registry rejects signups past capacity.
	MaxParticipants int `json:"max_participants"`

	// Participants is the ordered list of registered emails.
	Participants []string `json:"participants"`
}

// SpotsLeft returns MaxParticipants minus the current participant
// count. Not clamped: a negative value means the server returned an
// over-full activity, and the view shows that as-is.
func (activity Activity) SpotsLeft() int {
	return activity.MaxParticipants - len(activity.Participants)
}

// HasParticipant reports whether email is registered for the activity.
func (activity Activity) HasParticipant(email string) bool {
	for _, participant := range activity.Participants {
		if participant == email {
			return true
		}
	}
	return false
}

// Roster is the ordered set of activities.
type Roster []Activity

// Names returns the activity names in roster order.
func (roster Roster) Names() []string {
	names := make([]string, len(roster))
	for index, activity := range roster {
		names[index] = activity.Name
	}
	return names
}

// Decode parses a GET /activities response body. The payload must be a
// JSON object mapping activity name to activity record. Keys are
// visited in document order, which becomes the roster order. A null
// or missing participants field decodes as an empty list.
func Decode(data []byte) (Roster, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("roster: invalid JSON payload")
	}

	payload := gjson.ParseBytes(data)
	if !payload.IsObject() {
		return nil, ErrNotObject
	}

	roster := Roster{}
	var decodeErr error
	payload.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			decodeErr = fmt.Errorf("roster: activity %q is not an object", key.String())
			return false
		}

		var activity Activity
		if err := json.Unmarshal([]byte(value.Raw), &activity); err != nil {
			decodeErr = fmt.Errorf("roster: decoding activity %q: %w", key.String(), err)
			return false
		}
		activity.Name = key.String()
		if activity.Participants == nil {
			activity.Participants = []string{}
		}

		roster = append(roster, activity)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}

	return roster, nil
}
