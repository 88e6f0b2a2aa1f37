// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DefaultTopic carries profile events.
const DefaultTopic = "profile.events"

// EventType identifies a profile mutation.
type EventType string

// Profile event types.
const (
	TypeLiked       EventType = "liked"
	TypeUnliked     EventType = "unliked"
	TypeWatched     EventType = "watched"
	TypeUnwatched   EventType = "unwatched"
	TypeWatchlisted EventType = "watchlisted"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case TypeLiked, TypeUnliked, TypeWatched, TypeUnwatched, TypeWatchlisted:
		return true
	}
	return false
}

// ProfileEvent records one change to a user profile.
type ProfileEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	MovieID    int64     `json:"movie_id"`
	Title      string    `json:"title,omitempty"`
	GenreCount int       `json:"genre_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProfileEvent returns an event with a fresh id and the current time.
func NewProfileEvent(t EventType, userID string, movieID int64) ProfileEvent {
	return ProfileEvent{
		ID:         uuid.New().String(),
		Type:       t,
		UserID:     userID,
		MovieID:    movieID,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks required fields.
func (e *ProfileEvent) Validate() error {
	if e.ID == "" {
		return errors.New("event id is required")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.UserID == "" {
		return errors.New("user id is required")
	}
	if e.MovieID <= 0 {
		return fmt.Errorf("invalid movie id %d", e.MovieID)
	}
	return nil
}

// Metadata keys set on every message.
const (
	metaEventType = "event_type"
	metaUserID    = "user_id"
	metaMovieID   = "movie_id"
)

// ToMessage serializes e into a watermill message keyed by the event id.
func ToMessage(e *ProfileEvent) (*message.Message, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(e.ID, data)
	msg.Metadata.Set(metaEventType, string(e.Type))
	msg.Metadata.Set(metaUserID, e.UserID)
	msg.Metadata.Set(metaMovieID, strconv.FormatInt(e.MovieID, 10))
	return msg, nil
}

// FromMessage decodes a profile event from msg.
func FromMessage(msg *message.Message) (*ProfileEvent, error) {
	var e ProfileEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return &e, nil
}
