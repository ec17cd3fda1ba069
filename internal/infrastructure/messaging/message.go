// Package messaging carries background jobs from the web process to the
// notification worker over Redis lists or Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeOrderPlaced    = "order.placed"
	TypeUserRegistered = "user.registered"
)

// Message is one job on the queue
type Message struct {
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderPlaced asks the worker to produce the invoice and confirmation email
type OrderPlaced struct {
	OrderID uint `json:"order_id"`
}

// UserRegistered asks the worker to send the account confirmation email
type UserRegistered struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

// Handler processes one message. Returned errors are logged; the message
// is not redelivered.
type Handler func(ctx context.Context, msg Message) error

// Publisher enqueues jobs
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Queue is a job queue with a blocking consumer loop
type Queue interface {
	Publisher
	// Consume runs handler on incoming messages until ctx is cancelled
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

// NewMessage encodes payload into a message of the given type
func NewMessage(msgType, key string, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}
	return Message{
		Type:      msgType,
		Key:       key,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload of msg into dest
func (m Message) Decode(dest interface{}) error {
	if err := json.Unmarshal(m.Payload, dest); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", m.Type, err)
	}
	return nil
}

// Publish builds a message and hands it to p
func Publish(ctx context.Context, p Publisher, msgType, key string, payload interface{}) error {
	msg, err := NewMessage(msgType, key, payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, msg)
}
