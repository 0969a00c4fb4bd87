package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestEncode(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	msg, err := encode(PhotosUploaded{
		FamilyID:   "f1",
		AlbumID:    "a1",
		UploadedBy: "u1",
		PhotoIDs:   []string{"p1", "p2"},
		UploadedAt: at,
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if msg.DeliveryMode != amqp.Persistent {
		t.Error("messages must be persistent")
	}
	if msg.ContentType != "application/json" {
		t.Errorf("ContentType = %q", msg.ContentType)
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	for _, key := range []string{"family_id", "album_id", "uploaded_by", "photo_ids", "uploaded_at"} {
		if _, ok := body[key]; !ok {
			t.Errorf("body missing %q: %s", key, msg.Body)
		}
	}
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	if err := p.PublishPhotosUploaded(context.Background(), PhotosUploaded{}); err != nil {
		t.Errorf("Noop publish = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Noop close = %v", err)
	}
}

type fakeChannel struct {
	closed    bool
	published int
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.closed {
		return amqp.ErrClosed
	}
	c.published++
	return nil
}

func (c *fakeChannel) IsClosed() bool { return c.closed }

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPReopensClosedChannel(t *testing.T) {
	first := &fakeChannel{}
	var opened []*fakeChannel
	a := &AMQP{
		queue: DefaultQueue,
		ch:    first,
		open: func() (channel, error) {
			ch := &fakeChannel{}
			opened = append(opened, ch)
			return ch, nil
		},
	}
	event := PhotosUploaded{FamilyID: "f1", AlbumID: "a1", PhotoIDs: []string{"p1"}, UploadedAt: time.Now()}

	if err := a.PublishPhotosUploaded(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	first.closed = true
	for i := 0; i < 2; i++ {
		if err := a.PublishPhotosUploaded(context.Background(), event); err != nil {
			t.Fatalf("publish after channel close failed: %v", err)
		}
	}

	if first.published != 1 {
		t.Errorf("first channel published %d messages, want 1", first.published)
	}
	if len(opened) != 1 || opened[0].published != 2 {
		t.Errorf("expected one reopened channel carrying 2 messages, got %d channels", len(opened))
	}
}

func TestAMQPReopenFailure(t *testing.T) {
	refused := errors.New("connection closed")
	a := &AMQP{
		queue: DefaultQueue,
		ch:    &fakeChannel{closed: true},
		open:  func() (channel, error) { return nil, refused },
	}
	err := a.PublishPhotosUploaded(context.Background(), PhotosUploaded{UploadedAt: time.Now()})
	if !errors.Is(err, refused) {
		t.Errorf("publish = %v, want wrapped %v", err, refused)
	}
}
