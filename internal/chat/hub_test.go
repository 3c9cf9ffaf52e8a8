package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/tkrell/backend/internal/models"
)

func addTestClient(h *Hub, userID int64) *Client {
	client := &Client{hub: h, userID: userID, send: make(chan []byte, 16)}
	h.register <- client
	return client
}

func waitForEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("bad event payload: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubDeliversToRecipientOnly(t *testing.T) {
	h := NewHub()
	go h.Run()

	alice := addTestClient(h, 1)
	bob := addTestClient(h, 2)

	h.NotifyMessage(2, &models.Message{ID: 7, SenderID: 1, Content: "Habari Bob"})

	event := waitForEvent(t, bob)
	if event.Type != "new_message" {
		t.Errorf("event type = %q, want new_message", event.Type)
	}

	select {
	case <-alice.send:
		t.Error("sender's connection received the recipient's event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDeliversToAllConnectionsOfUser(t *testing.T) {
	h := NewHub()
	go h.Run()

	phone := addTestClient(h, 5)
	laptop := addTestClient(h, 5)

	h.NotifyMessage(5, &models.Message{ID: 1, Content: "hello"})

	waitForEvent(t, phone)
	waitForEvent(t, laptop)
}

func TestHubIsOnline(t *testing.T) {
	h := NewHub()
	go h.Run()

	if h.IsOnline(9) {
		t.Error("user 9 reported online before connecting")
	}

	client := addTestClient(h, 9)

	// Registration happens on the hub goroutine; poll briefly.
	deadline := time.Now().Add(time.Second)
	for !h.IsOnline(9) {
		if time.Now().After(deadline) {
			t.Fatal("user 9 never came online")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.unregister <- client
	deadline = time.Now().Add(time.Second)
	for h.IsOnline(9) {
		if time.Now().After(deadline) {
			t.Fatal("user 9 never went offline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
