package sse

import (
	"testing"
)

func TestHubPublish(t *testing.T) {
	hub := NewHub(nil)
	a := &Client{ID: "a", SessionID: "s1", Events: make(chan Event, 4)}
	b := &Client{ID: "b", SessionID: "s2", Events: make(chan Event, 4)}
	hub.Register(a)
	hub.Register(b)

	hub.Publish(EventLotEdit, map[string]interface{}{"lot_id": 7, "state": "committed"})
	for _, c := range []*Client{a, b} {
		select {
		case ev := <-c.Events:
			if ev.EventType != EventLotEdit {
				t.Errorf("Unexpected event type %s", ev.EventType)
			}
			if ev.Data != `{"lot_id":7,"state":"committed"}` {
				t.Errorf("Unexpected data %s", ev.Data)
			}
		default:
			t.Fatalf("Client %s received nothing", c.ID)
		}
	}

	hub.SendToSession("s2", Event{EventType: EventRegisterReload, Data: "{}"})
	if len(a.Events) != 0 {
		t.Errorf("Session s1 must not receive s2 events")
	}
	if len(b.Events) != 1 {
		t.Errorf("Expected one event for s2, got %d", len(b.Events))
	}

	hub.Unregister("a")
	if hub.ClientCount() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.ClientCount())
	}
	if _, ok := <-a.Events; ok {
		t.Errorf("Expected channel closed after unregister")
	}
}

func TestHubSkipsFullBuffer(t *testing.T) {
	hub := NewHub(nil)
	c := &Client{ID: "c", Events: make(chan Event, 1)}
	hub.Register(c)
	hub.Broadcast(Event{EventType: "x", Data: "1"})
	hub.Broadcast(Event{EventType: "x", Data: "2"})
	if len(c.Events) != 1 {
		t.Fatalf("Expected buffered event count 1, got %d", len(c.Events))
	}
	if ev := <-c.Events; ev.Data != "1" {
		t.Errorf("Expected first event kept, got %s", ev.Data)
	}
}

func TestHubPublishToSession(t *testing.T) {
	hub := NewHub(nil)
	a := &Client{ID: "a", SessionID: "alice:tab-1", Events: make(chan Event, 4)}
	b := &Client{ID: "b", SessionID: "bob:tab-1", Events: make(chan Event, 4)}
	hub.Register(a)
	hub.Register(b)

	hub.PublishToSession("alice:tab-1", EventLotEdit, map[string]int{"lot_id": 7})
	if len(b.Events) != 0 {
		t.Fatalf("bob received alice's edit")
	}
	if ev := <-a.Events; ev.Data != `{"lot_id":7}` {
		t.Errorf("Unexpected data %s", ev.Data)
	}
}
