// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wingedpig/overseer/internal/bus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientMessage is what a connected client may send: a pattern to add or
// drop from its live subscription set. Overseer does not persist
// subscriptions across reconnects — a client starts over on every
// connect.
type clientMessage struct {
	Subscribe   string `json:"subscribe"`
	Unsubscribe string `json:"unsubscribe"`
}

// serverMessage is every event this handler relays to the client.
type serverMessage struct {
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// wsSubscriber tracks one connection's live pattern set and the
// underlying bus subscription backing it, re-subscribing whenever the
// client adds or drops a pattern.
type wsSubscriber struct {
	b *bus.Bus

	mu       sync.Mutex
	patterns map[string]bool
	subID    bus.SubscriptionID
	ch       <-chan bus.BroadcastEvent
	changed  chan struct{} // signaled on every resubscribe, to wake a select blocked on the old channel
}

func newWSSubscriber(b *bus.Bus) (*wsSubscriber, error) {
	s := &wsSubscriber{b: b, patterns: map[string]bool{"*": true}, changed: make(chan struct{}, 1)}
	if err := s.resubscribe(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *wsSubscriber) resubscribe() error {
	patterns := make([]string, 0, len(s.patterns))
	for p := range s.patterns {
		patterns = append(patterns, p)
	}
	id, ch, err := s.b.SubscribeAsync(patterns, bus.DefaultCapacity)
	if err != nil {
		return err
	}
	s.subID = id
	s.ch = ch
	select {
	case s.changed <- struct{}{}:
	default:
	}
	return nil
}

func (s *wsSubscriber) add(pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patterns[pattern] {
		return nil
	}
	s.patterns[pattern] = true
	s.b.Unsubscribe(s.subID)
	return s.resubscribe()
}

func (s *wsSubscriber) remove(pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.patterns[pattern] {
		return nil
	}
	delete(s.patterns, pattern)
	s.b.Unsubscribe(s.subID)
	return s.resubscribe()
}

func (s *wsSubscriber) events() <-chan bus.BroadcastEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch
}

func (s *wsSubscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.b.Unsubscribe(s.subID)
}

// eventsWebSocket upgrades GET /ws/events and streams every matching
// broadcast as {"event_type":…, "payload":…} until the client
// disconnects, driving subscribe/unsubscribe control messages and
// ping/pong keepalive the same way the teacher's EventHandler.WebSocket
// does.
func eventsWebSocket(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sub, err := newWSSubscriber(deps.Bus)
		if err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()})
			return
		}
		defer sub.close()

		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var msg clientMessage
				if err := json.Unmarshal(data, &msg); err != nil {
					continue
				}
				if msg.Subscribe != "" {
					_ = sub.add(msg.Subscribe)
				}
				if msg.Unsubscribe != "" {
					_ = sub.remove(msg.Unsubscribe)
				}
			}
		}()

		pingTicker := time.NewTicker(54 * time.Second)
		defer pingTicker.Stop()

		for {
			ch := sub.events()
			select {
			case event, ok := <-ch:
				if !ok {
					if ch != sub.events() {
						continue // the replaced channel was closed by a resubscribe
					}
					return
				}
				if deps.Bus.Lagged(sub.subID) > 0 {
					log.Printf("httpapi: ws client lagging on subscription %d", sub.subID)
				}
				out := serverMessage{EventType: event.EventType, Payload: event.Payload}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-pingTicker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-sub.changed:
				// Subscription was torn down and rebuilt; loop back around
				// so the next receive reads from sub.events()'s new channel
				// instead of blocking on the one it replaced.
				continue
			case <-done:
				return
			}
		}
	}
}
