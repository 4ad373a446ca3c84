package realtime

import (
	"sync"

	"github.com/lalith-99/staffhub/internal/observ"
)

// Hub is the registry of which connection listens on which channel.
//
// Join, Remove and Deliver share one RWMutex. Deliver only enqueues under
// the read lock and Remove takes the write lock, so once Remove returns no
// further frame reaches the removed client.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]struct{}
	joined   map[*Client]map[string]struct{}
	metrics  *observ.Metrics
}

func NewHub(metrics *observ.Metrics) *Hub {
	return &Hub{
		channels: make(map[string]map[*Client]struct{}),
		joined:   make(map[*Client]map[string]struct{}),
		metrics:  metrics,
	}
}

// Register tracks c before it joins anything so CloseAll can reach it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.joined[c] == nil {
		h.joined[c] = make(map[string]struct{})
	}
}

// Join adds c to channel, creating the channel on first use. It reports
// false when c was already joined.
func (h *Hub) Join(c *Client, channel string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.channels[channel]
	if !ok {
		set = make(map[*Client]struct{})
		h.channels[channel] = set
	}
	if _, dup := set[c]; dup {
		return false
	}
	set[c] = struct{}{}

	if h.joined[c] == nil {
		h.joined[c] = make(map[string]struct{})
	}
	h.joined[c][channel] = struct{}{}
	return true
}

// Remove drops c from every channel it joined. Empty channels are freed.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel := range h.joined[c] {
		set := h.channels[channel]
		delete(set, c)
		if len(set) == 0 {
			delete(h.channels, channel)
		}
	}
	delete(h.joined, c)
}

// Deliver queues frame to every client on channel except the one whose id
// is skip. It returns how many clients accepted the frame; clients with a
// full queue miss it.
func (h *Hub) Deliver(channel string, frame []byte, skip string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for c := range h.channels[channel] {
		if skip != "" && c.id == skip {
			continue
		}
		ok := c.enqueue(frame)
		h.metrics.Delivered(ok)
		if ok {
			n++
		}
	}
	return n
}

// CloseAll closes every registered connection. Their read loops then
// fail and each one removes itself. It is meant for server shutdown,
// since http.Server.Shutdown does not track hijacked connections.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.joined))
	for c := range h.joined {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}

// Subscribers returns the number of clients joined to channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
