package conversation

import "github.com/oggyb/muzz-chat/internal/db"

// Generation exposes the current activation for late-delivery tests.
func (c *Channel) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// DeliverAs replays a subscription callback that was started under gen.
func (c *Channel) DeliverAs(gen uint64, m db.Message) {
	c.deliver(gen, m)
}
