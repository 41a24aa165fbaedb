// Package cache is the hot-state cache (C3): a short-lived, in-process
// key/value store for chat history, write-through to the metadata store.
// On a read miss it loads from the store and populates the cache; on a
// write it upserts the store first, then the cache, so a reader that sees
// a cache value is always consistent with, or ahead of, the store —
// eviction must never be observable because the store remains
// authoritative.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haasonsaas/nexus-rag/internal/store"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// entryTTL bounds how long a cached conversation is trusted before the
// next read falls through to the store. TTL is a memory-pressure knob,
// not a correctness one: the store is always re-consulted on a miss.
const entryTTL = 10 * time.Minute

type entry struct {
	conversation *models.ChatConversation
	cachedAt     time.Time
}

// ChatCache is the write-through cache for ChatConversation history,
// keyed "chat:<id>".
type ChatCache struct {
	mu    sync.RWMutex
	items map[string]entry
	chats store.ChatStore
	ttl   time.Duration
}

// New returns a ChatCache backed by chats for store reads/writes.
func New(chats store.ChatStore) *ChatCache {
	return &ChatCache{
		items: make(map[string]entry),
		chats: chats,
		ttl:   entryTTL,
	}
}

func chatKey(id string) string {
	return fmt.Sprintf("chat:%s", id)
}

// Get returns the conversation for id, loading and populating from the
// store on a miss or expiry.
func (c *ChatCache) Get(ctx context.Context, id string) (*models.ChatConversation, error) {
	if conv, ok := c.lookup(id); ok {
		return conv, nil
	}

	conv, err := c.chats.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	c.store(id, conv)
	return conv, nil
}

func (c *ChatCache) lookup(id string) (*models.ChatConversation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[chatKey(id)]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.cachedAt) > c.ttl {
		return nil, false
	}
	return cloneConversation(e.conversation), true
}

func (c *ChatCache) store(id string, conv *models.ChatConversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[chatKey(id)] = entry{conversation: cloneConversation(conv), cachedAt: time.Now()}
}

// AppendTurn appends msgs to the conversation's history: it upserts the
// store first, then write-through populates the cache with the new
// result, preserving the store-authoritative ordering the query pipeline
// depends on.
func (c *ChatCache) AppendTurn(ctx context.Context, id string, owner models.Owner, appID, endUserID string, msgs []models.Message) error {
	if err := c.chats.AppendMessages(ctx, id, owner, appID, endUserID, msgs); err != nil {
		return fmt.Errorf("append chat turn: %w", err)
	}

	conv, err := c.chats.Get(ctx, id)
	if err != nil {
		// The store write already succeeded; a populate failure here only
		// means the next read falls through to the store again.
		return nil
	}
	c.store(id, conv)
	return nil
}

// Invalidate drops a cached entry, forcing the next Get to fall through
// to the store.
func (c *ChatCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, chatKey(id))
}

func cloneConversation(conv *models.ChatConversation) *models.ChatConversation {
	if conv == nil {
		return nil
	}
	clone := *conv
	if len(conv.History) > 0 {
		clone.History = append([]models.Message{}, conv.History...)
	}
	return &clone
}
