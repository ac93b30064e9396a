// Package flood rate limits share requests per sender to keep a single user
// from monopolising the bot.
package flood

import (
	"sync"
	"time"
)

const (
	// window is the sliding window for the per-sender limit.
	window = time.Minute
	// sweepInterval is how often stale senders are evicted.
	sweepInterval = 10 * time.Minute
	// staleAfter is how long a sender may stay idle before eviction.
	staleAfter = 10 * time.Minute
)

// Floodgate applies a sliding-window rate limit per sender per chat.
type Floodgate struct {
	limit   int
	mu      sync.Mutex
	senders map[string]*senderWindow
	done    chan struct{}
}

type senderWindow struct {
	hits     []time.Time
	lastSeen time.Time
}

// New creates a Floodgate allowing limit messages per sender per minute.
func New(limit int) *Floodgate {
	fg := &Floodgate{
		limit:   limit,
		senders: make(map[string]*senderWindow),
		done:    make(chan struct{}),
	}

	go fg.sweepLoop()

	return fg
}

// Stop ends the background eviction loop.
func (fg *Floodgate) Stop() {
	close(fg.done)
}

// CheckMessage reports whether a message from userID in chatID may be
// processed, and counts it against the limit if so.
func (fg *Floodgate) CheckMessage(chatID, userID string) bool {
	key := chatID + ":" + userID
	now := time.Now()

	fg.mu.Lock()
	defer fg.mu.Unlock()

	sw, ok := fg.senders[key]
	if !ok {
		sw = &senderWindow{hits: make([]time.Time, 0, fg.limit+1)}
		fg.senders[key] = sw
	}
	sw.lastSeen = now

	// Drop hits that slid out of the window.
	cutoff := now.Add(-window)
	kept := sw.hits[:0]
	for _, hit := range sw.hits {
		if hit.After(cutoff) {
			kept = append(kept, hit)
		}
	}
	sw.hits = kept

	if len(sw.hits) >= fg.limit {
		return false
	}

	sw.hits = append(sw.hits, now)
	return true
}

func (fg *Floodgate) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.sweep()
		case <-fg.done:
			return
		}
	}
}

// sweep evicts senders idle for longer than staleAfter.
func (fg *Floodgate) sweep() {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	cutoff := time.Now().Add(-staleAfter)
	for key, sw := range fg.senders {
		if sw.lastSeen.Before(cutoff) {
			delete(fg.senders, key)
		}
	}
}
