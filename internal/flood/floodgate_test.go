package flood

import (
	"testing"
	"time"
)

func TestFloodgate_AllowsUpToLimit(t *testing.T) {
	fg := New(3)
	defer fg.Stop()

	for i := 0; i < 3; i++ {
		if !fg.CheckMessage("chat1", "user1") {
			t.Errorf("Message %d should be allowed", i+1)
		}
	}

	if fg.CheckMessage("chat1", "user1") {
		t.Error("4th message should be blocked")
	}
}

func TestFloodgate_WindowSlides(t *testing.T) {
	fg := New(2)
	defer fg.Stop()

	if !fg.CheckMessage("chat1", "user1") {
		t.Error("First message should be allowed")
	}
	if !fg.CheckMessage("chat1", "user1") {
		t.Error("Second message should be allowed")
	}
	if fg.CheckMessage("chat1", "user1") {
		t.Error("Third message should be blocked")
	}

	// Age the recorded hits past the window instead of sleeping.
	fg.mu.Lock()
	sw := fg.senders["chat1:user1"]
	past := time.Now().Add(-61 * time.Second)
	for i := range sw.hits {
		sw.hits[i] = past
	}
	fg.mu.Unlock()

	if !fg.CheckMessage("chat1", "user1") {
		t.Error("Message after window slide should be allowed")
	}
}

func TestFloodgate_LimitsArePerSenderPerChat(t *testing.T) {
	fg := New(2)
	defer fg.Stop()

	for i := 0; i < 2; i++ {
		if !fg.CheckMessage("chat1", "user1") {
			t.Errorf("Message %d in chat1 should be allowed", i+1)
		}
		if !fg.CheckMessage("chat2", "user1") {
			t.Errorf("Message %d in chat2 should be allowed", i+1)
		}
		if !fg.CheckMessage("chat1", "user2") {
			t.Errorf("Message %d from user2 should be allowed", i+1)
		}
	}

	if fg.CheckMessage("chat1", "user1") {
		t.Error("Extra message from user1 in chat1 should be blocked")
	}
	if fg.CheckMessage("chat2", "user1") {
		t.Error("Extra message from user1 in chat2 should be blocked")
	}
	if fg.CheckMessage("chat1", "user2") {
		t.Error("Extra message from user2 in chat1 should be blocked")
	}
}

func TestFloodgate_ZeroLimitBlocksEverything(t *testing.T) {
	fg := New(0)
	defer fg.Stop()

	if fg.CheckMessage("chat1", "user1") {
		t.Error("Message should be blocked with zero limit")
	}
}

func TestFloodgate_SweepEvictsStaleSenders(t *testing.T) {
	fg := New(1)
	defer fg.Stop()

	fg.CheckMessage("chat1", "user1")
	fg.CheckMessage("chat2", "user2")

	fg.mu.Lock()
	fg.senders["chat1:user1"].lastSeen = time.Now().Add(-11 * time.Minute)
	fg.mu.Unlock()

	fg.sweep()

	fg.mu.Lock()
	_, stale := fg.senders["chat1:user1"]
	_, fresh := fg.senders["chat2:user2"]
	fg.mu.Unlock()

	if stale {
		t.Error("Stale sender should have been evicted")
	}
	if !fresh {
		t.Error("Fresh sender should have been kept")
	}
}

func TestFloodgate_ConcurrentAccess(t *testing.T) {
	fg := New(10)
	defer fg.Stop()

	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 5; j++ {
				fg.CheckMessage("chat1", "user1")
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if !fg.CheckMessage("chat1", "user2") {
		t.Error("Different sender should still be allowed")
	}
}
