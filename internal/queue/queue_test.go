package queue_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvista/ispconsole-backend/internal/queue"
)

func TestInMemoryQueueDeliversToSubscriber(t *testing.T) {
	q := queue.NewInMemoryQueue()

	var wg sync.WaitGroup
	wg.Add(1)

	var mu sync.Mutex
	var got []byte

	require.NoError(t, q.Subscribe("dispatch", func(body []byte) error {
		mu.Lock()
		got = body
		mu.Unlock()
		wg.Done()
		return nil
	}))

	require.NoError(t, q.Publish("dispatch", []byte(`{"message_id":1}`)))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the message")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []byte(`{"message_id":1}`), got)
}

func TestInMemoryQueuePublishWithoutSubscriber(t *testing.T) {
	q := queue.NewInMemoryQueue()

	assert.Error(t, q.Publish("nowhere", []byte("x")))
}
