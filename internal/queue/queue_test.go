package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDeliversInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewInMemory(4)

	require.NoError(t, q.Publish(ctx, Message{Type: "a"}))
	require.NoError(t, q.Publish(ctx, Message{Type: "b"}))

	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", (<-ch).Type)
	require.Equal(t, "b", (<-ch).Type)

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestInMemoryPublishHonorsContext(t *testing.T) {
	q := NewInMemory(1)
	require.NoError(t, q.Publish(context.Background(), Message{Type: "fill"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, q.Publish(ctx, Message{Type: "overflow"}), context.DeadlineExceeded)
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: "grade.updated", Body: []byte(`{"note":"a|b"}`)}
	require.Equal(t, msg, deserialize(serialize(msg)))
	require.Equal(t, Message{Body: []byte("raw")}, deserialize("raw"))
}

func TestMutationMessage(t *testing.T) {
	m := Mutation{Entity: "student", Op: OpDeleted, ID: 4, At: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)}
	msg, err := m.Message()
	require.NoError(t, err)
	require.Equal(t, "student.deleted", msg.Type)

	back, err := DecodeMutation(msg)
	require.NoError(t, err)
	require.Equal(t, m, back)

	partial, err := DecodeMutation(Message{Type: "class.created", Body: []byte(`{"id":2}`)})
	require.NoError(t, err)
	require.Equal(t, "class", partial.Entity)
	require.Equal(t, OpCreated, partial.Op)

	_, err = DecodeMutation(Message{Type: "x", Body: []byte("nope")})
	require.Error(t, err)
}

func TestRedisQueue(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := "schooldash:test:" + time.Now().Format("150405.000")
	defer client.Del(context.Background(), key)
	q := NewRedisQueue(client, key)

	require.NoError(t, q.Publish(ctx, Message{Type: "student.created", Body: []byte(`{"id":1}`)}))
	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	got := <-ch
	require.Equal(t, "student.created", got.Type)
	require.JSONEq(t, `{"id":1}`, string(got.Body))
}
