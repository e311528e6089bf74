package membus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	mu     sync.Mutex
	topics []string
}

func (s *sink) handle(topic string, _ []byte) {
	s.mu.Lock()
	s.topics = append(s.topics, topic)
	s.mu.Unlock()
}

func (s *sink) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.topics...)
}

func TestExactSubscription(t *testing.T) {
	bus := New()
	s := &sink{}
	require.NoError(t, bus.Subscribe("openevse/status", s.handle))

	require.NoError(t, bus.Publish("openevse/status", []byte("hello")))
	require.NoError(t, bus.Publish("openevse/amp", []byte("32")))

	assert.Equal(t, []string{"openevse/status"}, s.seen())
}

func TestWildcardSubscription(t *testing.T) {
	bus := New()
	s := &sink{}
	require.NoError(t, bus.Subscribe("openevse/rapi/in/#", s.handle))

	require.NoError(t, bus.Publish("openevse/rapi/in/$SC", []byte("32")))
	require.NoError(t, bus.Publish("openevse/rapi/in/$FS", nil))
	require.NoError(t, bus.Publish("openevse/status", []byte("x")))

	assert.Equal(t, []string{"openevse/rapi/in/$SC", "openevse/rapi/in/$FS"}, s.seen())
}

func TestUnsubscribe(t *testing.T) {
	bus := New()
	s := &sink{}
	require.NoError(t, bus.Subscribe("openevse/status", s.handle))
	require.NoError(t, bus.Unsubscribe("openevse/status"))

	require.NoError(t, bus.Publish("openevse/status", []byte("gone")))
	assert.Empty(t, s.seen())
}

func TestPublishWithoutSubscribersIsNotAnError(t *testing.T) {
	bus := New()
	assert.NoError(t, bus.Publish("openevse/status", []byte("nobody home")))
}

func TestCloseDropsSubscriptions(t *testing.T) {
	bus := New()
	s := &sink{}
	require.NoError(t, bus.Subscribe("openevse/#", s.handle))
	bus.Close()

	require.NoError(t, bus.Publish("openevse/status", nil))
	assert.Empty(t, s.seen())
}

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"a/b", "a/b", true},
		{"a/b", "a/c", false},
		{"a/#", "a/b", true},
		{"a/#", "a/b/c", true},
		{"a/#", "a", true},
		{"a/#", "ab", false},
		{"#", "anything/at/all", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, topicMatches(tt.pattern, tt.topic), "%s vs %s", tt.pattern, tt.topic)
	}
}
