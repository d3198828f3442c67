package channels

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushToOfflineUser(t *testing.T) {
	manager := NewManager()

	require.False(t, manager.Online("alice"))
	require.False(t, manager.Push("alice", Event{Kind: "message"}))
}
