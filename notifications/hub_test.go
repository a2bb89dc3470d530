package notifications

import (
	"testing"

	"murmur/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRoomHubTracksConnectionGauge(t *testing.T) {
	hub := NewRoomHub()
	roomGauge := observability.WebSocketRoomConnections.WithLabelValues("gauge-room")
	totalBefore := testutil.ToFloat64(observability.WebSocketConnectionsTotal)

	first := &recordingConn{}
	second := &recordingConn{}
	hub.Register("gauge-room", first)
	hub.Register("gauge-room", second)
	assert.Equal(t, float64(2), testutil.ToFloat64(roomGauge))
	assert.Equal(t, totalBefore+2, testutil.ToFloat64(observability.WebSocketConnectionsTotal))

	hub.Unregister("gauge-room", first)
	assert.Equal(t, float64(1), testutil.ToFloat64(roomGauge))

	// Unregistering an unknown conn leaves the gauge alone.
	hub.Unregister("gauge-room", &recordingConn{})
	assert.Equal(t, float64(1), testutil.ToFloat64(roomGauge))

	hub.Unregister("gauge-room", second)
	assert.Equal(t, float64(0), testutil.ToFloat64(roomGauge))
	assert.Equal(t, totalBefore, testutil.ToFloat64(observability.WebSocketConnectionsTotal))
}
