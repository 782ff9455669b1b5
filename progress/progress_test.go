package progress

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestFeed_BroadcastsReportsToConnectedClients(t *testing.T) {
	feed := NewFeed(nil)
	server := httptest.NewServer(feed)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	feed.Report(PhaseFit, 3, 10, 2)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(payload), `"phase":"fit"`)
	require.Contains(t, string(payload), `"pages_processed":3`)
	require.Contains(t, string(payload), `"pages_total":10`)
	require.Contains(t, string(payload), `"boilerplate_size":2`)
}

func TestFeed_ReportWithNoClientsIsANoOp(t *testing.T) {
	feed := NewFeed(nil)
	require.NotPanics(t, func() {
		feed.Report(PhaseTransform, 1, 1, 0)
	})
}
