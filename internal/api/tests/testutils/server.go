package testutils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/trading-venue/internal/api/handlers"
	"github.com/PxPatel/trading-venue/internal/api/routes"
	"github.com/PxPatel/trading-venue/internal/matching"
	"github.com/PxPatel/trading-venue/internal/publisher"
	"github.com/PxPatel/trading-venue/internal/storage/memory"
)

// Symbols are the instruments every test server lists
var Symbols = []string{"TICKER0", "TICKER1", "TICKER2"}

// TestServer wraps a test HTTP server around a freshly built engine. Orders
// are placed directly on the engine; the API itself is read-only.
type TestServer struct {
	Server     *httptest.Server
	Engine     *matching.Engine
	Trades     *memory.TradeStore
	Orders     *memory.OrderStore
	Dispatcher *publisher.Dispatcher
	t          testing.TB
}

// NewTestServer creates a new test server with a fresh engine
func NewTestServer(t testing.TB) *TestServer {
	trades := memory.NewTradeStore(1000)
	orders := memory.NewOrderStore(10000)
	dispatcher := publisher.NewDispatcher(trades, publisher.Config{
		BatchSize:     1,
		FlushInterval: time.Millisecond,
	})

	registry, err := matching.NewRegistry(Symbols, matching.WithTradeSink(dispatcher))
	require.NoError(t, err)
	engine := matching.NewEngine(registry, matching.WithOrderRecorder(orders))

	holder := handlers.NewEngineHolder(engine, trades, orders, dispatcher)
	server := httptest.NewServer(routes.SetupRoutes(holder))

	return &TestServer{
		Server:     server,
		Engine:     engine,
		Trades:     trades,
		Orders:     orders,
		Dispatcher: dispatcher,
		t:          t,
	}
}

// Close cleans up the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Dispatcher.Close()
}

// URL returns the base URL for the test server
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Get makes a GET request to the test server
func (ts *TestServer) Get(path string) *http.Response {
	resp, err := http.Get(ts.URL() + path)
	require.NoError(ts.t, err, "GET request failed")
	return resp
}

// Do sends a request with an arbitrary method
func (ts *TestServer) Do(method, path string) *http.Response {
	req, err := http.NewRequest(method, ts.URL()+path, nil)
	require.NoError(ts.t, err, "Failed to create request")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err, "%s request failed", method)
	return resp
}

// Submit places a limit order on the engine
func (ts *TestServer) Submit(side matching.SideType, symbol string, price string, quantity int64) *matching.Execution {
	exec, err := ts.Engine.SubmitSymbol(side, symbol, quantity, decimal.RequireFromString(price))
	require.NoError(ts.t, err, "submit failed")
	return exec
}

// WaitForTrades blocks until the dispatcher has stored n trades
func (ts *TestServer) WaitForTrades(n int64) {
	require.Eventually(ts.t, func() bool {
		return ts.Dispatcher.Stats().Published >= n
	}, 2*time.Second, time.Millisecond, "trades were not delivered")
}

// DecodeJSON decodes JSON response into target
func DecodeJSON(t testing.TB, resp *http.Response, target interface{}) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	err = json.Unmarshal(body, target)
	require.NoError(t, err, "Failed to decode JSON response: %s", string(body))
}
