// Package testserver runs the full HTTP stack against an in-memory database.
package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/grantflow/internal/app"
	"github.com/rpggio/grantflow/internal/events"
	"github.com/rpggio/grantflow/internal/mcp"
	"github.com/rpggio/grantflow/internal/sqlite"
	"github.com/rpggio/grantflow/internal/transport"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Services *app.Services
	Events   *events.MemoryPublisher

	tokens map[string]string
}

// New starts an authenticated server. Each principal gets a bearer token.
func New(t *testing.T, principals ...string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	publisher := &events.MemoryPublisher{}
	logger := zerolog.Nop()
	services := app.NewServices(db, publisher, logger)
	svc := mcp.Services{
		Treasuries: services.Treasuries,
		Streams:    services.Streams,
		Vestings:   services.Vestings,
		Activity:   services.Activity,
		Custody:    services.Custody,
	}

	router := transport.NewServer(mcp.NewHandler(svc, logger), transport.AuthMiddleware(services.APIKeys))
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      svc,
		Resolver:      services.APIKeys,
		AuthEnabled:   true,
		TransportMode: "http",
		Logger:        logger,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)
	router.Handle("/mcp", mcpHandler)

	ts := &TestServer{
		Server:   httptest.NewServer(router),
		DB:       db,
		Services: services,
		Events:   publisher,
		tokens:   make(map[string]string),
	}
	t.Cleanup(func() {
		ts.Server.Close()
		_ = db.Close()
	})

	for _, principal := range principals {
		token, err := services.APIKeys.Create(context.Background(), principal, "test")
		require.NoError(t, err)
		ts.tokens[principal] = token
	}
	return ts
}

// Token returns the bearer token issued to principal.
func (ts *TestServer) Token(principal string) string {
	return ts.tokens[principal]
}

// Deposit funds an owner's custody account directly.
func (ts *TestServer) Deposit(t *testing.T, owner, mint string, amount uint64) {
	t.Helper()
	_, err := ts.Services.Custody.Deposit(context.Background(), owner, mint, amount)
	require.NoError(t, err)
}

// RPCResponse is a decoded JSON-RPC response with its result left raw.
type RPCResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// RPC posts a JSON-RPC call to /rpc as principal. An empty principal sends no token.
func (ts *TestServer) RPC(t *testing.T, principal, method string, params any) (int, RPCResponse) {
	t.Helper()

	payload := map[string]any{"jsonrpc": "2.0", "method": method, "id": 1}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set("Authorization", "Bearer "+ts.Token(principal))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// Call is RPC that requires success and decodes the result into out.
func (ts *TestServer) Call(t *testing.T, principal, method string, params, out any) {
	t.Helper()
	status, resp := ts.RPC(t, principal, method, params)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error, "%s failed: %+v", method, resp.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Result, out))
	}
}

// MCPClient connects an MCP client over streamable HTTP as principal.
func (ts *TestServer) MCPClient(t *testing.T, principal string) *sdkmcp.ClientSession {
	t.Helper()

	httpClient := &http.Client{Transport: bearerTransport{token: ts.Token(principal), base: http.DefaultTransport}}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: httpClient,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return b.base.RoundTrip(req)
}
