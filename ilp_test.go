package ilp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vitwit/ilp/logger"
	"github.com/vitwit/ilp/plugins"
	"github.com/vitwit/ilp/types"
)

func newMemoryClient(t *testing.T, opts ...Option) (*Client, *plugins.MemoryPlugin) {
	t.Helper()

	client, err := New(&types.ClientConfig{
		Type: "memory",
		Auth: map[string]interface{}{"prefix": "mock/ledger"},
	}, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(client.Close)

	return client, client.GetPlugin().(*plugins.MemoryPlugin)
}

// TestNew_ResolvesPluginOnce verifies that construction resolves the plugin
// by type and that GetPlugin returns the owned instance.
func TestNew_ResolvesPluginOnce(t *testing.T) {
	client, plugin := newMemoryClient(t)

	if client.GetPlugin() != plugins.Plugin(plugin) {
		t.Fatal("GetPlugin must return the owned instance")
	}
	if plugin.Prefix() != "mock/ledger" {
		t.Fatalf("auth was not passed to the factory, prefix: %q", plugin.Prefix())
	}
}

// TestNew_UnresolvableTypeFails verifies that an unregistered plugin type
// fails construction with TRANSPORT_NOT_FOUND naming the identifier.
func TestNew_UnresolvableTypeFails(t *testing.T) {
	_, err := New(&types.ClientConfig{Type: "nonexistent-ledger"})
	if err == nil {
		t.Fatal("expected construction to fail")
	}

	var ilpErr *types.ILPError
	if !errors.As(err, &ilpErr) || ilpErr.Code != types.ErrTransportNotFound {
		t.Fatalf("expected %s, got %#v", types.ErrTransportNotFound, err)
	}
	if !strings.Contains(ilpErr.Message, "nonexistent-ledger") {
		t.Fatalf("message does not name the identifier: %q", ilpErr.Message)
	}
}

// TestWaitForConnection_FailsFastWhenNotConnecting verifies the narrow
// correctness contract: waiting without a prior connect, or after a
// disconnect, fails with NOT_CONNECTING rather than hanging.
func TestWaitForConnection_FailsFastWhenNotConnecting(t *testing.T) {
	client, _ := newMemoryClient(t)
	ctx := context.Background()

	assertNotConnecting := func() {
		t.Helper()
		err := client.WaitForConnection(ctx)
		if err == nil {
			t.Fatal("expected NOT_CONNECTING error")
		}
		var ilpErr *types.ILPError
		if !errors.As(err, &ilpErr) || ilpErr.Code != types.ErrNotConnecting {
			t.Fatalf("expected %s, got %#v", types.ErrNotConnecting, err)
		}
	}

	// Never connected.
	assertNotConnecting()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	if err := client.WaitForConnection(ctx); err != nil {
		t.Fatalf("WaitForConnection returned error: %v", err)
	}

	if err := client.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect returned error: %v", err)
	}

	// Disconnected again.
	assertNotConnecting()
}

// TestClientQuote_Scenario runs the end-to-end quote scenario: fixed source
// amount against a connector stub yields the normalized destination amount
// and connector account.
func TestClientQuote_Scenario(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("source_ledger"); got != "mock/ledger" {
			t.Errorf("unexpected source_ledger: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"destination_amount":"1","source_connector_account":"mock/connector"}`))
	}))
	defer server.Close()

	client, _ := newMemoryClient(t, WithConnectorURL(server.URL+"/quote"))

	quote, err := client.Quote(context.Background(), &types.QuoteRequest{
		DestinationLedger: "http://red.example",
		SourceAmount:      "1",
	})
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}

	if quote.DestinationAmount != "1" || quote.ConnectorAccount != "mock/connector" {
		t.Fatalf("unexpected quote: %#v", quote)
	}
}

// TestClientSendQuotedPayment_Scenario verifies the full submission path
// through the client: the envelope carries the plugin's own ledger prefix and
// the nested destination leg.
func TestClientSendQuotedPayment_Scenario(t *testing.T) {
	client, plugin := newMemoryClient(t)
	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	err := client.SendQuotedPayment(ctx, &types.PaymentRequest{
		ConnectorAccount:   "connector",
		SourceAmount:       "1",
		DestinationAmount:  "2",
		DestinationLedger:  "http://red.example",
		DestinationAccount: "http://red.example/bob",
		DestinationMemo:    map[string]interface{}{"foo": "bar"},
		ExecutionCondition: "cc:0:3:vmvf6B7EpFalN6RGDx9F4f4z0wtOIgsIdCmbgv06ceI:7",
		ExpiresAt:          "2016-07-02T00:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("SendQuotedPayment returned error: %v", err)
	}

	sent := plugin.SentTransfers()
	if len(sent) != 1 {
		t.Fatalf("expected one submission, got %d", len(sent))
	}
	got := sent[0]
	if got.Ledger != "mock/ledger" || got.Account != "connector" || got.Amount != "1" {
		t.Fatalf("unexpected source leg: %#v", got)
	}
	if got.Data.ILPHeader.Account != "http://red.example/bob" || got.Data.ILPHeader.Amount != "2" {
		t.Fatalf("unexpected ilp_header: %#v", got.Data.ILPHeader)
	}
}

// TestClientFulfillCondition_ForwardsToPlugin verifies the fulfillment
// passthrough.
func TestClientFulfillCondition_ForwardsToPlugin(t *testing.T) {
	client, plugin := newMemoryClient(t)
	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	if err := client.FulfillCondition(ctx, "cf:0:", "cc:0:3:abc:2"); err != nil {
		t.Fatalf("FulfillCondition returned error: %v", err)
	}
	if _, ok := plugin.Fulfillment("cc:0:3:abc:2"); !ok {
		t.Fatal("fulfillment did not reach the plugin")
	}
}

type testExtension struct {
	client *Client
	pinged bool
}

func (e *testExtension) Ping() { e.pinged = true }

type testExtensionFactory struct {
	name string
	err  error
	last *testExtension
}

func (f *testExtensionFactory) Name() string { return f.name }

func (f *testExtensionFactory) New(c *Client) (Extension, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.last = &testExtension{client: c}
	return f.last, nil
}

// TestUse_EnforcesContractAtRegistration verifies that a nil factory and an
// empty name are rejected with EXTENSION_CONTRACT at registration time.
func TestUse_EnforcesContractAtRegistration(t *testing.T) {
	client, _ := newMemoryClient(t)

	if err := client.Use(nil); err == nil {
		t.Fatal("expected error for nil factory")
	}

	err := client.Use(&testExtensionFactory{name: ""})
	if err == nil {
		t.Fatal("expected error for empty name")
	}
	var ilpErr *types.ILPError
	if !errors.As(err, &ilpErr) || ilpErr.Code != types.ErrExtensionContract {
		t.Fatalf("expected %s, got %#v", types.ErrExtensionContract, err)
	}

	err = client.Use(&testExtensionFactory{name: "broken", err: errors.New("ctor failed")})
	if err == nil {
		t.Fatal("expected error when construction fails")
	}
	if _, ok := client.Extension("broken"); ok {
		t.Fatal("failed registration must not attach the extension")
	}
}

// TestUse_ConstructsWithClientAndExposesOperations verifies that the
// extension receives the client instance and that its operations are
// reachable through the namespace lookup.
func TestUse_ConstructsWithClientAndExposesOperations(t *testing.T) {
	client, _ := newMemoryClient(t)

	factory := &testExtensionFactory{name: "ping"}
	if err := client.Use(factory); err != nil {
		t.Fatalf("Use returned error: %v", err)
	}

	if factory.last.client != client {
		t.Fatal("extension must be constructed with the client instance")
	}

	ext, ok := client.Extension("ping")
	if !ok {
		t.Fatal("extension not found under its namespace")
	}
	ext.(*testExtension).Ping()
	if !factory.last.pinged {
		t.Fatal("extension operation not reachable through lookup")
	}
}

// TestUse_LastRegistrationWins verifies the documented overwrite behavior
// for duplicate namespaces.
func TestUse_LastRegistrationWins(t *testing.T) {
	client, _ := newMemoryClient(t)

	first := &testExtensionFactory{name: "dup"}
	second := &testExtensionFactory{name: "dup"}

	if err := client.Use(first); err != nil {
		t.Fatalf("Use returned error: %v", err)
	}
	if err := client.Use(second); err != nil {
		t.Fatalf("Use returned error: %v", err)
	}

	ext, _ := client.Extension("dup")
	if ext != Extension(second.last) {
		t.Fatal("second registration must replace the first")
	}

	names := client.Extensions()
	if len(names) != 1 || names[0] != "dup" {
		t.Fatalf("unexpected namespaces: %v", names)
	}
}

// TestNew_ConfigLogLevelSelectsZap verifies that an explicit log level in
// the config switches the client off the noop logger, while a config
// without one stays on it and WithLogger keeps precedence.
func TestNew_ConfigLogLevelSelectsZap(t *testing.T) {
	withLevel, err := New(&types.ClientConfig{
		Type:     "memory",
		Auth:     map[string]interface{}{"prefix": "mock/ledger"},
		LogLevel: "debug",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer withLevel.Close()

	if _, isNoop := withLevel.log.(logger.NoopLogger); isNoop {
		t.Fatal("explicit log level must select the zap logger")
	}

	withoutLevel, err := New(&types.ClientConfig{
		Type: "memory",
		Auth: map[string]interface{}{"prefix": "mock/ledger"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer withoutLevel.Close()

	if _, isNoop := withoutLevel.log.(logger.NoopLogger); !isNoop {
		t.Fatal("client without an explicit log level must stay on the noop logger")
	}

	custom := &recordingLogger{}
	withOption, err := New(&types.ClientConfig{
		Type:     "memory",
		Auth:     map[string]interface{}{"prefix": "mock/ledger"},
		LogLevel: "debug",
	}, WithLogger(custom))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer withOption.Close()

	if withOption.log != logger.Logger(custom) {
		t.Fatal("WithLogger must take precedence over the config log level")
	}
	if custom.entries == 0 {
		t.Fatal("custom logger should have seen the construction log entry")
	}
}

// recordingLogger counts entries so tests can tell an explicitly supplied
// logger stays in place.
type recordingLogger struct {
	entries int
}

func (l *recordingLogger) Debug(string, map[string]any) { l.entries++ }
func (l *recordingLogger) Info(string, map[string]any)  { l.entries++ }
func (l *recordingLogger) Warn(string, map[string]any)  { l.entries++ }
func (l *recordingLogger) Error(string, map[string]any) { l.entries++ }

// TestNewWithDefaults verifies the convenience constructor applies the
// default timeout.
func TestNewWithDefaults(t *testing.T) {
	client, err := NewWithDefaults("memory", map[string]interface{}{"prefix": "mock/ledger"})
	if err != nil {
		t.Fatalf("NewWithDefaults returned error: %v", err)
	}
	defer client.Close()

	if client.timeout != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", client.timeout)
	}
}
