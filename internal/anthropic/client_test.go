package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maisquelle/maisquelle/internal/models"
)

func testFindings() []models.Finding {
	return []models.Finding{
		{Metric: "innodb.buffer_pool.hit_ratio", Severity: models.SeverityMedium, Value: 0.80, Limit: 0.95, Threshold: "buffer_pool_hit_ratio"},
	}
}

// messageResponse builds a Messages API body whose text block carries
// the given advice document.
func messageResponse(t *testing.T, advice string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": advice}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestNewRequiresAPIKey(t *testing.T) {
	if c := New("", "", time.Second); c != nil {
		t.Fatal("expected nil client without API key")
	}

	var c *Client
	if c.Available() {
		t.Error("nil client should report unavailable")
	}
	if New("key", "", time.Second) == nil {
		t.Error("expected client with API key")
	}
}

func TestAdviseSuccess(t *testing.T) {
	advice := `{"recommendations":[{"advice":"Increase the buffer pool","command":"SET GLOBAL innodb_buffer_pool_size = 268435456","priority":"medium","metrics":["innodb.buffer_pool.hit_ratio"]}]}`

	var gotVersion, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write(messageResponse(t, advice))
	}))
	defer server.Close()

	c := New("test-key", "", time.Second)
	c.SetBaseURL(server.URL)

	items, err := c.Advise(context.Background(), models.LevelAdvanced, testFindings(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Advice != "Increase the buffer pool" {
		t.Errorf("unexpected advice: %q", items[0].Advice)
	}
	if gotKey != "test-key" || gotVersion == "" {
		t.Errorf("expected auth headers, got key=%q version=%q", gotKey, gotVersion)
	}
}

func TestAdviseToleratesProseAroundJSON(t *testing.T) {
	advice := "Here is my analysis:\n```json\n" +
		`{"recommendations":[{"advice":"Check aborted connects","priority":"high","metrics":["connections.aborted"]}]}` +
		"\n```\nHope this helps."

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(messageResponse(t, advice))
	}))
	defer server.Close()

	c := New("test-key", "", time.Second)
	c.SetBaseURL(server.URL)

	items, err := c.Advise(context.Background(), models.LevelBasic, testFindings(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Priority != models.SeverityHigh {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestAdviseCoercesInvalidPriority(t *testing.T) {
	advice := `{"recommendations":[{"advice":"Do something","priority":"urgent","metrics":["connections.aborted"]}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(messageResponse(t, advice))
	}))
	defer server.Close()

	c := New("test-key", "", time.Second)
	c.SetBaseURL(server.URL)

	items, err := c.Advise(context.Background(), models.LevelBasic, testFindings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Priority != models.SeverityMedium {
		t.Errorf("expected coerced medium priority, got %q", items[0].Priority)
	}
}

func TestAdviseHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	c := New("test-key", "", time.Second)
	c.SetBaseURL(server.URL)

	_, err := c.Advise(context.Background(), models.LevelBasic, testFindings(), nil)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
}

func TestAdviseMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(messageResponse(t, "I could not produce JSON, sorry."))
	}))
	defer server.Close()

	c := New("test-key", "", time.Second)
	c.SetBaseURL(server.URL)

	_, err := c.Advise(context.Background(), models.LevelBasic, testFindings(), nil)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
}

func TestAdviseNilClient(t *testing.T) {
	var c *Client
	_, err := c.Advise(context.Background(), models.LevelBasic, testFindings(), nil)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *ServiceError from nil client, got %T", err)
	}
}

func TestAdviseNoFindings(t *testing.T) {
	c := New("test-key", "", time.Second)
	items, err := c.Advise(context.Background(), models.LevelBasic, nil, nil)
	if err != nil || items != nil {
		t.Errorf("expected no-op for empty findings, got %v / %v", items, err)
	}
}

func TestParseAdviceDropsUnusableItems(t *testing.T) {
	text := `{"recommendations":[
		{"advice":"","priority":"high","metrics":["a"]},
		{"advice":"No metrics","priority":"high","metrics":[]},
		{"advice":"Keep me","priority":"low","metrics":["b"]}
	]}`

	items, err := parseAdvice(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Advice != "Keep me" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestParseAdviceAllUnusable(t *testing.T) {
	if _, err := parseAdvice(`{"recommendations":[{"advice":"","metrics":[]}]}`); err == nil {
		t.Fatal("expected error when nothing usable remains")
	}
}
