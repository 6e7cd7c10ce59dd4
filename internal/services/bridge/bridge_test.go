package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FxPilot/internal/domain/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second, Retries: 1})
}

func sampleRequest() models.ExecutionRequest {
	return models.ExecutionRequest{
		Symbol:     "USDJPY",
		Action:     models.ActionBuy,
		StopLoss:   151.123456,
		TakeProfit: 152.987654,
		Confidence: 0.8,
		Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestExecutorFilled(t *testing.T) {
	var got map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ticket":"T-42"}`))
	})

	res := NewExecutor(c).Execute(context.Background(), sampleRequest())
	if !res.Filled() || res.Ticket != "T-42" {
		t.Fatalf("expected filled result, got %+v", res)
	}
	if got["stopLoss"] != 151.123 || got["takeProfit"] != 152.988 {
		t.Fatalf("prices not quantized to 3 digits: %v", got)
	}
}

func TestExecutorAcceptsNumericTicket(t *testing.T) {
	for body, want := range map[string]string{
		`{"ticket":12345}`:       "12345",
		`{"ticket":"12345"}`:     "12345",
		`{"ticket":90071992547}`: "90071992547",
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		res := NewExecutor(c).Execute(context.Background(), sampleRequest())
		if !res.Filled() || res.Ticket != want {
			t.Fatalf("%s: expected filled with ticket %s, got %+v", body, want, res)
		}
	}
}

func TestBrokerOpenTradesNumericTickets(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"ticket":777,"symbol":"EURUSD","action":"BUY","volume":0.1},{"ticket":"A-1","symbol":"XAUUSD","action":"SELL"}]`))
	})
	trades, err := NewBroker(c).OpenTrades(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 2 || trades[0].Ticket != "777" || trades[0].Symbol != "EURUSD" || trades[0].Volume != 0.1 || trades[1].Ticket != "A-1" {
		t.Fatalf("unexpected trades %+v", trades)
	}
}

func TestExecutorMapsNon2xxToDiagnostic(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})

	res := NewExecutor(c).Execute(context.Background(), sampleRequest())
	if res.Status != models.ExecutionFailed || res.Ticket != "" {
		t.Fatalf("expected failed result, got %+v", res)
	}
	if res.Diagnostic != models.BridgeDiagnostic {
		t.Fatalf("unexpected diagnostic %q", res.Diagnostic)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("orders must not be retried, got %d calls", calls)
	}
}

func TestExecutorEmptyTicketIsFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	if res := NewExecutor(c).Execute(context.Background(), sampleRequest()); res.Filled() {
		t.Fatalf("empty ticket must not count as filled")
	}
}

func TestExecutorWithoutBridge(t *testing.T) {
	res := NewExecutor(NewClient(Config{})).Execute(context.Background(), sampleRequest())
	if res.Status != models.ExecutionFailed || res.Cause != models.ErrCollaboratorUnavailable.Error() {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestMarketSourceRetriesTransientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Query().Get("symbol") != "EURUSD" {
			t.Errorf("missing symbol query")
		}
		_, _ = w.Write([]byte(`{"action":"SELL","confidence":0.7,"stopLoss":1.1,"takeProfit":1.05,"price":1.08,"timestamp":"2024-05-01T12:00:00Z"}`))
	})

	sig, err := NewMarketSource(c).FetchSignal(context.Background(), "EURUSD", models.DefaultStrategy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Action != models.ActionSell || sig.Source != models.SourceMarket || sig.Symbol != "EURUSD" {
		t.Fatalf("unexpected signal %+v", sig)
	}
	if !sig.Timestamp.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %v", sig.Timestamp)
	}
}

func TestMarketSourceRejectsGarbage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"action":"MOON","confidence":2}`))
	})
	_, err := NewMarketSource(c).FetchSignal(context.Background(), "EURUSD", models.DefaultStrategy())
	if !errors.Is(err, models.ErrCollaboratorUnavailable) {
		t.Fatalf("expected collaborator unavailable, got %v", err)
	}
}

func TestBrokerMarksLiveData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/metrics":
			_, _ = w.Write([]byte(`{"balance":5000,"equity":5100}`))
		case "/positions":
			_, _ = w.Write([]byte(`null`))
		default:
			http.NotFound(w, r)
		}
	})
	b := NewBroker(c)

	m, err := b.AccountMetrics(context.Background())
	if err != nil || !m.Live || m.Balance != 5000 {
		t.Fatalf("unexpected metrics %+v err=%v", m, err)
	}
	trades, err := b.OpenTrades(context.Background())
	if err != nil || trades == nil || len(trades) != 0 {
		t.Fatalf("expected empty non-nil trades, got %v err=%v", trades, err)
	}
	if _, err := b.Status(context.Background()); err == nil {
		t.Fatalf("expected error for 404 status")
	}
}

func TestQuantize(t *testing.T) {
	cases := []struct {
		symbol string
		in     float64
		want   string
	}{
		{"EURUSD", 1.0812345, "1.08123"},
		{"USDJPY", 151.12351, "151.124"},
		{"XAUUSD", 2301.456, "2301.46"},
	}
	for _, c := range cases {
		if got := Quantize(c.symbol, c.in).String(); got != c.want {
			t.Fatalf("%s: got %s want %s", c.symbol, got, c.want)
		}
	}
}
