package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingCollector struct {
	release chan struct{}
	got     chan Event
}

func (b *blockingCollector) Name() string { return "blocking" }

func (b *blockingCollector) Collect(ctx context.Context, ev Event) error {
	<-b.release
	b.got <- ev
	return nil
}

type panickingCollector struct{}

func (panickingCollector) Name() string { return "panicky" }

func (panickingCollector) Collect(context.Context, Event) error { panic("boom") }

type failingCollector struct{ calls int }

func (f *failingCollector) Name() string { return "failing" }

func (f *failingCollector) Collect(context.Context, Event) error {
	f.calls++
	return errors.New("collector offline")
}

func TestNoopWhenCollectorMissing(t *testing.T) {
	sink := NewAsync(nil, nil, nil)
	_, ok := sink.(Noop)
	assert.True(t, ok)
	assert.NotPanics(t, func() { sink.Emit(context.Background(), EventLead, Params{"value": 1}) })
}

func TestPairWithNilSinks(t *testing.T) {
	p := Pair{}
	assert.NotPanics(t, func() {
		p.EmitSite(context.Background(), EventSubmitAttempt, nil)
		p.EmitAds(context.Background(), EventConversion, nil)
	})
}

func TestAsyncDoesNotBlockCaller(t *testing.T) {
	c := &blockingCollector{release: make(chan struct{}), got: make(chan Event, 1)}
	sink := NewAsync(c, nil, nil)

	ctx := WithClientID(context.Background(), "visitor-1")
	params := Params{"form_location": "hero"}

	done := make(chan struct{})
	go func() {
		sink.Emit(ctx, EventSubmitAttempt, params)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on the collector")
	}

	// Mutating the caller's map must not leak into the queued event
	params["form_location"] = "changed"
	close(c.release)

	ev := <-c.got
	assert.Equal(t, EventSubmitAttempt, ev.Name)
	assert.Equal(t, "visitor-1", ev.ClientID)
	assert.Equal(t, "hero", ev.Params["form_location"])
}

func TestAsyncSwallowsPanicsAndErrors(t *testing.T) {
	panicky := NewAsync(panickingCollector{}, nil, nil).(*Async)
	assert.NotPanics(t, func() {
		panicky.Emit(context.Background(), EventLead, nil)
		panicky.Wait()
	})

	f := &failingCollector{}
	failing := NewAsync(f, nil, nil).(*Async)
	failing.Emit(context.Background(), EventLead, nil)
	failing.Wait()
	assert.Equal(t, 1, f.calls)
}

func TestGA4Collector(t *testing.T) {
	var mu sync.Mutex
	var query map[string]string
	var payload ga4Payload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		query = map[string]string{
			"measurement_id": r.URL.Query().Get("measurement_id"),
			"api_secret":     r.URL.Query().Get("api_secret"),
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewGA4Collector(server.URL, "G-TEST", "secret")
	require.NotNil(t, c)

	err := c.Collect(context.Background(), Event{
		Name:     EventLead,
		Params:   Params{"currency": "RSD"},
		ClientID: "abc",
		At:       time.Now(),
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "G-TEST", query["measurement_id"])
	assert.Equal(t, "secret", query["api_secret"])
	assert.Equal(t, "abc", payload.ClientID)
	require.Len(t, payload.Events, 1)
	assert.Equal(t, EventLead, payload.Events[0].Name)
	assert.Equal(t, "RSD", payload.Events[0].Params["currency"])
}

func TestGA4CollectorErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewGA4Collector(server.URL, "G-TEST", "secret")
	err := c.Collect(context.Background(), Event{Name: EventLead, At: time.Now()})
	assert.Error(t, err)
}

func TestGA4CollectorUnconfigured(t *testing.T) {
	assert.Nil(t, NewGA4Collector("https://example.com", "", "secret"))
	assert.Nil(t, NewGA4Collector("https://example.com", "G-1", ""))
}

func TestAdsCollector(t *testing.T) {
	var payload adsPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewAdsCollector(server.URL, "AW-123/abc")
	require.NotNil(t, c)

	err := c.Collect(context.Background(), Event{
		Name:   EventConversion,
		Params: Params{"value": 1, "currency": "EUR"},
		At:     time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "AW-123/abc", payload.SendTo)
	assert.Equal(t, EventConversion, payload.Event)
	assert.Equal(t, "1", payload.Params["value"])
	assert.Equal(t, "EUR", payload.Params["currency"])

	assert.Nil(t, NewAdsCollector("", "label"))
}
