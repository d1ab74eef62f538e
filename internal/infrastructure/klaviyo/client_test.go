package klaviyo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/entity"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:      "pk_test",
		BaseURL:     baseURL,
		Revision:    "2024-10-15",
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
		BackoffCap:  5 * time.Millisecond,
		HTTPTimeout: time.Second,
	}
}

func testEvent() *entity.Event {
	value := 99.99

	return &entity.Event{
		MetricName:     entity.MetricPlacedOrder,
		ProfileID:      "email:a@b.com",
		Properties:     map[string]any{"order_id": "order-123", "total": 99.99},
		Value:          &value,
		IdempotencyKey: "purchase:order-123",
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, logger.New("error"))

	require.Error(t, err)
}

func TestSendRetriesOn429ThenSucceeds(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := New(testConfig(srv.URL), logger.New("error"))
	require.NoError(t, err)

	err = client.Send(context.Background(), testEvent())

	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestSendExhaustsRetriesOnTransientFailures(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := New(testConfig(srv.URL), logger.New("error"))
	require.NoError(t, err)

	err = client.Send(context.Background(), testEvent())

	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSendPermanentFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := New(testConfig(srv.URL), logger.New("error"))
	require.NoError(t, err)

	err = client.Send(context.Background(), testEvent())

	require.ErrorIs(t, err, ErrPermanentFailure)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSendHeadersAndWirePayload(t *testing.T) {
	var (
		gotHeaders http.Header
		gotBody    []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := New(testConfig(srv.URL), logger.New("error"))
	require.NoError(t, err)

	event := testEvent()
	event.Properties["password"] = "hunter2"

	require.NoError(t, client.Send(context.Background(), event))

	assert.Equal(t, "Klaviyo-API-Key pk_test", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "2024-10-15", gotHeaders.Get("revision"))
	assert.Equal(t, HashIdempotencyKey("purchase:order-123"), gotHeaders.Get("Idempotency-Key"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))

	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "event", data["type"])

	attrs, ok := data["attributes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, entity.MetricPlacedOrder, attrs["metric"].(map[string]any)["name"])
	assert.InDelta(t, 99.99, attrs["value"].(float64), 0.001)

	props, ok := attrs["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, RedactedMarker, props["password"])
	assert.Equal(t, "order-123", props["order_id"])

	profile := data["relationships"].(map[string]any)["profile"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "profile", profile["type"])
	assert.Equal(t, "email:a@b.com", profile["id"])
}

func TestSendNetworkErrorIsRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from the first attempt

	client, err := New(testConfig(srv.URL), logger.New("error"))
	require.NoError(t, err)

	err = client.Send(context.Background(), testEvent())

	require.ErrorIs(t, err, ErrRetriesExhausted)
}

func TestSendHonorsContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BackoffBase = 10 * time.Second
	cfg.BackoffCap = 30 * time.Second

	client, err := New(cfg, logger.New("error"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = client.Send(ctx, testEvent())

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, ErrRetriesExhausted))
}

func TestHashIdempotencyKeyDeterministic(t *testing.T) {
	first := HashIdempotencyKey("purchase:order-123")
	second := HashIdempotencyKey("purchase:order-123")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, HashIdempotencyKey("purchase:order-124"))
}
