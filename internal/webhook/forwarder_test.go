package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hurricanefence/packslips/constants"
	"github.com/hurricanefence/packslips/internal/entity"
)

func testSlip() *entity.PackSlip {
	return &entity.PackSlip{
		ID:       uuid.New(),
		Status:   constants.DocStatusSubmitted,
		FileName: "slip.pdf",
		MimeType: "application/pdf",
		FileSize: 1234,
		Metadata: entity.Metadata{Vendor: "Stephens Pipe & Steel", POOrJob: "PO-4411"},
		LineItems: []entity.LineItem{
			{Description: "BLKVNL 4 x18 x SP40x8pc", Quantity: 144, Unit: "ft"},
		},
		ExtractedText: "Ordered Shipped BackOrder Unit Description",
		ExtractMeta:   entity.ExtractMeta{Method: "pdf-text", Pages: 1},
	}
}

func TestForwardPostsSubmission(t *testing.T) {
	var got submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ps := testSlip()
	f := NewForwarder(Config{URL: srv.URL}, nil)
	require.NoError(t, f.Forward(context.Background(), ps))

	assert.Equal(t, ps.ID.String(), got.ID)
	assert.Equal(t, "submitted", got.Status)
	assert.Equal(t, "PO-4411", got.Metadata.POOrJob)
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, 144.0, got.LineItems[0].Quantity)
	assert.Equal(t, "slip.pdf", got.File.Name)
	assert.Equal(t, 1234, got.File.Size)
}

func TestForwardRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewForwarder(Config{URL: srv.URL, Retries: 2}, nil)
	require.NoError(t, f.Forward(context.Background(), testSlip()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestForwardDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	f := NewForwarder(Config{URL: srv.URL, Retries: 3}, nil)
	err := f.Forward(context.Background(), testSlip())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Equal(t, int32(1), calls.Load(), "a 4xx is final")
}

func TestForwardGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewForwarder(Config{URL: srv.URL, Retries: 2}, nil)
	err := f.Forward(context.Background(), testSlip())
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestForwardSkipsWhenUnconfigured(t *testing.T) {
	f := NewForwarder(Config{}, nil)
	assert.NoError(t, f.Forward(context.Background(), testSlip()))
}

func TestForwardHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := NewForwarder(Config{URL: srv.URL, Retries: 5}, nil)
	err := f.Forward(ctx, testSlip())
	require.Error(t, err)
}
