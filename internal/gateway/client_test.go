package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdullahAsendar/chimney-sub000/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}, session.Static{AccessToken: "tok-123", Account: "acc-9"})
}

func TestList_PathQueryAndAuth(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		json.NewEncoder(w).Encode(ListDocument{Data: []Resource{{ID: "1"}}})
	}))

	params := url.Values{}
	params.Set("page[number]", "1")
	params.Set("page[size]", "10")

	doc, err := client.List(context.Background(), "customer-service", "customer", params)
	require.NoError(t, err)
	require.Len(t, doc.Data, 1)

	assert.Equal(t, "/customer-service/api/v1/chimney/customer", captured.URL.Path)
	assert.Equal(t, "1", captured.URL.Query().Get("page[number]"))
	assert.Equal(t, "Bearer tok-123", captured.Header.Get("Authorization"))
	assert.Equal(t, "acc-9", captured.Header.Get("account-id"))
}

func TestCreate_PostsPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload WritePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "customer", payload.Data.Type)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SingleDocument{Data: Resource{ID: "new-1", Attributes: payload.Data.Attributes}})
	}))

	res, err := client.Create(context.Background(), "customer-service", "customer",
		NewCreatePayload("customer", map[string]any{"firstName": "bob"}, nil))
	require.NoError(t, err)
	assert.Equal(t, "new-1", res.ID)
}

func TestPatch_TargetsInstancePath(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Patch(context.Background(), "customer-service", "customer", "c-1",
		NewPatchPayload("customer", "c-1", map[string]any{"deleted": true}, nil))
	require.NoError(t, err)
	assert.Equal(t, "/customer-service/api/v1/chimney/customer/c-1", gotPath)
}

func TestLookup_NormalizesEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workflow-service/api/v1/workflows", r.URL.Path)
		w.Write([]byte(`{"result":[{"id":"wf-1","name":"Onboarding"}]}`))
	}))

	items, err := client.Lookup(context.Background(), "workflow-service", "workflows")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Onboarding", items[0]["name"])
}

func TestLookup_LeadingSlashTrimmed(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/svc/api/v1/lookups/statuses", r.URL.Path)
		w.Write([]byte(`[]`))
	}))

	_, err := client.Lookup(context.Background(), "svc", "/lookups/statuses")
	require.NoError(t, err)
}

func TestDo_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	}))

	_, err := client.List(context.Background(), "svc", "thing", nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Status)
	assert.Equal(t, "upstream broke", statusErr.Body)
}

func TestDo_SessionFailureShortCircuits(t *testing.T) {
	requestSeen := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestSeen = true
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL}, failingSession{})
	_, err := client.List(context.Background(), "svc", "thing", nil)
	require.Error(t, err)
	assert.False(t, requestSeen, "no request may leave without credentials")
}

type failingSession struct{}

func (failingSession) Token(context.Context) (string, error) {
	return "", errors.New("no session")
}
func (failingSession) AccountID(context.Context) (string, error) {
	return "", errors.New("no session")
}
