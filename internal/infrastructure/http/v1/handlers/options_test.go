package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
	"github.com/AbdullahAsendar/chimney-sub000/internal/engine"
	"github.com/AbdullahAsendar/chimney-sub000/internal/gateway"
	"github.com/AbdullahAsendar/chimney-sub000/internal/infrastructure/http/v1/middleware"
	"github.com/AbdullahAsendar/chimney-sub000/internal/session"
)

func optionsTestRouter(t *testing.T, upstream http.Handler) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := &descriptor.PageConfig{
		Entity:  "workerTask",
		Service: "worker-service",
		Fields:  []string{"name", "workflowId"},
		RelationshipFields: map[string]string{
			"workflow": "workflowId",
		},
		RelationshipOptions: map[string]descriptor.RelationshipOption{
			"workflow": {Service: "workflow-service", Entity: "workflow", LabelField: "name", IsLookupEndpoint: true},
		},
	}
	gw := gateway.New(gateway.Config{BaseURL: srv.URL}, session.Static{AccessToken: "tok", Account: "acc"})
	eng := engine.New(cfg, gw, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	NewOptionsHandler(NewBaseHandler(), map[string]*engine.Engine{"workerTask": eng}).
		RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestGetOptions_FailedKeyAnswersScopedError(t *testing.T) {
	var calls int32
	router := optionsTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"id":"wf-1","name":"Onboarding"}]`))
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pages/workerTask/options/relationship/workflow", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OPTION_ERROR", body.Code)
	assert.Equal(t, "workflow", body.Details["key"])

	// The failed key stays failed: a plain re-read neither refetches nor
	// recovers, even though the upstream is healthy again.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pages/workerTask/options/relationship/workflow", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Retry clears the error and fetches again.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/pages/workerTask/options/relationship/workflow/retry", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entry engine.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.True(t, entry.FetchedOnce)
	require.Len(t, entry.Items, 1)
	assert.Equal(t, "Onboarding", entry.Items[0]["name"])
}

func TestGetOptions_UnknownPageAndKind(t *testing.T) {
	router := optionsTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pages/missing/options/relationship/workflow", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pages/workerTask/options/bogus/workflow", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
