package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.NotEmpty(t, seen)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}

func TestRequestID_ReusesCallerID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "trace-abc.123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc.123", seen)
	assert.Equal(t, "trace-abc.123", w.Header().Get(RequestIDHeader))
}

func TestRequestID_RejectsUnsafeCallerID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, "bad id\nwith newline", seen)
	assert.Len(t, seen, 36)
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestLogging_RecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := RequestID(Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/recommend", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	incoming := logs.FilterMessage("Incoming request").All()
	require.Len(t, incoming, 1)
	assert.Equal(t, "POST", incoming[0].ContextMap()["method"])
	assert.Equal(t, "/recommend", incoming[0].ContextMap()["path"])
	assert.Equal(t, "10.1.2.3:4567", incoming[0].ContextMap()["remote_addr"])
	assert.NotEmpty(t, incoming[0].ContextMap()["request_id"])

	completed := logs.FilterMessage("Request completed").All()
	require.Len(t, completed, 1)
	assert.EqualValues(t, http.StatusTeapot, completed[0].ContextMap()["status"])
	assert.EqualValues(t, 15, completed[0].ContextMap()["bytes"])
}

func TestLogging_ServerErrorsAtErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	failed := logs.FilterMessage("Request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
}

func TestLogging_ImplicitOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	completed := logs.FilterMessage("Request completed").All()
	require.Len(t, completed, 1)
	assert.EqualValues(t, http.StatusOK, completed[0].ContextMap()["status"])
}

func TestRecover_WritesResponse(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	var recovered error
	handler := Recover(zap.New(core), func(w http.ResponseWriter, r *http.Request, err error) {
		recovered = err
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"` + err.Error() + `"}`))
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		panic("scorer exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recommend", nil))

	require.Error(t, recovered)
	assert.Equal(t, "scorer exploded", recovered.Error())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(w.Body.String(), "scorer exploded"))
	assert.Equal(t, 1, logs.FilterMessage("Unhandled exception in request").Len())
}

func TestRecover_ErrorValue(t *testing.T) {
	sentinel := errors.New("boom")
	var recovered error
	handler := Recover(nil, func(w http.ResponseWriter, r *http.Request, err error) {
		recovered = err
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(sentinel)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.ErrorIs(t, recovered, sentinel)
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	handler := Recover(nil, func(w http.ResponseWriter, r *http.Request, err error) {
		t.Error("abort should not be handled")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
