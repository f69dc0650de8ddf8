package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLogger struct{}

func (m *MockLogger) Error(msg string, args ...any) {
}

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func decodePush(t *testing.T, req *http.Request) pushRequest {
	reader, err := gzip.NewReader(req.Body)
	require.NoError(t, err)
	var body pushRequest
	require.NoError(t, json.NewDecoder(reader).Decode(&body))
	return body
}

func Test_ConfigValidation(t *testing.T) {
	cfg := Config{}
	_, err := New(context.Background(), cfg, &MockLogger{})
	assert.Error(t, err)

	cfg.Url = "not a url"
	_, err = New(context.Background(), cfg, &MockLogger{})
	assert.Error(t, err)

	cfg.Url = "http://loki:3100/loki/api/v1/push"
	pusher, err := New(context.Background(), cfg, &MockLogger{})
	assert.NoError(t, err)
	defer pusher.Stop()

	assert.Equal(t, cfg.Url, pusher.config.Url)
	assert.Equal(t, 1000, pusher.config.BatchMaxSize)
	assert.Equal(t, 5*time.Second, pusher.config.BatchMaxWait)
	assert.Equal(t, map[string]string{}, pusher.config.Labels)
}

func Test_Pusher_Stop_ShouldFlushQueuedLines(t *testing.T) {

	assert := assert.New(t)

	var pushed pushRequest
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Run(func(args mock.Arguments) {
		req := args.Get(0).(*http.Request)
		assert.Equal("gzip", req.Header.Get("Content-Encoding"))
		assert.Equal("tenant", req.Header.Get("X-Scope-OrgID"))
		pushed = decodePush(t, req)
	}).Return(&http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(bytes.NewBuffer(nil))}, nil).Once()

	cfg := Config{
		Url:          "http://loki:3100/loki/api/v1/push",
		BatchMaxWait: time.Hour,
		TenantKey:    "X-Scope-OrgID",
		TenantValue:  "tenant",
		Labels:       map[string]string{"app": "jobmatch"},
	}
	pusher, err := NewWithClient(context.Background(), cfg, &MockLogger{}, client)
	require.NoError(t, err)

	assert.NoError(pusher.Push(LogEntry{Level: "error", Message: "first", ErrorType: "api"}))
	assert.NoError(pusher.Push(LogEntry{Level: "info", Message: "second"}))
	pusher.Stop()
	pusher.Stop()

	require.Len(t, pushed.Streams, 1)
	assert.Equal(map[string]string{"app": "jobmatch"}, pushed.Streams[0].Stream)
	require.Len(t, pushed.Streams[0].Values, 2)

	var first LogEntry
	require.NoError(t, json.Unmarshal([]byte(pushed.Streams[0].Values[0][1]), &first))
	assert.Equal("api", first.ErrorType)
	assert.ErrorIs(pusher.Push(LogEntry{Message: "late"}), ErrStopped)
	client.AssertExpectations(t)
}
