package notifylead

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unipath-planner/internal/common/config"
	commonhttp "unipath-planner/internal/common/http"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/models"
	"unipath-planner/internal/notifier"
)

func testInput() *Input {
	return &Input{
		Profile: models.Profile{Name: "吴同学", Contact: "wx_wu", University: "武汉大学", Major: "法学", Grade: models.GradeSenior},
		Plan:    models.Plan{Summary: "准备九推"},
	}
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 30*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 5*time.Second, LoadConfig(config.WorkerConfig{Timeout: 5000}).Timeout)
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notified bool
	}{
		{"delivered", http.StatusOK, `{"code":0}`, true},
		{"webhook rejects", http.StatusOK, `{"code":9499,"msg":"Bad Request"}`, false},
		{"webhook down", http.StatusServiceUnavailable, ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			n := notifier.New(notifier.NewFeishuChannel(srv.URL, "", commonhttp.Wrap(srv.Client())), time.Second, logger.NewTestLogger(t))
			h := NewHandler(LoadConfig(config.WorkerConfig{}), n, logger.NewTestLogger(t))

			out := h.Execute(context.Background(), testInput())
			require.NotNil(t, out)
			assert.Equal(t, tt.notified, out.Notified)
			assert.Equal(t, config.ChannelFeishu, out.Channel)
			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestHandler_Execute_Unconfigured(t *testing.T) {
	n := notifier.New(notifier.NoneChannel{}, time.Second, logger.NewNoOpLogger())
	h := NewHandler(LoadConfig(config.WorkerConfig{}), n, logger.NewTestLogger(t))

	out := h.Execute(context.Background(), testInput())
	assert.False(t, out.Notified)
	assert.Equal(t, config.ChannelNone, out.Channel)
}
