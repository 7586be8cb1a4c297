package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"unipath-planner/internal/common/config"
	commonhttp "unipath-planner/internal/common/http"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/common/metrics"
	"unipath-planner/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func lead() (models.Profile, models.Plan) {
	profile := models.Profile{
		Name:       "陈同学",
		Contact:    "13800000000",
		University: "南京大学",
		Major:      "物理学",
		Grade:      models.GradeJunior,
		Rank:       "5/80",
		Confusion:  "要不要跨保",
	}
	plan := models.Plan{
		Summary: "物理基础好，可考虑交叉方向。",
		SchoolStats: models.SchoolStats{
			RateTrend:    []models.YearRate{{Year: "2023", Rate: "20%"}, {Year: "2024", Rate: "23%"}},
			Destinations: []models.Destination{{School: "本校", Count: "45%"}, {School: "中科大", Count: "10%"}},
		},
	}
	return profile, plan
}

func TestDigest(t *testing.T) {
	profile, plan := lead()
	at := time.Date(2025, 9, 1, 10, 30, 0, 0, time.Local)
	d := NewDigest(profile, plan, at)

	assert.Equal(t, "南京大学 / 物理学", d.School)
	assert.Equal(t, "5/80 (大三)", d.Rank)
	assert.Equal(t, "最新保研率: 23% | 主要去向: 本校", d.Headline)
	assert.Contains(t, d.Text(), "提交时间：2025-09-01 10:30:00")
	assert.Contains(t, d.Subject(), "陈同学")

	empty := NewDigest(models.Profile{Name: "x"}, models.Plan{}, at)
	assert.Equal(t, "最新保研率: 未知 | 主要去向: 未知", empty.Headline)
	assert.Equal(t, "未填", empty.Contact)
	assert.Equal(t, "无", empty.Confusion)
}

func TestFeishuChannel_Target(t *testing.T) {
	hook := "https://open.feishu.cn/open-apis/bot/v2/hook/abc?x=1"
	direct := NewFeishuChannel(hook, "", nil)
	assert.Equal(t, hook, direct.Target())

	relayed := NewFeishuChannel(hook, "https://corsproxy.io/?", nil)
	assert.Equal(t, "https://corsproxy.io/?"+url.QueryEscape(hook), relayed.Target())

	assert.False(t, NewFeishuChannel("  ", "", nil).Configured())
}

func TestNotify_ReturnsBeforeDelivery(t *testing.T) {
	release := make(chan struct{})
	var (
		mu   sync.Mutex
		card map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		_ = json.Unmarshal(body, &card)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"code":0,"msg":"success"}`))
	}))
	defer srv.Close()

	ch := NewFeishuChannel(srv.URL, "", commonhttp.Wrap(srv.Client()))
	n := New(ch, 5*time.Second, logger.NewTestLogger(t))
	before := testutil.ToFloat64(metrics.LeadNotifications.WithLabelValues(config.ChannelFeishu, metrics.OutcomeSuccess))

	profile, plan := lead()
	returned := make(chan struct{})
	go func() {
		n.Notify(profile, plan)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on delivery")
	}

	close(release)
	require.NoError(t, n.Wait(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, card)
	assert.Equal(t, "interactive", card["msg_type"])
	raw, _ := json.Marshal(card)
	assert.Contains(t, string(raw), cardTitle)
	assert.Contains(t, string(raw), "最新保研率: 23% | 主要去向: 本校")
	assert.Contains(t, string(raw), "13800000000")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.LeadNotifications.WithLabelValues(config.ChannelFeishu, metrics.OutcomeSuccess)))
}

func TestNotify_FailuresAreSwallowed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"feishu code", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"code":19021,"msg":"sign match fail or timestamp is not within one hour from current time"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			n := New(NewFeishuChannel(srv.URL, "", commonhttp.Wrap(srv.Client())), time.Second, logger.NewTestLogger(t))
			before := testutil.ToFloat64(metrics.LeadNotifications.WithLabelValues(config.ChannelFeishu, metrics.OutcomeFailure))

			profile, plan := lead()
			assert.NotPanics(t, func() { n.Notify(profile, plan) })
			require.NoError(t, n.Wait(context.Background()))
			assert.Equal(t, before+1, testutil.ToFloat64(metrics.LeadNotifications.WithLabelValues(config.ChannelFeishu, metrics.OutcomeFailure)))
		})
	}
}

func TestFeishuChannel_NonJSONReplyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ch := NewFeishuChannel(srv.URL, "", commonhttp.Wrap(srv.Client()))
	profile, plan := lead()
	assert.NoError(t, ch.Deliver(context.Background(), NewDigest(profile, plan, time.Now())))
}

func TestNotify_OwnTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	n := New(NewFeishuChannel(srv.URL, "", commonhttp.Wrap(srv.Client())), 50*time.Millisecond, logger.NewTestLogger(t))
	profile, plan := lead()

	start := time.Now()
	n.Notify(profile, plan)
	require.NoError(t, n.Wait(context.Background()))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNotify_Skipped(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits++ }))
	defer srv.Close()

	for _, ch := range []Channel{NoneChannel{}, NewFeishuChannel("", "", commonhttp.Wrap(srv.Client()))} {
		n := New(ch, time.Second, logger.NewNoOpLogger())
		profile, plan := lead()
		n.Notify(profile, plan)
		require.NoError(t, n.Wait(context.Background()))
	}
	assert.Zero(t, hits)
}

type blockingChannel struct{ release chan struct{} }

func (blockingChannel) Name() string     { return "blocking" }
func (blockingChannel) Configured() bool { return true }
func (b blockingChannel) Deliver(ctx context.Context, _ Digest) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestWait_RespectsContext(t *testing.T) {
	ch := blockingChannel{release: make(chan struct{})}
	n := New(ch, time.Minute, logger.NewNoOpLogger())
	profile, plan := lead()
	n.Notify(profile, plan)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Wait(ctx), context.DeadlineExceeded)

	close(ch.release)
	require.NoError(t, n.Wait(context.Background()))
}

type mockSES struct {
	input *ses.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.input = params
	return &ses.SendEmailOutput{}, m.err
}

type mockSNS struct {
	input *sns.PublishInput
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.input = params
	return &sns.PublishOutput{}, nil
}

func TestSESChannel(t *testing.T) {
	mock := &mockSES{}
	ch := NewSESChannel(mock, "leads@unipath.cn", []string{"sales@unipath.cn"})
	require.True(t, ch.Configured())

	profile, plan := lead()
	require.NoError(t, ch.Deliver(context.Background(), NewDigest(profile, plan, time.Now())))
	assert.Equal(t, "leads@unipath.cn", *mock.input.Source)
	assert.Equal(t, []string{"sales@unipath.cn"}, mock.input.Destination.ToAddresses)
	assert.True(t, strings.Contains(*mock.input.Message.Body.Text.Data, "要不要跨保"))

	mock.err = errors.New("throttled")
	assert.Error(t, ch.Deliver(context.Background(), NewDigest(profile, plan, time.Now())))

	assert.False(t, NewSESChannel(mock, "", nil).Configured())
}

func TestSNSChannel(t *testing.T) {
	mock := &mockSNS{}
	ch := NewSNSChannel(mock, "arn:aws:sns:ap-east-1:123:leads")

	profile, plan := lead()
	require.NoError(t, ch.Deliver(context.Background(), NewDigest(profile, plan, time.Now())))
	assert.Equal(t, "arn:aws:sns:ap-east-1:123:leads", *mock.input.TopicArn)
	assert.Contains(t, *mock.input.Message, "陈同学")
}

func TestNewChannel(t *testing.T) {
	ch, err := NewChannel(context.Background(), config.NotifierConfig{Channel: config.ChannelNone}, nil)
	require.NoError(t, err)
	assert.False(t, ch.Configured())

	ch, err = NewChannel(context.Background(), config.NotifierConfig{
		Channel: config.ChannelFeishu,
		Feishu:  config.FeishuConfig{WebhookURL: "https://example.invalid/hook"},
	}, commonhttp.NewClient(time.Second))
	require.NoError(t, err)
	assert.True(t, ch.Configured())

	_, err = NewChannel(context.Background(), config.NotifierConfig{Channel: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestSend(t *testing.T) {
	profile, plan := lead()

	t.Run("delivered", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"code":0,"msg":"success"}`))
		}))
		defer srv.Close()

		n := New(NewFeishuChannel(srv.URL, "", commonhttp.Wrap(srv.Client())), time.Second, logger.NewTestLogger(t))
		sent, err := n.Send(context.Background(), profile, plan)
		require.NoError(t, err)
		assert.True(t, sent)
		assert.Equal(t, config.ChannelFeishu, n.Channel())
	})

	t.Run("rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		n := New(NewFeishuChannel(srv.URL, "", commonhttp.Wrap(srv.Client())), time.Second, logger.NewTestLogger(t))
		sent, err := n.Send(context.Background(), profile, plan)
		require.Error(t, err)
		assert.False(t, sent)
	})

	t.Run("not configured", func(t *testing.T) {
		n := New(NoneChannel{}, time.Second, logger.NewNoOpLogger())
		sent, err := n.Send(context.Background(), profile, plan)
		require.NoError(t, err)
		assert.False(t, sent)
	})
}
