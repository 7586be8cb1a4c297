package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"unipath-planner/internal/common/config"
	commonhttp "unipath-planner/internal/common/http"
)

// FeishuChannel posts an interactive card to a Feishu bot webhook, optionally
// through a relay that takes the escaped webhook URL as its query string.
type FeishuChannel struct {
	webhook string
	relay   string
	client  *commonhttp.Client
}

func NewFeishuChannel(webhook, relay string, client *commonhttp.Client) *FeishuChannel {
	return &FeishuChannel{
		webhook: strings.TrimSpace(webhook),
		relay:   strings.TrimSpace(relay),
		client:  client,
	}
}

func (f *FeishuChannel) Name() string { return config.ChannelFeishu }

func (f *FeishuChannel) Configured() bool { return f.webhook != "" }

// Target is the URL the card is posted to.
func (f *FeishuChannel) Target() string {
	if f.relay == "" {
		return f.webhook
	}
	return f.relay + url.QueryEscape(f.webhook)
}

type feishuReply struct {
	Code       *int   `json:"code"`
	Msg        string `json:"msg"`
	StatusCode *int   `json:"StatusCode"`
}

func (f *FeishuChannel) Deliver(ctx context.Context, d Digest) error {
	resp, err := f.client.PostJSON(ctx, f.Target(), Card(d), nil)
	if err != nil {
		return fmt.Errorf("post card: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("feishu returned status %d: %s", resp.StatusCode, truncate(string(resp.Body), 200))
	}

	var reply feishuReply
	if err := json.Unmarshal(resp.Body, &reply); err != nil {
		// relays may answer with an empty or non-JSON body
		return nil
	}
	code := reply.Code
	if code == nil {
		code = reply.StatusCode
	}
	if code != nil && *code != 0 {
		return fmt.Errorf("feishu rejected card: code %d: %s", *code, reply.Msg)
	}
	return nil
}

// Card builds the interactive message payload for a digest.
func Card(d Digest) map[string]interface{} {
	field := func(label, value string) map[string]interface{} {
		return map[string]interface{}{
			"is_short": true,
			"text":     larkMD(fmt.Sprintf("**%s**\n%s", label, value)),
		}
	}
	block := func(label, value string) map[string]interface{} {
		return map[string]interface{}{"tag": "div", "text": larkMD(fmt.Sprintf("**%s**\n%s", label, value))}
	}

	return map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"config": map[string]interface{}{"wide_screen_mode": true},
			"header": map[string]interface{}{
				"title":    plainText(cardTitle),
				"template": "blue",
			},
			"elements": []interface{}{
				map[string]interface{}{
					"tag": "div",
					"fields": []interface{}{
						field("👤 姓名：", d.Name),
						field("📞 联系方式：", "<font color='red'>"+d.Contact+"</font>"),
						field("🏫 院校专业：", d.School),
						field("📊 排名/G：", d.Rank),
					},
				},
				map[string]interface{}{"tag": "hr"},
				block("❓ 核心咨询问题 (Confusion)：", d.Confusion),
				block("📈 本校保研数据概览：", d.Headline),
				block("💡 AI 诊断摘要：", d.Summary),
				map[string]interface{}{
					"tag": "action",
					"actions": []interface{}{
						map[string]interface{}{
							"tag":          "button",
							"text":         plainText("复制联系方式"),
							"type":         "default",
							"copy_content": d.Contact,
						},
					},
				},
				map[string]interface{}{
					"tag":      "note",
					"elements": []interface{}{plainText("提交时间: " + d.SubmittedAt.Format(timeLayout))},
				},
			},
		},
	}
}

func larkMD(content string) map[string]interface{} {
	return map[string]interface{}{"tag": "lark_md", "content": content}
}

func plainText(content string) map[string]interface{} {
	return map[string]interface{}{"tag": "plain_text", "content": content}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
