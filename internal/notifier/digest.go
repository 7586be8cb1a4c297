package notifier

import (
	"fmt"
	"strings"
	"time"

	"unipath-planner/internal/models"
)

const (
	cardTitle  = "🚀 新线索：好保研AI规划"
	timeLayout = "2006-01-02 15:04:05"
)

// Digest is the lead summary sent to the sales channel.
type Digest struct {
	Name        string
	Contact     string
	School      string
	Rank        string
	Confusion   string
	Headline    string
	Summary     string
	SubmittedAt time.Time
}

func NewDigest(p models.Profile, plan models.Plan, at time.Time) Digest {
	rate, destination := plan.HeadlineStat()
	return Digest{
		Name:        p.Name,
		Contact:     orDefault(p.Contact, "未填"),
		School:      p.University + " / " + p.Major,
		Rank:        fmt.Sprintf("%s (%s)", p.Rank, p.Grade),
		Confusion:   orDefault(p.Confusion, "无"),
		Headline:    fmt.Sprintf("最新保研率: %s | 主要去向: %s", rate, destination),
		Summary:     orDefault(plan.Summary, "生成中..."),
		SubmittedAt: at,
	}
}

// Subject is a one-line title for mail-like channels.
func (d Digest) Subject() string {
	return fmt.Sprintf("%s - %s", cardTitle, d.Name)
}

// Text renders the digest as plain text.
func (d Digest) Text() string {
	var b strings.Builder
	b.WriteString(cardTitle + "\n\n")
	fmt.Fprintf(&b, "姓名：%s\n", d.Name)
	fmt.Fprintf(&b, "联系方式：%s\n", d.Contact)
	fmt.Fprintf(&b, "院校专业：%s\n", d.School)
	fmt.Fprintf(&b, "排名/年级：%s\n\n", d.Rank)
	fmt.Fprintf(&b, "核心咨询问题：%s\n\n", d.Confusion)
	fmt.Fprintf(&b, "本校保研数据概览：%s\n\n", d.Headline)
	fmt.Fprintf(&b, "AI 诊断摘要：%s\n\n", d.Summary)
	fmt.Fprintf(&b, "提交时间：%s\n", d.SubmittedAt.Format(timeLayout))
	return b.String()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
