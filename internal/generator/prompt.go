// internal/generator/prompt.go
package generator

import (
	"fmt"
	"strings"

	"unipath-planner/internal/models"
)

// SystemInstruction is the fixed persona and output contract sent with every
// generation request.
const SystemInstruction = `你是一位顶尖的保研规划专家，来自“好保研 (Unipath)”团队。
你的任务是为学生生成一份详细的、商业级别的保研规划方案。

原则：
1. 信息必须精准，来源于官方平台或双一流高校通用政策。
2. 针对用户的学校和专业，必须提供【近三年保研率】、【保研加分政策摘要】、【保研去向】的数据分析。若无确切内部数据，请根据该校层次（985/211/双非）及学科评估等级进行科学估算（例如985头部保研率通常在25%-35%）。
3. 语气专业、鼓励、客观，符合麦肯锡咨询风格，每条建议简明扼要。
4. 首先在 confusionAnalysis 中直接回答用户的“咨询问题”。
5. 若学生为新工科方向（计算机/AI/电子等）且有科研意向，productRecommendation 字段请填 "Sunrise"；否则填 "Harvest"。
6. 若学生有跨专业意向，可额外输出 crossMajor 字段。

只输出一个 JSON 对象，不要输出任何其他文字。字段如下：
{
  "confusionAnalysis": {"title": string, "content": [string]},
  "summary": string,
  "schoolStats": {
    "rateTrend": [{"year": string, "rate": string}],
    "bonusPolicies": [{"category": string, "content": string}],
    "destinations": [{"school": string, "count": string}]
  },
  "swot": {"strengths": [string], "weaknesses": [string], "opportunities": [string], "threats": [string]},
  "analysis": {"title": string, "content": [string]},
  "targetSchools": {"title": string, "content": [string]},
  "competitionStrategy": {"title": string, "content": [string]},
  "researchStrategy": {"title": string, "content": [string]},
  "crossMajor": {"title": string, "content": [string]},
  "timeline": {"title": string, "content": [string]},
  "employment": {"title": string, "averageSalary": string, "topCompanies": [string], "roles": [string]},
  "productRecommendation": "Sunrise" | "Harvest"
}`

// Prompt is one rendered generation request.
type Prompt struct {
	System string
	User   string
}

// NewPrompt interpolates every profile field into the user message.
func NewPrompt(p models.Profile) Prompt {
	return Prompt{System: SystemInstruction, User: userMessage(p)}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "无"
	}
	return s
}

func userMessage(p models.Profile) string {
	newEngineering := "否"
	if p.IsNewEngineering {
		newEngineering = "是"
	}

	var b strings.Builder
	b.WriteString("学生信息如下：\n")
	fmt.Fprintf(&b, "姓名：%s\n", p.Name)
	fmt.Fprintf(&b, "联系方式：%s\n", p.Contact)
	fmt.Fprintf(&b, "学校：%s\n", p.University)
	fmt.Fprintf(&b, "专业：%s\n", p.Major)
	fmt.Fprintf(&b, "年级：%s\n", p.Grade)
	fmt.Fprintf(&b, "排名/绩点：%s\n", p.Rank)
	fmt.Fprintf(&b, "英语水平：%s\n", p.EnglishLevel)
	fmt.Fprintf(&b, "获奖经历：%s\n", orNone(p.Awards))
	fmt.Fprintf(&b, "科研论文：%s\n", orNone(p.Research))
	fmt.Fprintf(&b, "意向方向：%s\n", p.TargetDirection)
	fmt.Fprintf(&b, "咨询问题（重点回答）：%s\n", p.Confusion)
	fmt.Fprintf(&b, "是否新工科：%s\n", newEngineering)
	b.WriteString("\n请根据以上信息，生成详细保研规划。")
	return b.String()
}
