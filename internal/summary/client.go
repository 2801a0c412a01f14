// Package summary turns a set of fetched news items into the raw text of a
// structured daily digest by calling a remote generation endpoint, trying
// an ordered list of models until one succeeds.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/erickiiim/newsroom/internal/model"
)

// Generator is a single call against one model of a remote generation
// service. The service may reject a given model (not found, quota,
// permission); that error belongs to this one attempt only.
type Generator interface {
	Generate(ctx context.Context, modelName, prompt string) (string, error)
}

const noNewsResponse = `{"headline": "No news items to analyze.", "trends": "", "insight": ""}`

type Client struct {
	gen    Generator
	models []string
}

// New builds a summarizer client over gen. models is the ordered fallback
// list; each entry is tried at most once per Summarize call.
func New(gen Generator, models []string) *Client {
	return &Client{gen: gen, models: models}
}

// Summarize returns the raw digest text for items. Empty input
// short-circuits to a fixed no-news response without a generate call. If
// every model fails the result is a deterministic JSON payload whose
// headline carries an "Error:" marker; callers must detect it and refuse
// to archive.
func (c *Client) Summarize(ctx context.Context, items []model.Item, category model.Category) string {
	if len(items) == 0 {
		return noNewsResponse
	}

	prompt := buildPrompt(items, category)

	var lastErr error
	for _, name := range c.models {
		log.Printf("[INFO] trying model %s", name)

		text, err := c.gen.Generate(ctx, name, prompt)
		if err != nil {
			lastErr = err
			log.Printf("[ERROR] model %s failed: %v", name, err)
			continue
		}

		log.Printf("[INFO] success with model %s", name)
		return stripFences(text)
	}

	return errorResponse(lastErr)
}

// errorResponse encodes the sentinel through the JSON encoder so the
// payload stays valid regardless of what the error message contains.
func errorResponse(err error) string {
	sentinel := model.Digest{
		Headline: "Error: All models failed.",
		Trends:   fmt.Sprintf("Last error: %v", err),
	}
	out, _ := json.Marshal(sentinel)
	return string(out)
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func buildPrompt(items []model.Item, category model.Category) string {
	p := profileFor(category)

	var news strings.Builder
	for _, item := range items {
		news.WriteString(fmt.Sprintf("- %s : %s\n", item.Title, item.Summary))
	}

	return fmt.Sprintf(promptTemplate, p.role, p.focus, news.String())
}

const promptTemplate = `당신은 %s입니다.
아래 제공된 뉴스 데이터(제목 및 요약)를 바탕으로 %s 브리핑해주세요.

[작성 규칙]
1. 각 소식의 제목은 반드시 **[제목]** 형식으로 작성하여 강조해주세요. (이 형식이 디자인에 적용됩니다.)
2. 제목 바로 아래 줄에 내용을 작성하고, 각 소식 사이에는 반드시 빈 줄(엔터)을 하나 추가해주세요.
3. 불필요한 기호( - , bullet point 등)는 사용하지 말고, 깔끔한 줄글 기사 형식으로 작성하세요.

[형식 예시]
**[뉴스 제목 1]**
뉴스 내용이 여기에 옵니다. 자연스러운 문장으로 요약합니다.

**[뉴스 제목 2]**
다음 뉴스 내용이 옵니다...

[뉴스 데이터]
%s

[필수 요청 사항]
반드시 아래의 **JSON 형식**으로만 응답해주세요. Markdown 포맷팅(` + "```json" + ` 등)없이 순수 JSON 문자열만 반환하세요.

**작성 지침 (매우 중요):**
1. **절대 리스트 형식(['...'])으로 작성하지 마십시오.** 하나의 긴 문자열로 작성하세요.
2. 줄바꿈이 필요한 곳에는 ` + "`\\n`" + `을 사용하여 명확히 구분해 주세요.
3. 뉴스 기사처럼 자연스럽고 전문적인 어조로 브리핑하듯 작성하세요.
4. 형식 예시: "**[제목]** 내용입니다.\n\n**[다음 제목]** 다음 내용입니다..."

{
  "headline": "(가장 중요한 뉴스 1~2개. **[제목]** 형식 사용하여 작성)",
  "trends": "(카테고리별 트렌드. **[카테고리]** 형식 사용하여 작성)",
  "insight": "(기술적 전망. 전문적인 뉴스 어조로 작성)"
}

내용은 한국어로 작성하고, 전문성 있으면서도 읽기 편한 톤으로 작성해주세요.
`
