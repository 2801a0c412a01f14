package summary

import "github.com/erickiiim/newsroom/internal/model"

// profile is the category-specific framing injected into the prompt.
// Adding a vertical means adding one table entry, nothing else.
type profile struct {
	role  string
	focus string
}

var profiles = map[model.Category]profile{
	model.CategoryIT: {
		role:  "IT 전문 뉴스 큐레이터",
		focus: "오늘 가장 중요한 IT 트렌드를 분석해서",
	},
	model.CategoryMVNO: {
		role:  "통신 및 알뜰폰(MVNO) 산업 전문가",
		focus: "다음 키워드(MVNO, 알뜰폰, 통신사, 전파사용료, 망 도매대가)를 중심으로 관련 소식을 분석해서",
	},
	model.CategoryKStartup: {
		role:  "한국 창업 생태계 및 스타트업 전문 애널리스트",
		focus: "다음 키워드(스타트업, 창업, 투자유치, VC, 액셀러레이터, 정부지원, 창업정책, K-startup, 유니콘, 시리즈A/B, 팁스, 중기부)를 중심으로 오늘의 주요 창업 생태계 동향을 분석해서",
	},
}

func profileFor(category model.Category) profile {
	if p, ok := profiles[category]; ok {
		return p
	}
	return profiles[model.CategoryIT]
}
