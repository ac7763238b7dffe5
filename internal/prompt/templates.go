package prompt

import "journal-backend/internal/model"

const (
	writerSystem = "[분석 요청]\n당신은 기사를 작성하는 전문가입니다."

	factCheckSystem = "[분석 요청]\n당신은 팩트체크 전문가입니다. 주어진 내용의 사실관계를 철저히 검증해주세요."

	dataAnalysisSystem = "[분석 요청]\n당신은 데이터 분석 전문가입니다. 주어진 텍스트에서 핵심 키워드를 추출하고 내용을 요약해주세요."

	grammarSystem = "[분석 요청]\n당신은 한국어 맞춤법과 문법 전문가입니다. 주어진 텍스트의 맞춤법과 문법을 철저히 검토하고 개선점을 제안해주세요."
)

const (
	rewriteTemplate = `다음 텍스트를 {emoji_instruction}{style} 스타일로 다시 작성해주세요:

[스타일 가이드라인]
{style_guide}{conditions}

[원문]
{text}`

	factCheckTemplate = `다음 텍스트의 사실 관계를 검증하고 신뢰할 수 있는 정보와 검증이 필요한 정보를 구분해서 분석해주세요:

{text}

[분석 형식]
1. 신뢰할 수 있는 정보:
- (정보 1)
- (정보 2)

2. 검증이 필요한 정보:
- (정보 1): (검증 필요 이유)
- (정보 2): (검증 필요 이유)`

	dataAnalysisTemplate = `다음 텍스트를 분석하여 핵심 키워드를 추출하고 내용을 요약해주세요:

{text}

[분석 형식]
1. 핵심 키워드 (중요도 순):
- 키워드1: (관련 문맥)
- 키워드2: (관련 문맥)
- 키워드3: (관련 문맥)

2. 주요 주제:
- (주제 1)
- (주제 2)

3. 내용 요약:
(300자 이내로 핵심 내용 요약)

4. 추가 분석:
- 글의 톤과 스타일:
- 주요 논점:
- 데이터/통계 정보:`

	grammarTemplate = `다음 텍스트의 맞춤법과 문법을 검사하고 상세한 분석과 수정 사항을 제안해주세요:

[원문]
{text}

[분석 요청사항]
1. 맞춤법 오류:
- 오류 단어 → 올바른 표현
- 오류 이유 설명

2. 문법적 개선사항:
- 어색한 문장 구조
- 조사 사용의 적절성
- 문장 호응 관계

3. 문체 및 스타일:
- 일관성 있는 어조 사용
- 적절한 존댓말/반말 사용
- 전문용어 사용의 적절성

4. 수정된 전체 텍스트:
(모든 수정사항이 반영된 최종본)

5. 추가 제안사항:
- 가독성 향상을 위한 제안
- 문장 구조 개선 제안`

	seoTemplate = `다음 텍스트를 바탕으로 SEO에 최적화된 제목을 5개 생성해주세요:

{text}

[생성 형식]
1. (제목 1) - (SEO 최적화 포인트)
2. (제목 2) - (SEO 최적화 포인트)
3. (제목 3) - (SEO 최적화 포인트)
4. (제목 4) - (SEO 최적화 포인트)
5. (제목 5) - (SEO 최적화 포인트)`

	pivotTemplate = "다음 텍스트와 관련된 다른 주제나 관점으로 변경해서 작성해주세요:\n\n{text}"

	fullRewriteTemplate = "다음 텍스트를 완전히 새로운 방식으로 재작성해주세요:\n\n{text}"
)

// EmojiInstruction useEmoji 为真时加在风格名之前
const EmojiInstruction = "이모티콘을 적절히 사용하여 "

var styleGuides = map[string]string{
	"권위있는 기사체": `- 객관적이고 공식적인 톤 유지
- 정확한 사실과 데이터 중심
- 전문가적인 분석과 통찰 포함
- 격식있는 어휘 사용`,
	"르포 기사체": `- 현장감 있는 묘사
- 구체적인 디테일 포함
- 인터뷰와 증언 활용
- 생생한 스토리텔링`,
	"세련된 뉴스레터체": `- 친근하고 대화체적인 톤
- 핵심 포인트 강조
- 간결하고 명확한 문장
- 독자와 공감대 형성`,
	"AXIOS 기사체": `- 핵심 정보 먼저 제시
- 짧고 명확한 문단
- 불렛 포인트 활용
- Why it matters 섹션 포함`,
}

type taskSpec struct {
	system   string
	template string
	tier     model.ModelTier
}

var taskSpecs = map[model.TaskKind]taskSpec{
	model.TaskRewrite:      {writerSystem, rewriteTemplate, model.TierPrimary},
	model.TaskFactCheck:    {factCheckSystem, factCheckTemplate, model.TierPrimary},
	model.TaskDataAnalysis: {dataAnalysisSystem, dataAnalysisTemplate, model.TierAnalysis},
	model.TaskGrammarCheck: {grammarSystem, grammarTemplate, model.TierAnalysis},
	model.TaskSeoTitle:     {writerSystem, seoTemplate, model.TierPrimary},
	model.TaskRelatedPivot: {writerSystem, pivotTemplate, model.TierPrimary},
	model.TaskFullRewrite:  {writerSystem, fullRewriteTemplate, model.TierPrimary},
}
