package interpret

import (
	"sort"
	"strings"
)

const promptHeader = `あなたは求人検索クエリを解析する専門家です。
ユーザーの自然言語による検索文を解析し、以下のJSON形式で構造化データを返してください。
`

const promptContract = `# 出力JSON形式
{
  "keyword": "ベクトル検索用のキーワード（職種や技術スキルなど意味的に重要な部分）",
  "filters": {
    "salary": 最低年収（万円単位の整数、指定がなければnull）,
    "title": "タイトルに含まれるべき文字列（指定がなければnull）",
    "job_category": "上記リストから最も近い職種カテゴリ（指定がなければnull）",
    "business_type": "上記リストから最も近い事業種別（指定がなければnull）",
    "location": "所在地（都道府県または市区町村レベル、指定がなければnull）",
    "limit": 取得件数（指定がなければnull、デフォルトは5件）
  }
}

# 解析のポイント
- keyword: 探している職種の本質や必要なスキルを抽出（例: "Railsエンジニア" → "Rails エンジニア サーバーサイド開発"）
- salary: "年収800万" → 800、"500万以上" → 500、金額表記がなければnull
- job_category: 検索文から推測される職種カテゴリを上記リストから選択（完全一致でなくても良い）
- business_type: 「児童発達支援」「就労支援」などのキーワードがあれば対応する事業種別を選択
- location: "都内" → "東京都"、"渋谷" → "渋谷区"、"横浜" → "横浜市" のように具体的な地名に変換
- 指定がない項目はnullにする（空文字列ではなくnull）

# 例
入力: "都内で年収800万以上のRailsエンジニア"
出力:
{
  "keyword": "Rails エンジニア サーバーサイド開発 Ruby",
  "filters": {
    "salary": 800,
    "title": null,
    "job_category": "IT・エンジニア職",
    "business_type": null,
    "location": "東京都",
    "limit": null
  }
}

入力: "児童発達支援の保育士を探しています"
出力:
{
  "keyword": "保育士 児童 発達支援 子ども",
  "filters": {
    "salary": null,
    "title": "保育士",
    "job_category": "福祉専門職",
    "business_type": "児童発達支援",
    "location": null,
    "limit": null
  }
}

必ずJSON形式のみを返してください。説明文は不要です。
`

// BuildInstructions renders the instruction prompt with the current vocabularies.
// Lists are sorted so the prompt is deterministic for a given corpus.
func BuildInstructions(categories, businessTypes []string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n# 利用可能な職種カテゴリ（job_category）\n")
	b.WriteString(joinSorted(categories))
	b.WriteString("\n\n# 利用可能な事業種別（business_type）\n")
	b.WriteString(joinSorted(businessTypes))
	b.WriteString("\n\n")
	b.WriteString(promptContract)
	return b.String()
}

func joinSorted(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
