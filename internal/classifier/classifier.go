// Package classifier 歌手分类。
//
// 分类规则可替换：服务层只依赖 Classifier 接口，默认实现 Heuristic
// 由名单加字面规则组成，对任意输入都返回一个分类。
package classifier

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

// Category 歌手分类
type Category string

const (
	Male   Category = "Male"
	Female Category = "Female"
	Group  Category = "Group"
	Chorus Category = "Chorus"
	Other  Category = "Other"
)

// Categories 固定展示顺序
var Categories = []Category{Male, Female, Group, Chorus, Other}

// ParseCategory 解析分类名，不区分大小写
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// LongNameThreshold 字数筛选时 >= 该值视为同一档
const LongNameThreshold = 11

// Classifier 歌手分类器
type Classifier interface {
	Classify(name string) Category
}

// Func 函数适配器
type Func func(name string) Category

// Classify 实现 Classifier
func (f Func) Classify(name string) Category {
	return f(name)
}

// Heuristic 名单优先，其次按名称特征判断
type Heuristic struct {
	others  map[string]struct{}
	chorus  map[string]struct{}
	bands   map[string]struct{}
	females map[string]struct{}
	males   map[string]struct{}
}

// NewHeuristic 使用内置名单创建分类器
func NewHeuristic() *Heuristic {
	return &Heuristic{
		others:  set(knownOthers),
		chorus:  set(knownChorus),
		bands:   set(knownBands),
		females: set(knownFemales),
		males:   set(knownMales),
	}
}

func set(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

var (
	bandKeywords = []string{"樂團", "Orchestra", "Choir"}

	chorusSeparators = []string{
		"/", " feat", " ft", " vs ", " x ", " with ", "合唱", "對唱", "、", "+", "&",
		",", "，", " and ", ";", "_", "|", "群星", "全體歌手", "various", "featuring",
	}

	femaleChars = []rune("妃婷娜玲雅惠妹琪萱怡茹淑娟芬芳儀靜慧瑩慈珊琳潔貞萍薇燕鳳梅蘭娥姬仙芸")
)

// Classify 按以下顺序判断，命中即返回：
//  1. 非歌手名单，或含「插曲」「主題曲」，或以 "Copy " 开头
//  2. 合唱、团体、女歌手、男歌手名单
//  3. 团体关键字
//  4. 合唱分隔符
//  5. 中文名中的点号、方括号
//  6. 空格分隔且至少两段含中文
//  7. 常见女性用字
//  8. 其余归为男歌手
func (h *Heuristic) Classify(name string) Category {
	n := strings.TrimSpace(name)
	lower := strings.ToLower(n)

	if _, ok := h.others[n]; ok {
		return Other
	}
	if strings.Contains(n, "插曲") || strings.Contains(n, "主題曲") || strings.HasPrefix(n, "Copy ") {
		return Other
	}

	if _, ok := h.chorus[n]; ok {
		return Chorus
	}
	if _, ok := h.bands[n]; ok {
		return Group
	}
	if _, ok := h.females[n]; ok {
		return Female
	}
	if _, ok := h.males[n]; ok {
		return Male
	}

	if containsAny(n, bandKeywords) || strings.HasPrefix(lower, "the ") {
		return Group
	}
	// "RubberBand" 算团体，"Jay feat. Band" 不算
	if strings.Contains(lower, "band") && !strings.Contains(lower, "feat") && !strings.Contains(lower, "&") {
		return Group
	}

	if containsAny(lower, chorusSeparators) {
		return Chorus
	}
	if strings.Contains(n, ".") && hasHan(n) {
		return Chorus
	}
	if strings.Contains(n, "[") && strings.Contains(n, "]") {
		return Chorus
	}

	// "方順吉 吳欣達" 是对唱，"周杰倫 Jay Chou" 不是
	if strings.Contains(n, " ") && !strings.ContainsAny(n, "()") {
		han := 0
		for _, part := range strings.Split(n, " ") {
			if hasHan(part) {
				han++
			}
		}
		if han >= 2 {
			return Chorus
		}
	}

	if strings.ContainsFunc(n, func(r rune) bool { return slices.Contains(femaleChars, r) }) {
		return Female
	}
	return Male
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// hasHan 是否含 CJK 基本区汉字
func hasHan(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return r >= 0x4e00 && r <= 0x9fa5
	})
}

// NameLength 按字符数计算名称长度
func NameLength(name string) int {
	return utf8.RuneCountInString(name)
}

// MatchLength 字数筛选。length <= 0 不筛选；length >= LongNameThreshold 表示该字数以上
func MatchLength(name string, length int) bool {
	switch {
	case length <= 0:
		return true
	case length >= LongNameThreshold:
		return NameLength(name) >= LongNameThreshold
	default:
		return NameLength(name) == length
	}
}

// GroupArtists 从曲库提取歌手并分类。已删除歌曲与空歌手名跳过，
// 名称去空白后去重，每类按繁体中文排序。
func GroupArtists(songs []domain.Song, c Classifier) map[Category][]string {
	seen := make(map[string]struct{})
	out := make(map[Category][]string, len(Categories))
	for _, cat := range Categories {
		out[cat] = []string{}
	}

	for i := range songs {
		s := &songs[i]
		if s.IsDeleted {
			continue
		}
		name := strings.TrimSpace(s.Artist)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		cat := c.Classify(name)
		if _, ok := out[cat]; !ok {
			cat = Other
		}
		out[cat] = append(out[cat], name)
	}

	// Collator 非并发安全，每次新建
	col := collate.New(language.TraditionalChinese)
	for _, names := range out {
		col.SortStrings(names)
	}
	return out
}

// Filter 返回某分类下符合字数筛选的歌手
func Filter(groups map[Category][]string, cat Category, length int) []string {
	var out []string
	for _, name := range groups[cat] {
		if MatchLength(name, length) {
			out = append(out, name)
		}
	}
	return out
}
