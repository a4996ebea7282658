package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

func TestHeuristic_Classify(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		name string
		want Category
	}{
		// 名单
		{"周杰倫", Male},
		{"  周杰倫  ", Male},
		{"蔡依林", Female},
		{"五月天", Group},
		{"李宗盛鄭怡", Chorus},
		{"夜來香", Other},
		{"張三李四", Group},
		{"張三李四鄧福如", Other},
		{"Adams & Lange", Other},
		// 非歌手特征
		{"海角七號主題曲", Other},
		{"鐵達尼號插曲", Other},
		{"Copy BT07-PZ", Other},
		// 团体关键字
		{"新寶島樂團", Group},
		{"The Killers", Group},
		{"RubberBand", Group},
		{"Vienna Boys Choir", Group},
		// 合唱
		{"Jay feat. Band", Chorus},
		{"A-Mei/Jolin", Chorus},
		{"歌手甲、歌手乙", Chorus},
		{"群星", Chorus},
		{"黃鴻升.柯有倫", Chorus},
		{"Johnny[Live]", Chorus},
		{"方順吉 吳欣達", Chorus},
		// 空格但只有一段中文
		{"周杰倫 Jay Chou", Male},
		{"阿明 (Ming)", Male},
		// 兜底
		{"王小婷", Female},
		{"李大明", Male},
		{"Unknown Artist", Male},
		{"", Male},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Classify(tt.name))
		})
	}
}

func TestHeuristic_NeverPanics(t *testing.T) {
	h := NewHeuristic()
	inputs := []string{"", " ", "\x00", "\xff\xfe", "[]", "()", ".", "  .  ", "🎤🎶", "the ", "band&"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			c := h.Classify(in)
			assert.Contains(t, Categories, c)
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("female")
	assert.True(t, ok)
	assert.Equal(t, Female, c)

	_, ok = ParseCategory("robot")
	assert.False(t, ok)
}

func TestMatchLength(t *testing.T) {
	assert.True(t, MatchLength("五月天", 0))
	assert.True(t, MatchLength("五月天", 3))
	assert.False(t, MatchLength("五月天", 2))
	assert.True(t, MatchLength("Michael Learns To Rock", LongNameThreshold))
	assert.True(t, MatchLength("Michael Learns To Rock", 15), "thresholds above 11 mean 11 or more")
	assert.False(t, MatchLength("周杰倫", LongNameThreshold))
}

func TestGroupArtists(t *testing.T) {
	songs := []domain.Song{
		{ID: "1", Artist: "Celine Dion"},
		{ID: "2", Artist: "Adele"},
		{ID: "3", Artist: " Adele "},
		{ID: "4", Artist: "Beyoncé"},
		{ID: "5", Artist: "Deleted Singer", IsDeleted: true},
		{ID: "6", Artist: "   "},
	}

	groups := GroupArtists(songs, Func(func(string) Category { return Female }))
	assert.Equal(t, []string{"Adele", "Beyoncé", "Celine Dion"}, groups[Female])
	for _, c := range []Category{Male, Group, Chorus, Other} {
		assert.NotNil(t, groups[c])
		assert.Empty(t, groups[c])
	}

	t.Run("unknown category falls back to Other", func(t *testing.T) {
		groups := GroupArtists(songs, Func(func(string) Category { return "Robot" }))
		assert.Len(t, groups[Other], 3)
	})

	t.Run("filter by length", func(t *testing.T) {
		assert.Equal(t, []string{"Adele"}, Filter(groups, Female, 5))
		assert.Equal(t, []string{"Celine Dion"}, Filter(groups, Female, LongNameThreshold))
	})
}
