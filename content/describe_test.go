package content

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFirstParagraph(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"markdown", "# Title\n\nFirst **bold** line\ncontinues here.\n\nSecond.", "First bold line continues here."},
		{"skips image", "![Hero](/images/a.jpg)\n\nReal text.", "Real text."},
		{"link text", "See [our guide](/blog) today.", "See our guide today."},
		{"html", "<div><p> </p><p>Hello <b>there</b></p></div>", "Hello there"},
		{"empty", "", ""},
		{"tight list has no paragraph", "- one\n- two", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstParagraph(tt.body))
		})
	}
}

func TestDescribePriority(t *testing.T) {
	assert.Equal(t, "desc", Describe(" desc ", "excerpt", "body"))
	assert.Equal(t, "excerpt", Describe("", "excerpt", "body"))
	assert.Equal(t, "body", Describe("", "  ", "body"))
	assert.Equal(t, "", Describe("", "", ""))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("remodel ", 40)
	got := Truncate(strings.TrimSpace(long), MaxDescription)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxDescription)
	assert.True(t, strings.HasSuffix(got, "remodel…"))

	assert.Equal(t, "short", Truncate("short", MaxDescription))

	word := strings.Repeat("é", 200)
	got = Truncate(word, 10)
	assert.Equal(t, 10, utf8.RuneCountInString(got))
}
