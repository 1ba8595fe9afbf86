package clean

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanRemovesSections(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "cta opener",
			input:    "Ready to transform your home? Call us!\n\nNext real paragraph.",
			expected: "Next real paragraph.",
		},
		{
			name:     "cta heading mid document",
			input:    "Intro.\n\n## Ready to start your kitchen remodel?\nWe can help.\n\nOutro.",
			expected: "Intro.\n\nOutro.",
		},
		{
			name:     "contact line at end",
			input:    "Body text.\n\nContact us today for a walkthrough.",
			expected: "Body text.",
		},
		{
			name:     "free quote",
			input:    "Body.\n\n**Get a free estimate** from our team.\n\nMore.",
			expected: "Body.\n\nMore.",
		},
		{
			name:     "editor note",
			input:    "Editor's note: swap the hero image\nbefore publish\n\nActual content.",
			expected: "Actual content.",
		},
		{
			name:     "raw notes marker",
			input:    "[Raw notes]: grout, tile, sealant\n\nGrout guide.",
			expected: "Grout guide.",
		},
		{
			name:     "bracket pair",
			input:    "Start.\n\n[cta]Book now\n\nand save[/cta]\n\nEnd.",
			expected: "Start.\n\nEnd.",
		},
		{
			name:     "comment pair",
			input:    "Start.\n\n<!-- cta -->Promo<!-- /cta -->\n\nEnd.",
			expected: "Start.\n\nEnd.",
		},
		{
			name:     "bracket pair before trailing spaces",
			input:    "Our kitchen project.\n\n[cta]Book a free consultation[/cta]\n  ",
			expected: "Our kitchen project.",
		},
		{
			name:     "comment pair before trailing tab",
			input:    "Our bath project.\n\n<!-- cta -->Call for pricing<!-- /cta -->\n\t\n \t",
			expected: "Our bath project.",
		},
		{
			name:     "cta opener mid paragraph keeps the break",
			input:    "Intro\nReady to transform your kitchen? Call.\n\nNext",
			expected: "Intro\n\nNext",
		},
		{
			name:     "note mid paragraph keeps the break",
			input:    "Measure twice.\nTODO: add photos\n\nCut once.",
			expected: "Measure twice.\n\nCut once.",
		},
		{
			name:     "crlf input",
			input:    "One.\r\n\r\nReady to begin? Reach out.\r\n\r\nTwo.",
			expected: "One.\n\nTwo.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestCleanDedupesParagraphs(t *testing.T) {
	assert.Equal(t, "Hello.\n\nWorld.", Clean("Hello.\n\nHello.\n\nWorld."))
	assert.Equal(t, "A\n\nB", Clean("A\n\n\n\nB\n\n\nA\n"))
}

func TestCleanKeepsOrdinaryText(t *testing.T) {
	in := "# Choosing Tile\n\nPorcelain is durable.\n- slip resistant\n- easy to clean\n\nWe are ready to help? Not a CTA line start."
	assert.Equal(t, in, Clean(in))
}

func TestCleanIsIdempotentAndNeverLonger(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"Ready to transform your home? Call us!\n\nNext real paragraph.",
		"Hello.\n\nHello.\n\nWorld.",
		"A  \n\n\n\nB\t\n \nA",
		"Intro\n\nCall us now!\nLine two\n\n\n\nTODO: fix\n\nIntro",
		"[cta]x[/cta]\n\n<!-- boilerplate -->y<!-- /boilerplate -->",
		"  indented first\n\nsecond\r\n\r\nsecond",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "Clean not idempotent for %q", in)
		assert.LessOrEqual(t, len(once), len(in), "Clean lengthened %q", in)
	}
}

func TestCleanIsIdempotentRandomized(t *testing.T) {
	pieces := []string{
		"Intro.", "Tile guide", "[cta]", "[/cta]", "Book now",
		"<!-- cta -->", "<!-- /cta -->", "<!-- boilerplate -->", "<!-- /boilerplate -->",
		"Ready to transform your home?", "Contact us today", "TODO: x", "## ",
		"\n", "\n\n", "\r\n", " ", "\t",
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20000; i++ {
		var b strings.Builder
		for n := rng.Intn(14); n >= 0; n-- {
			b.WriteString(pieces[rng.Intn(len(pieces))])
		}
		in := b.String()
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Fatalf("Clean not idempotent for %q:\n once:  %q\n twice: %q", in, once, twice)
		}
		if len(once) > len(in) {
			t.Fatalf("Clean lengthened %q to %q", in, once)
		}
	}
}
