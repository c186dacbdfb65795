package segment

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitter_Sentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "Simple sentences",
			text: "This is a sentence. This is another sentence! And a third one?",
			want: []string{"This is a sentence.", "This is another sentence!", "And a third one?"},
		},
		{
			name: "Title abbreviation",
			text: "Dr. Smith arrived. He was late.",
			want: []string{"Dr. Smith arrived.", "He was late."},
		},
		{
			name: "Abbreviation before capital",
			text: "Bring pens, paper, etc. The rest is provided.",
			want: []string{"Bring pens, paper, etc.", "The rest is provided."},
		},
		{
			name: "Abbreviation mid sentence",
			text: "Use a tool, e.g. a hammer.",
			want: []string{"Use a tool, e.g. a hammer."},
		},
		{
			name: "Decimal number",
			text: "Pi is about 3.14 in value. Nice.",
			want: []string{"Pi is about 3.14 in value.", "Nice."},
		},
		{
			name: "Ellipsis",
			text: "Wait... for it. Done.",
			want: []string{"Wait... for it.", "Done."},
		},
		{
			name: "Quoted sentence",
			text: `"Hello." She waved.`,
			want: []string{`"Hello."`, "She waved."},
		},
		{
			name: "Paragraph break",
			text: "First paragraph without a period\n\nSecond paragraph",
			want: []string{"First paragraph without a period", "Second paragraph"},
		},
		{
			name: "Single newlines collapse",
			text: "One line\ncontinues here.",
			want: []string{"One line continues here."},
		},
		{
			name: "Empty",
			text: "",
			want: nil,
		},
		{
			name: "Only whitespace",
			text: "   \n\n   \t   ",
			want: nil,
		},
	}

	s := NewSplitter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sentences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitter_Chunks(t *testing.T) {
	s := NewSplitter()

	t.Run("packs sentences", func(t *testing.T) {
		got := s.Chunks("One. Two. Three.", 10)
		want := []string{"One. Two.", "Three."}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Chunks() = %q, want %q", got, want)
		}
	})

	t.Run("fits in one chunk", func(t *testing.T) {
		got := s.Chunks("Hello world. Bye.", 100)
		if len(got) != 1 || got[0] != "Hello world. Bye." {
			t.Errorf("Chunks() = %q", got)
		}
	})

	t.Run("splits long sentence on whitespace", func(t *testing.T) {
		got := s.Chunks("alpha beta gamma delta", 11)
		want := []string{"alpha beta", "gamma delta"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Chunks() = %q, want %q", got, want)
		}
	})

	t.Run("splits long word on runes", func(t *testing.T) {
		got := s.Chunks(strings.Repeat("é", 25), 10)
		want := []string{strings.Repeat("é", 10), strings.Repeat("é", 10), strings.Repeat("é", 5)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Chunks() = %q, want %q", got, want)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		if got := s.Chunks("text", 0); got != nil {
			t.Errorf("Chunks(0) = %q, want nil", got)
		}
	})

	t.Run("every chunk within limit", func(t *testing.T) {
		text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
		for _, limit := range []int{1, 7, 44, 45, 100, 2048} {
			chunks := s.Chunks(text, limit)
			if len(chunks) == 0 {
				t.Fatalf("limit %d: no chunks", limit)
			}
			for _, c := range chunks {
				if c == "" {
					t.Fatalf("limit %d: empty chunk", limit)
				}
				if n := utf8.RuneCountInString(c); n > limit {
					t.Fatalf("limit %d: chunk of %d runes: %q", limit, n, c)
				}
			}
		}
	})
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     []string
	}{
		{
			name:     "Headings",
			markdown: "# Title\n\nThis is a paragraph. It has two sentences.",
			want:     []string{"Title", "This is a paragraph.", "It has two sentences."},
		},
		{
			name:     "Lists",
			markdown: "- First item\n- Second item",
			want:     []string{"First item", "Second item"},
		},
		{
			name:     "Code blocks",
			markdown: "Here is some text.\n\n```go\nfunc main() {}\n```\n\nMore text here.",
			want:     []string{"Here is some text.", "More text here."},
		},
		{
			name:     "Links and emphasis",
			markdown: "Visit [Google](https://google.com) for **more** info.",
			want:     []string{"Visit Google for more info."},
		},
		{
			name:     "Empty",
			markdown: "",
			want:     nil,
		},
	}

	s := NewSplitter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sentences(StripMarkdown(tt.markdown))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sentences(StripMarkdown()) = %q, want %q", got, tt.want)
			}
		})
	}
}
