package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Die Chroniken von Narnia", "Die Chroniken von Narnia"},
		{"tags removed", "<p>Ein <b>magisches</b> Abenteuer</p>", "Ein magisches Abenteuer"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"line breaks dropped", "Erste Zeile<br/>Zweite Zeile", "Erste ZeileZweite Zeile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.in))
		})
	}
}

func TestRemoveStopwords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"case and numbers kept", "Der Drache von Berlin, 1984 und die Königin.", "Drache Berlin 1984 Königin"},
		{"stopwords in any case", "DER Drache UND die Prinzessin", "Drache Prinzessin"},
		{"single characters dropped", "Band 3 - a Geschichte", "Band Geschichte"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveStopwords(tt.in, "de"))
		})
	}
}

func TestPipeline(t *testing.T) {
	markupOnly := NewPipeline(true, false, "de")
	assert.Equal(t, "Ein Buch", markupOnly.Clean("  <i>Ein Buch</i> "))

	disabled := NewPipeline(false, false, "de")
	assert.Equal(t, "<i>Ein Buch</i>", disabled.Clean("<i>Ein Buch</i>"))

	full := NewPipeline(true, true, "de")
	assert.NotContains(t, strings.Fields(full.Clean("<p>Der Drache und die Prinzessin</p>")), "und")
	assert.Equal(t, "Der Herr der Ringe", full.Markup().Clean("<b>Der Herr der Ringe</b>"))
}
