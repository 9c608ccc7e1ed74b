package textclean

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/bbalet/stopwords"
	log "github.com/sirupsen/logrus"
)

// Cleaner is applied to free-text fields before they are stored on a book
type Cleaner interface {
	Clean(text string) string
}

// StripMarkup returns the text content of an HTML fragment.
func StripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		log.Debugf("Failed to parse markup, keeping raw text: %v", err)
		return text
	}
	return doc.Text()
}

// RemoveStopwords drops the stopwords of language (ISO 639-1 code) and
// single-character tokens from text. Kept words keep their case; numbers are
// kept and surrounding punctuation is trimmed.
func RemoveStopwords(text, language string) string {
	tokens := strings.Fields(text)
	kept := make([]string, 0, len(tokens))

	for _, token := range tokens {
		word := strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len([]rune(word)) <= 1 || isStopword(word, language) {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// isStopword asks the stopword list about one word. The library lowercases
// and drops anything that is not a letter, so a word without letters is never
// a stopword.
func isStopword(word, language string) bool {
	if strings.IndexFunc(word, unicode.IsLetter) < 0 {
		return false
	}
	return strings.TrimSpace(stopwords.CleanString(word, language, false)) == ""
}

// Pipeline chains the configured cleanup steps.
type Pipeline struct {
	stripMarkup     bool
	removeStopwords bool
	language        string
}

func NewPipeline(stripMarkup, removeStopwords bool, language string) *Pipeline {
	return &Pipeline{
		stripMarkup:     stripMarkup,
		removeStopwords: removeStopwords,
		language:        language,
	}
}

func (p *Pipeline) Clean(text string) string {
	if p.stripMarkup {
		text = StripMarkup(text)
	}
	if p.removeStopwords {
		text = RemoveStopwords(text, p.language)
	}
	return strings.TrimSpace(text)
}

// Markup only strips markup; it is used for short fields like titles where
// stopword removal would destroy the value.
func (p *Pipeline) Markup() Cleaner {
	return NewPipeline(p.stripMarkup, false, p.language)
}
