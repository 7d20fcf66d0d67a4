package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// MaxKeywords is the number of keywords[i] columns in an export.
const MaxKeywords = 8

// Users are the accounts notes are attributed to.
var Users = []string{
	"alice", "bob", "charlie", "diana", "emma",
	"frank", "grace", "henry", "isabella", "jack",
}

var positivePhrases = []string{
	"C'était absolument fantastique, une journée extraordinaire remplie de joie et de succès.",
	"Exceptionnel et remarquable, cette expérience a dépassé toutes mes espérances.",
	"Succès total et triomphant, chaque détail était parfait.",
	"Merveilleux et sublime, une perfection rare atteinte aujourd'hui.",
	"Brillant et radieux, les résultats sont spectaculaires.",
	"Harmonie parfaite, tous les éléments se sont accordés avec précision.",
	"Optimiste et confiant, l'avenir semble radieux et plein de promesses.",
	"Serein et paisible, un calme intérieur profond s'est installé.",
}

var negativePhrases = []string{
	"Catastrophique et désastreux, une journée absolument exécrable.",
	"Fiasco complet et humiliation totale, l'échec est cuisant.",
	"Déception monumentale et frustration immense, un gâchis total.",
	"Calvaire interminable, rien n'a fonctionné et tout s'est effondré.",
	"Désespoir noir et pessimisme total, que des ténèbres et de la tristesse.",
}

var stopwords = map[string]bool{
	"avec": true, "dans": true, "pour": true, "dont": true, "sous": true,
	"toutes": true, "était": true, "sont": true,
}

// SampleHeader is the column layout of a MongoDB notes export.
func SampleHeader() []string {
	header := []string{"_id", "title", "content", "summary", "user"}
	for i := range MaxKeywords {
		header = append(header, fmt.Sprintf("keywords[%d]", i))
	}
	return append(header,
		"sentiment.label", "sentiment.score", "sentiment.comparative",
		"sentiment.rawScore", "createdAt", "updatedAt", "__v")
}

// SampleOptions configures WriteSample.
type SampleOptions struct {
	Rows int

	// NegativePercent is the share of negative notes, 0-100.
	NegativePercent int

	Start time.Time
	End   time.Time
}

// DefaultSampleOptions returns 40 notes, a quarter of them negative,
// spread over 2024.
func DefaultSampleOptions() SampleOptions {
	return SampleOptions{
		Rows:            40,
		NegativePercent: 25,
		Start:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WriteSample writes a synthetic notes export with a header row.
func WriteSample(w io.Writer, f *Faker, opts SampleOptions) error {
	if opts.Rows < 0 {
		return fmt.Errorf("rows must not be negative, got %d", opts.Rows)
	}
	if opts.NegativePercent < 0 || opts.NegativePercent > 100 {
		return fmt.Errorf("negative percent must be between 0 and 100, got %d", opts.NegativePercent)
	}
	if !opts.End.After(opts.Start) {
		return fmt.Errorf("sample end %s must be after start %s", opts.End, opts.Start)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(SampleHeader()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for range opts.Rows {
		negative := ChooseWeighted(f, []bool{false, true},
			[]int{100 - opts.NegativePercent, opts.NegativePercent})
		if err := cw.Write(sampleRecord(f, opts, negative)); err != nil {
			return fmt.Errorf("failed to write note: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func sampleRecord(f *Faker, opts SampleOptions, negative bool) []string {
	phrase := Choose(f, positivePhrases)
	label := "positive"
	score := f.Rounded(0.90, 1.00, 3)
	comparative := f.Float64(0.25, 0.35)
	rawScore := f.Rounded(10, 15, 1)
	if negative {
		phrase = Choose(f, negativePhrases)
		label = "negative"
		score = f.Rounded(0, 0.10, 3)
		comparative = -f.Float64(0.25, 0.35)
		rawScore = -f.Rounded(10, 15, 1)
	}

	content := phrase + " " + f.Sentence(f.Int(6, 14))
	created := f.DateRange(opts.Start, opts.End).UTC()
	updated := created.Add(time.Duration(f.Int(0, 120)) * time.Minute)

	record := []string{
		f.ObjectID(),
		strings.TrimSuffix(f.Sentence(f.Int(2, 5)), "."),
		content,
		summarize(content),
		Choose(f, Users),
	}

	keywords := Keywords(content)
	for i := range MaxKeywords {
		if i < len(keywords) {
			record = append(record, keywords[i])
		} else {
			record = append(record, "")
		}
	}

	return append(record,
		label,
		strconv.FormatFloat(score, 'f', -1, 64),
		strconv.FormatFloat(comparative, 'f', -1, 64),
		strconv.FormatFloat(rawScore, 'f', -1, 64),
		created.Format("2006-01-02T15:04:05.000Z"),
		updated.Format("2006-01-02T15:04:05.000Z"),
		"0",
	)
}

// Keywords extracts up to MaxKeywords distinct lower-cased words longer
// than four letters from content, in order of appearance.
func Keywords(content string) []string {
	words := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var out []string
	seen := make(map[string]bool)
	for _, w := range words {
		if len([]rune(w)) <= 4 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// summarize returns the first sentence of content, at most 120 characters.
func summarize(content string) string {
	end := strings.IndexAny(content, ".!?")
	if end < 0 {
		return Truncate(content, 120)
	}
	return Truncate(strings.TrimSpace(content[:end+1]), 120)
}
