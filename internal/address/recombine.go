package address

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/georesolve/internal/geo"
)

// Kind tells how an address candidate was produced.
type Kind string

// Candidate kinds.
const (
	KindRecombined Kind = "recombined"
	KindDirect     Kind = "direct"
)

// Candidate is a ranked address guess.
type Candidate struct {
	Text      string         `json:"text"`
	Score     int            `json:"score"`
	Locale    geo.Locale     `json:"locale"`
	Kind      Kind           `json:"kind"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

type fragment struct {
	keyword  string
	line     int
	pos      int
	postcode string
	building bool
}

type nameOcc struct {
	name  string
	lines []int
}

type textIndex struct {
	lines   [][]string
	names   []nameOcc
	numbers []string
	counts  map[string]int
}

var streetNumber = regexp.MustCompile(`\b(\d{1,3})\b`)

// Recombine pairs street and building keywords with name fragments found
// elsewhere in the text and returns the top candidates for each vocabulary,
// best first.
func (w Weights) Recombine(lines []string, vocabs ...*Vocabulary) []Candidate {
	var all []Candidate
	for _, v := range vocabs {
		all = append(all, w.recombineVocab(lines, v)...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })

	topK := w.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	seen := make(map[string]struct{})
	out := make([]Candidate, 0, topK)
	for _, c := range all {
		key := strings.ToUpper(c.Text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) == topK {
			break
		}
	}
	for i := range out {
		out[i].Text = TitleCase(out[i].Text)
	}
	return out
}

func (w Weights) recombineVocab(lines []string, v *Vocabulary) []Candidate {
	idx := indexText(lines, v)
	postcode := v.Postcode
	threshold := w.Threshold(v.Locale)

	var frags []fragment
	for i, words := range idx.lines {
		for j, word := range words {
			kw := lettersOnly(word)
			if kw != word {
				continue
			}
			isStreet, isBuilding := v.StreetTypes[kw], v.BuildingTypes[kw]
			if !isStreet && !isBuilding {
				continue
			}
			f := fragment{keyword: kw, line: i, pos: j, building: isBuilding && !isStreet}
			if postcode != nil && j+1 < len(words) && postcode.MatchString(words[j+1]) {
				f.postcode = words[j+1]
			} else if !v.NameFirst {
				f.postcode = findPostcode(idx.lines, i, postcode)
			}
			frags = append(frags, f)
		}
	}

	var out []Candidate
	emit := func(f fragment, lead, name string, adjacent bool) {
		fragText := f.keyword
		if f.postcode != "" {
			fragText += " " + f.postcode
		}
		b := w.Score(name, fragText, v)
		if adjacent {
			b.Adjacency = w.Adjacency
		}
		if f.building && v.Gazetteer[lettersOnly(name)] {
			b.Building = w.BuildingGazetteer
		}
		if b.Total() <= 0 {
			return
		}
		text := joinAddress(v, lead, name, fragText)
		if f.building && len(idx.numbers) > 0 {
			num := idx.numbers[0]
			nb := b
			nb.Number = w.NumberPrefix + idx.counts[num]*w.NumberOccurrence
			if nb.Total() >= threshold {
				out = append(out, Candidate{Text: num + " " + text, Score: nb.Total(), Locale: v.Locale, Kind: KindRecombined, Breakdown: nb})
			}
		}
		if b.Total() >= threshold {
			out = append(out, Candidate{Text: text, Score: b.Total(), Locale: v.Locale, Kind: KindRecombined, Breakdown: b})
		}
	}

	for _, f := range frags {
		used := make(map[string]bool)
		if lead, name := adjacentName(idx.lines, f, v); name != "" {
			used[name] = true
			emit(f, lead, name, true)
		}
		for _, n := range idx.names {
			if used[n.name] {
				continue
			}
			if v.NameFirst && strings.HasPrefix(f.keyword, n.name) {
				continue
			}
			emit(f, "", n.name, near(n.lines, f.line))
		}
	}
	return out
}

// indexText folds lines to upper case and collects candidate names and
// standalone street numbers.
func indexText(lines []string, v *Vocabulary) textIndex {
	idx := textIndex{counts: make(map[string]int)}
	pos := make(map[string]int)
	for _, raw := range lines {
		line := fold(normalizeLine(raw))
		if line == "" {
			continue
		}
		li := len(idx.lines)
		words := strings.Fields(line)
		idx.lines = append(idx.lines, words)

		for _, m := range streetNumber.FindAllString(line, -1) {
			n, err := strconv.Atoi(m)
			if err != nil || n < 1 || n > 999 {
				continue
			}
			if idx.counts[m] == 0 {
				idx.numbers = append(idx.numbers, m)
			}
			idx.counts[m]++
		}

		for _, word := range words {
			clean := lettersOnly(word)
			if utf8.RuneCountInString(clean) < 4 || clean != word {
				continue
			}
			if v.StreetTypes[clean] || v.BuildingTypes[clean] || v.Articles[clean] {
				continue
			}
			if p, ok := pos[clean]; ok {
				idx.names[p].lines = append(idx.names[p].lines, li)
				continue
			}
			pos[clean] = len(idx.names)
			idx.names = append(idx.names, nameOcc{name: clean, lines: []int{li}})
		}
	}
	sort.SliceStable(idx.numbers, func(i, j int) bool {
		a, b := idx.numbers[i], idx.numbers[j]
		if idx.counts[a] != idx.counts[b] {
			return idx.counts[a] > idx.counts[b]
		}
		ai, _ := strconv.Atoi(a)
		bi, _ := strconv.Atoi(b)
		return ai > bi
	})
	return idx
}

// adjacentName reads the name next to a keyword in the grammar's reading
// direction: the rest of the keyword's own line, else the neighbouring line.
// lead holds any articles skipped before the name.
func adjacentName(lines [][]string, f fragment, v *Vocabulary) (lead, name string) {
	if v.NameFirst {
		if name := trailingName(lines[f.line][:f.pos], v); name != "" {
			return "", name
		}
		if f.line > 0 {
			return "", trailingName(lines[f.line-1], v)
		}
		return "", ""
	}
	if lead, name := leadingName(lines[f.line][f.pos+1:], v); name != "" {
		return lead, name
	}
	if f.line+1 < len(lines) {
		return leadingName(lines[f.line+1], v)
	}
	return "", ""
}

const maxNameWords = 4

func isNameWord(w string, v *Vocabulary) bool {
	clean := lettersOnly(w)
	return clean == strings.ReplaceAll(w, "-", "") && utf8.RuneCountInString(clean) >= 3 &&
		!v.StreetTypes[clean] && !v.BuildingTypes[clean]
}

// leadingName skips leading articles and collects the name words that follow.
func leadingName(words []string, v *Vocabulary) (lead, name string) {
	i := 0
	for i < len(words) && v.Articles[strings.TrimSuffix(words[i], "'")] {
		i++
	}
	var parts []string
	for j := i; j < len(words) && len(parts) < maxNameWords; j++ {
		if !isNameWord(words[j], v) {
			break
		}
		parts = append(parts, words[j])
	}
	if len(parts) == 0 {
		return "", ""
	}
	return strings.Join(words[:i], " "), strings.Join(parts, " ")
}

// trailingName collects the name words that end a word list.
func trailingName(words []string, v *Vocabulary) string {
	var name []string
	for i := len(words) - 1; i >= 0 && len(name) < maxNameWords; i-- {
		if !isNameWord(words[i], v) || v.Articles[words[i]] {
			break
		}
		name = append([]string{words[i]}, name...)
	}
	return strings.Join(name, " ")
}

// findPostcode looks for a postcode on the keyword's line and the two after it.
func findPostcode(lines [][]string, line int, re *regexp.Regexp) string {
	if re == nil {
		return ""
	}
	for l := line; l <= line+2 && l < len(lines); l++ {
		for _, w := range lines[l] {
			if re.MatchString(w) {
				return w
			}
		}
	}
	return ""
}

func near(lines []int, target int) bool {
	for _, l := range lines {
		if l >= target-1 && l <= target+1 {
			return true
		}
	}
	return false
}

func joinAddress(v *Vocabulary, lead, name, fragText string) string {
	if v.NameFirst {
		return name + " " + fragText
	}
	parts := strings.Fields(fragText)
	out := parts[0]
	if lead != "" {
		out += " " + lead
	}
	out += " " + name
	if len(parts) > 1 {
		out += " " + strings.Join(parts[1:], " ")
	}
	return out
}
