package docx

import (
	"sort"
	"strings"
)

// Placeholder returns the token form of a key, e.g. "{{venue}}".
func Placeholder(key string) string {
	return "{{" + key + "}}"
}

// Substitute replaces every {{key}} token in the body, tables, headers and
// footers with its value and returns the number of replacements. Keys are
// applied in sorted order.
func (d *Document) Substitute(values map[string]string) int {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := 0
	d.eachParagraph(func(p *Paragraph) {
		text := p.Text()
		if !strings.Contains(text, "{{") {
			return
		}
		for _, k := range keys {
			token := Placeholder(k)
			if strings.Contains(text, token) {
				total += p.Replace(token, values[k])
				text = p.Text()
			}
		}
	})
	return total
}

// Replace rewrites every occurrence of token in the paragraph. A token may
// span several runs: the replacement takes the formatting of the run in
// which the token starts, and text around the token stays in its own run.
func (p *Paragraph) Replace(token, value string) int {
	if token == "" {
		return 0
	}
	n := 0
	from := 0
	for {
		runs := p.Runs()
		texts := make([]string, len(runs))
		offsets := make([]int, len(runs))
		var sb strings.Builder
		for i, r := range runs {
			offsets[i] = sb.Len()
			texts[i] = r.Text()
			sb.WriteString(texts[i])
		}
		full := sb.String()
		if from > len(full) {
			return n
		}
		rel := strings.Index(full[from:], token)
		if rel < 0 {
			return n
		}
		start := from + rel
		end := start + len(token)

		first := runAt(offsets, texts, start)
		last := runAt(offsets, texts, end-1)

		head := texts[first][:start-offsets[first]]
		if first == last {
			tail := texts[first][end-offsets[first]:]
			runs[first].SetText(head + value + tail)
		} else {
			runs[first].SetText(head + value)
			for i := first + 1; i < last; i++ {
				runs[i].SetText("")
			}
			runs[last].SetText(texts[last][end-offsets[last]:])
		}
		n++
		from = start + len(value)
	}
}

// runAt returns the index of the run holding byte pos of the joined text.
func runAt(offsets []int, texts []string, pos int) int {
	for i := range texts {
		if pos >= offsets[i] && pos < offsets[i]+len(texts[i]) {
			return i
		}
	}
	return len(texts) - 1
}
