package domain

// Document is a retrieved unit of legal text. Text is always present;
// the remaining metadata degrades to its zero value rather than failing
// retrieval.
type Document struct {
	Abbreviation string
	Title        string
	Text         string
	Seq          float64
	Tags         []string
	Score        float64
}

// FormattedDoc is the reduced document shape embedded into the prompt
// context. Missing abbreviation and title serialize as JSON null.
type FormattedDoc struct {
	Abbreviation *string  `json:"abbreviation"`
	Title        *string  `json:"title"`
	Text         string   `json:"text"`
	Tags         []string `json:"tags"`
}

// FormatDocs normalizes retrieved documents for prompt embedding. Pure:
// no side effects, no failure modes. Empty metadata coalesces to null
// (abbreviation, title) or an empty slice (tags); Text passes through
// unchanged.
func FormatDocs(docs []Document) []FormattedDoc {
	out := make([]FormattedDoc, 0, len(docs))
	for _, d := range docs {
		fd := FormattedDoc{
			Text: d.Text,
			Tags: make([]string, 0, len(d.Tags)),
		}
		if d.Abbreviation != "" {
			abbr := d.Abbreviation
			fd.Abbreviation = &abbr
		}
		if d.Title != "" {
			title := d.Title
			fd.Title = &title
		}
		fd.Tags = append(fd.Tags, d.Tags...)
		out = append(out, fd)
	}
	return out
}
