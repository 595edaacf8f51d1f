// Package render turns marker matches into annotated HTML.
package render

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/quillmark/quillmark/internal/document"
	"github.com/quillmark/quillmark/internal/marker"
)

// Renderer replaces marker spans in a document body with rendered
// markup. Marker payloads are sanitized before injection; a malformed
// marker stays as literal text.
type Renderer struct {
	policy *bluemonday.Policy
	stats  *Stats
}

// New builds a Renderer. stats may be nil.
func New(stats *Stats) *Renderer {
	return &Renderer{
		policy: bluemonday.UGCPolicy(),
		stats:  stats,
	}
}

// Annotate scans the document body and renders every well-formed marker
// and footnote reference in one pass.
func (r *Renderer) Annotate(sc *marker.Scanner, doc *document.Document) (document.Annotated, marker.Diagnostics) {
	start := time.Now()

	matches, diag := sc.FindMarkers(doc.Body)
	notes := marker.FindFootnotes(doc.Body)
	out := r.Render(doc, matches, notes)
	out.Skipped = len(diag.Skipped)

	if r.stats != nil {
		r.stats.Record(time.Since(start).Milliseconds())
	}
	return out, diag
}

// edit is one span replacement in the original buffer.
type edit struct {
	start, end int
	html       string
	kind       string
	label      string // footnote label, empty for sigil markers
}

// Render splices rendered markup over the given marker spans. Matches
// and footnotes must carry offsets into doc.Body. A footnote inside a
// marker's span is dropped: the outer replacement wins.
func (r *Renderer) Render(doc *document.Document, matches []marker.Match, notes []marker.Footnote) document.Annotated {
	edits := make([]edit, 0, len(matches)+len(notes))
	for _, m := range matches {
		edits = append(edits, edit{start: m.Start, end: m.End, html: r.renderMatch(m), kind: m.Kind})
	}
	for _, fn := range notes {
		edits = append(edits, edit{start: fn.Start, end: fn.End, html: renderFootnote(fn), kind: "footnote", label: fn.Label})
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	counts := make(map[string]int)
	var labels []string
	seen := make(map[string]bool)
	var sb strings.Builder
	last := 0
	for _, e := range edits {
		if e.start < last {
			continue // contained in an earlier replacement
		}
		sb.WriteString(doc.Body[last:e.start])
		sb.WriteString(e.html)
		last = e.end
		counts[e.kind]++
		if e.kind == "footnote" && !seen[e.label] {
			seen[e.label] = true
			labels = append(labels, e.label)
		}
	}
	sb.WriteString(doc.Body[last:])
	writeEndnotes(&sb, labels)

	return document.Annotated{
		Title:     doc.Title,
		HTML:      sb.String(),
		Counts:    counts,
		Footnotes: labels,
	}
}

// writeEndnotes appends the endnote list that footnote refs link to.
// Each item carries the fn-LABEL anchor and a backlink to its ref.
func writeEndnotes(sb *strings.Builder, labels []string) {
	if len(labels) == 0 {
		return
	}
	sb.WriteString("\n<section class=\"footnotes\"><ol>")
	for _, label := range labels {
		id := document.Slugify(label)
		fmt.Fprintf(sb, `<li id="fn-%s"><a class="footnote-backref" href="#fnref-%s">&#8617;</a></li>`, id, id)
	}
	sb.WriteString("</ol></section>")
}

func (r *Renderer) renderMatch(m marker.Match) string {
	config := ""
	if len(m.Config) > 0 {
		config = m.Config[0].Content
	}
	switch m.Kind {
	case "marginalia":
		return r.renderMarginalia(config, m.Content.Content)
	case "interactive":
		return r.renderInteractive(config, m.Content.Content)
	case "extension":
		return r.renderExtension(m.Content.Content)
	default:
		// Custom sigil kinds get a generic annotated span.
		return fmt.Sprintf(`<span class="marker marker-%s" data-config="%s">%s</span>`,
			document.Slugify(m.Kind), html.EscapeString(config), r.policy.Sanitize(m.Content.Content))
	}
}

func (r *Renderer) renderMarginalia(config, content string) string {
	p, _ := marker.ParseMarginalia(config)
	return fmt.Sprintf(
		`<aside class="marginalia" data-voice="%d" data-font-scale="%s" data-width="%d" data-position="%s">%s</aside>`,
		p.Voice,
		strconv.FormatFloat(p.FontScale, 'g', -1, 64),
		p.Width,
		p.Position,
		r.policy.Sanitize(content),
	)
}

var dataKeyOK = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

func (r *Renderer) renderInteractive(config, content string) string {
	p, _ := marker.ParseInteractive(config)

	var sb strings.Builder
	sb.WriteString(`<span class="interactive"`)
	if p.Target != "" {
		fmt.Fprintf(&sb, ` data-target="%s"`, html.EscapeString(p.Target))
	}
	fmt.Fprintf(&sb, ` data-duration="%d"`, p.Duration)
	if p.Fade > 0 {
		fmt.Fprintf(&sb, ` data-fade="%d"`, p.Fade)
	}
	// Extra keys in sorted order so output is deterministic.
	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		if dataKeyOK.MatchString(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, ` data-%s="%s"`, k, html.EscapeString(p.Extra[k]))
	}
	sb.WriteString(">")
	sb.WriteString(r.policy.Sanitize(content))
	sb.WriteString("</span>")
	return sb.String()
}

func (r *Renderer) renderExtension(content string) string {
	return fmt.Sprintf(
		`<details class="extension"><summary>more</summary><div class="extension-body">%s</div></details>`,
		r.policy.Sanitize(content),
	)
}

func renderFootnote(fn marker.Footnote) string {
	id := document.Slugify(fn.Label)
	return fmt.Sprintf(
		`<sup class="footnote-ref" id="fnref-%s"><a href="#fn-%s">%s</a></sup>`,
		id, id, html.EscapeString(fn.Label),
	)
}
