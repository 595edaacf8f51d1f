package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillmark/quillmark/internal/cms"
	"github.com/quillmark/quillmark/internal/config"
	"github.com/quillmark/quillmark/internal/document"
	"github.com/quillmark/quillmark/internal/marker"
	"github.com/quillmark/quillmark/internal/parser"
	"github.com/quillmark/quillmark/internal/render"
)

// Worker processes a single annotation job.
type Worker struct {
	scanner  *marker.Scanner
	renderer *render.Renderer
	cms      *cms.Client
	log      *slog.Logger
	cfg      config.Config
}

func NewWorker(sc *marker.Scanner, rd *render.Renderer, cmsClient *cms.Client, log *slog.Logger, cfg config.Config) *Worker {
	return &Worker{
		scanner:  sc,
		renderer: rd,
		cms:      cmsClient,
		log:      log,
		cfg:      cfg,
	}
}

// Process runs the full annotation pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = w.cfg.PDFFallbackPdftotext
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	}
	if job.Slug == "" {
		job.Slug = document.Slugify(doc.Title)
	}
	job.ContentHash = ContentHashHex([]byte(doc.Body))

	// Phase 2: Dedup check against the CMS.
	if w.cms != nil && job.Publish && !job.Force {
		existing, err := w.cms.FindByHash(ctx, job.ContentHash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if existing != nil {
			log.Info("duplicate document, skipping", "existing_slug", existing.Slug)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 3: Scan and render.
	job.SetStatus(StatusScanning, "scanning")
	annotated, diag := w.renderer.Annotate(w.scanner, doc)
	job.SetStatus(StatusRendering, "rendering")

	rendered := 0
	for kind, n := range annotated.Counts {
		if kind != "footnote" {
			rendered += n
		}
	}
	job.SetCounts(rendered+len(diag.Skipped), rendered, annotated.Counts["footnote"], len(diag.Skipped))
	job.SetResult(&annotated)

	for _, skip := range diag.Skipped {
		log.Warn("marker skipped", "sigil", skip.Sigil, "offset", skip.Offset, "reason", skip.Reason)
	}
	log.Info("document annotated",
		"markers", rendered,
		"footnotes", annotated.Counts["footnote"],
		"skipped", len(diag.Skipped),
	)

	// Phase 4: Publish.
	if w.cms == nil || !job.Publish {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	job.SetStatus(StatusPublishing, "publishing")
	post := cms.Post{
		Slug:        job.Slug,
		Title:       annotated.Title,
		HTML:        annotated.HTML,
		ContentHash: job.ContentHash,
	}

	var publishErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		_, publishErr = w.cms.UpsertPost(ctx, post)
		if publishErr == nil || !IsRetryable(publishErr) {
			break
		}
		log.Warn("retryable publish error", "attempt", attempt, "error", publishErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			publishErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}
	if publishErr != nil {
		log.Error("publish failed", "slug", job.Slug, "error", publishErr)
		job.AddError(fmt.Sprintf("publish: %s", publishErr))
		job.SetStatus(StatusFailed, "publishing")
		return
	}

	log.Info("published", "slug", job.Slug)
	job.SetStatus(StatusCompleted, "done")
}
