package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/export"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/session"
)

// Process is the drop-folder handler. Outputs land in the output folder as
// <name>.md, <name>.pdf and <name>.docx.
func (p *implProcessor) Process(ctx context.Context, path string) error {
	kind, ok := media.KindFromExt(path)
	if !ok {
		return fmt.Errorf("%w: %s", media.ErrUnsupported, filepath.Ext(path))
	}
	name := filepath.Base(path)
	req := Request{Name: name, Source: kind, Path: path}

	id, err := p.track(ctx, req)
	if err != nil {
		return err
	}

	res, err := p.Execute(ctx, id, req, nil)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	if err := p.writeExports(ctx, base, res); err != nil {
		return err
	}

	if err := p.moveToArchived(ctx, path); err != nil {
		p.logger.Warn(ctx, "Failed to move original to archived folder: %v", err)
	}
	return nil
}

// track creates the session record for a request, or a throwaway ID without a store.
func (p *implProcessor) track(ctx context.Context, req Request) (string, error) {
	if p.store == nil {
		return "local", nil
	}
	fingerprint, err := session.FingerprintFile(req.Path)
	if err != nil {
		p.logger.Warn(ctx, "Failed to fingerprint %s: %v", req.Path, err)
	}
	s, err := p.store.Create(ctx, session.Session{
		Name:        req.Name,
		Source:      string(req.Source),
		Fingerprint: fingerprint,
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return s.ID, nil
}

func (p *implProcessor) writeExports(ctx context.Context, base string, res *Result) error {
	if err := os.MkdirAll(p.cfg.Paths.Output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	doc := export.Document{Title: base, Material: res.Material}

	for _, f := range export.Formats {
		out := filepath.Join(p.cfg.Paths.Output, f.Filename(base))
		if err := export.WriteFile(out, f, doc); err != nil {
			return fmt.Errorf("write %s: %w", f, err)
		}
		p.logger.Info(ctx, "Output written: %s", out)
	}
	return nil
}

func sessionOutput(res *Result) session.Output {
	out := session.Output{
		Transcript: res.Cleaned,
		Summary:    res.Summary,
		Material:   res.Material,
	}
	for _, sp := range res.Timeline {
		out.Timeline = append(out.Timeline, session.Cue{StartMs: sp.StartMs, EndMs: sp.EndMs, Text: sp.Text})
	}
	return out
}
