package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordfix/pkg/correct"
	"github.com/bastiangx/wordfix/pkg/report"
	"github.com/bastiangx/wordfix/pkg/vocab"
)

// RunBatch corrects every word of in (one per line) and writes the report
// to out. When reportID is set the report is also saved to store.
func RunBatch(ctx context.Context, engine *correct.Engine, in io.Reader, out io.Writer, store report.Store, reportID string) error {
	if reportID != "" {
		if store == nil {
			return fmt.Errorf("report storage is disabled, cannot save %q", reportID)
		}
		if err := report.ValidateID(reportID); err != nil {
			return err
		}
	}

	words, err := vocab.Parse(in)
	if err != nil {
		return err
	}
	results, err := engine.CorrectAll(ctx, words)
	if err != nil {
		return err
	}

	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
		}
	}
	log.Debugf("Corrected %d of %d words", changed, len(results))

	pairs := report.FromResults(results)
	if err := report.Encode(out, pairs); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if reportID != "" {
		if err := store.Save(ctx, reportID, pairs); err != nil {
			return fmt.Errorf("saving report %s: %w", reportID, err)
		}
		log.Debugf("Saved report %s", reportID)
	}
	return nil
}

// PrintReport writes a stored report to out. A missing report yields an
// error wrapping report.ErrNotFound.
func PrintReport(ctx context.Context, store report.Store, id string, out io.Writer) error {
	if store == nil {
		return fmt.Errorf("report storage is disabled")
	}
	pairs, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	return report.Encode(out, pairs)
}
