package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/JonMunkholm/credgrid/internal/core"
)

// ExportHeader is the column layout of Export.
var ExportHeader = []string{
	"organization", "tag", "id", "masked_id", "checksum",
	"name", "ra", "course", "graduated", "class",
}

// Export loads every input matched by pattern and writes all admitted
// members to w as one CSV, in match order and file order within a roster.
// Rosters that fail to load are reported in the summary and left out.
func (r *Runner) Export(ctx context.Context, pattern string, w io.Writer) (*Summary, error) {
	summary, err := r.run(ctx, "csv", pattern, false, func(ctx context.Context, log *slog.Logger, j job) error {
		_, _, err := r.loadRoster(ctx, log, j)
		return err
	})
	if err != nil {
		return nil, err
	}

	codec := core.NewCodec(r.cfg.Roster)
	strict := r.cfg.Roster.ValidateCourses

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return summary, fmt.Errorf("export: %w", err)
	}
	for _, res := range summary.Results {
		if res.Status != StatusOK || res.roster == nil {
			continue
		}
		for _, m := range res.roster.Members {
			if err := cw.Write(exportRecord(codec, strict, m)); err != nil {
				return summary, fmt.Errorf("export %s: %w", res.Input, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return summary, fmt.Errorf("export: %w", err)
	}
	return summary, nil
}

func exportRecord(codec core.Codec, strict bool, m core.Member) []string {
	return []string{
		m.Org.Name,
		m.Org.Tag,
		strconv.Itoa(m.ID),
		codec.MaskedID(m),
		codec.Checksum(m),
		m.Name,
		m.RA,
		m.Course,
		strconv.FormatBool(m.Graduated),
		core.Classify(m, strict).Class().String(),
	}
}
