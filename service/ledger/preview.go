package ledger

import (
	"bytes"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"

	"github.com/viant/curator/model"
)

const previewContext = 3

// Preview renders a unified diff between the current and the suggested topic
// content, with added and removed line counts. Identical content yields an
// empty preview.
func Preview(ref model.Ref, current, suggested string) (string, model.DiffStats, error) {
	if current == suggested {
		return "", model.DiffStats{}, nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(suggested),
		FromFile: "a/" + ref.String(),
		ToFile:   "b/" + ref.String(),
		Context:  previewContext,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", model.DiffStats{}, fmt.Errorf("diff generation: %w", err)
	}
	stats, err := countLines(patch)
	if err != nil {
		return patch, model.DiffStats{}, err
	}
	return patch, stats, nil
}

func countLines(patch string) (model.DiffStats, error) {
	var stats model.DiffStats
	if patch == "" {
		return stats, nil
	}
	fileDiff, err := sgdiff.ParseFileDiff([]byte(patch))
	if err != nil {
		return stats, fmt.Errorf("parse preview: %w", err)
	}
	for _, hunk := range fileDiff.Hunks {
		for _, line := range bytes.Split(hunk.Body, []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			switch line[0] {
			case '+':
				stats.Added++
			case '-':
				stats.Removed++
			}
		}
	}
	return stats, nil
}
