package ics

import (
	"context"
	"fmt"
	"os"
)

// Import fetches, parses and expands every source. A source that fails to
// fetch or parse is reported in the error slice and the rest are still
// imported.
func Import(ctx context.Context, f *Fetcher, sources []Source, cfg ExpandConfig) (ExpandResult, []error) {
	results, errs := f.FetchAll(ctx, sources)

	var parsed []ParsedEvent
	for _, res := range results {
		events, err := ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, fmt.Errorf("ics: source %s: %w", res.Source.ID, err))
			continue
		}
		parsed = append(parsed, events...)
	}

	out, err := Expand(parsed, cfg)
	if err != nil {
		errs = append(errs, err)
	}
	return out, errs
}

// ImportFile parses and expands a local .ics file.
func ImportFile(path string, cfg ExpandConfig) (ExpandResult, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return ExpandResult{}, fmt.Errorf("ics: read %s: %w", path, err)
	}
	events, err := ParseICS(Source{ID: "file", URL: "file://" + path}, body)
	if err != nil {
		return ExpandResult{}, err
	}
	return Expand(events, cfg)
}
