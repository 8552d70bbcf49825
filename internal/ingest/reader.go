package ingest

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/qepting91/reddit-curator/internal/config"
)

// Regex for valid subreddit names
var subNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,21}$`)

// LoadSources reads a subreddit,weight CSV. The first line is a header.
// Invalid rows are skipped (fail-soft); a missing or unparsable weight
// column defaults to 1.0.
func LoadSources(path string) ([]config.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Wrap in BOM stripper
	r := csv.NewReader(stripBOM(f))
	r.FieldsPerRecord = -1

	var sources []config.Source
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		line++
		if line == 1 {
			continue // Skip header
		}
		if len(record) == 0 {
			continue
		}

		// Validation (Fail-Soft)
		sub := strings.TrimSpace(record[0])
		if !subNameRegex.MatchString(sub) {
			continue
		}

		weight := 1.0
		if len(record) > 1 {
			if w, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64); err == nil && w > 0 {
				weight = w
			}
		}

		sources = append(sources, config.Source{Name: sub, Weight: weight})
	}
	return sources, nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rdr, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rdr != '\ufeff' {
		br.UnreadRune()
	}
	return br
}
