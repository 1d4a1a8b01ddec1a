package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/model"
)

var requestColumns = []string{"body", "start", "end", "policy"}

// ErrBadHeader is returned when a request file lacks a required column.
var ErrBadHeader = errors.New("batch: missing required column")

// ReadRequests parses a CSV with columns body,start,end,policy (any order,
// extra columns ignored). Times are RFC 3339; an empty policy means
// zero-out. Every request uses frame.
func ReadRequests(r io.Reader, frame model.Frame) ([]core.Request, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requestColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w %q", ErrBadHeader, col)
		}
	}

	var reqs []core.Request
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		start, err := time.Parse(time.RFC3339, rec[idx["start"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: start: %w", line, err)
		}
		end, err := time.Parse(time.RFC3339, rec[idx["end"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: end: %w", line, err)
		}
		policy := model.ZeroOut
		if raw := strings.TrimSpace(rec[idx["policy"]]); raw != "" {
			if policy, err = model.ParsePolicy(raw); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		reqs = append(reqs, core.Request{
			Body:   strings.TrimSpace(rec[idx["body"]]),
			Start:  start,
			End:    end,
			Policy: policy,
			Frame:  frame,
		})
	}
	return reqs, nil
}

// WriteResults writes one row per result: the request columns followed by
// degrees and error. Failed rows leave degrees empty.
func WriteResults(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string(nil), requestColumns...), "degrees", "error")); err != nil {
		return err
	}
	for _, res := range results {
		deg, msg := strconv.FormatFloat(res.Degrees, 'f', -1, 64), ""
		if res.Err != nil {
			deg, msg = "", res.Err.Error()
		}
		row := []string{
			res.Request.Body,
			res.Request.Start.Format(time.RFC3339),
			res.Request.End.Format(time.RFC3339),
			res.Request.Policy.String(),
			deg,
			msg,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
