package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/internal/logging"
	"github.com/signalsfoundry/longitude/internal/units"
	"github.com/signalsfoundry/longitude/model"
	"github.com/spf13/cobra"
)

type requestFlags struct {
	body     string
	from     string
	to       string
	policy   string
	frame    string
	maxError time.Duration
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.body, "body", "", "catalog body ID, see the bodies command")
	cmd.Flags().StringVar(&f.from, "from", "", "range start, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "range end, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&f.policy, "policy", model.ZeroOut.String(), "retrograde policy: zero-out, count-positive, count-negative")
	cmd.Flags().StringVar(&f.frame, "frame", model.DefaultFrame.String(), "comma list: geocentric|heliocentric, tropical|sidereal, inertial|earth-fixed")
	cmd.Flags().DurationVar(&f.maxError, "max-error", core.DefaultMaxError, "time tolerance for locating sign changes")
	_ = cmd.MarkFlagRequired("body")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func (f *requestFlags) request() (core.Request, error) {
	start, err := parseTime(f.from)
	if err != nil {
		return core.Request{}, err
	}
	end, err := parseTime(f.to)
	if err != nil {
		return core.Request{}, err
	}
	policy, err := model.ParsePolicy(f.policy)
	if err != nil {
		return core.Request{}, err
	}
	frame, err := model.ParseFrame(f.frame)
	if err != nil {
		return core.Request{}, err
	}
	return core.Request{
		Body:     f.body,
		Start:    start,
		End:      end,
		Policy:   policy,
		Frame:    frame,
		MaxError: f.maxError,
	}, nil
}

type measureOutput struct {
	Body            string             `json:"body"`
	Start           time.Time          `json:"start"`
	End             time.Time          `json:"end"`
	Frame           string             `json:"frame"`
	Policy          string             `json:"policy"`
	Degrees         float64            `json:"degrees"`
	Units           map[string]float64 `json:"units"`
	Policies        map[string]float64 `json:"policies"`
	Samples         int                `json:"samples"`
	SignChanges     int                `json:"sign_changes"`
	GuardSkips      int                `json:"guard_skips"`
	ProviderQueries int                `json:"provider_queries"`
}

func newMeasureCmd(a *app) *cobra.Command {
	var (
		rf       requestFlags
		unitList string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Measure one body's net longitude movement over a time range",
		Example: `  longitude measure --body mars --from 2024-06-01 --to 2025-06-01 --policy count-negative
  longitude measure --body iss --from 2021-10-02T00:00:00Z --to 2021-10-02T06:00:00Z --frame earth-fixed --units circles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := rf.request()
			if err != nil {
				return err
			}
			us, err := units.Parse(unitList)
			if err != nil {
				return err
			}

			ctx, log := logging.WithRequestLogger(cmd.Context(), a.log)
			rep, err := a.engine.Run(ctx, req)
			if err != nil {
				log.Error(ctx, "measurement failed", logging.String("body", req.Body), logging.Err(err))
				return err
			}

			out := measureOutput{
				Body:            rep.Body,
				Start:           rep.Range.Start,
				End:             rep.Range.End,
				Frame:           rep.Frame.String(),
				Policy:          rep.Policy.String(),
				Degrees:         rep.Degrees(),
				Units:           units.Table(rep.Degrees(), us),
				Policies:        make(map[string]float64, len(model.Policies)),
				Samples:         rep.Samples,
				SignChanges:     rep.SignChanges,
				GuardSkips:      rep.Totals.Skipped,
				ProviderQueries: rep.ProviderQueries,
			}
			for _, p := range model.Policies {
				out.Policies[p.String()] = rep.Totals.For(p)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			writeMeasurement(cmd.OutOrStdout(), out, us)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&unitList, "units", "degrees", "comma list of units; name=size adds a custom unit in degrees")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func writeMeasurement(w io.Writer, out measureOutput, us []units.Unit) {
	fmt.Fprintf(w, "%s %s → %s (%s, %s)\n", out.Body,
		out.Start.Format(time.RFC3339), out.End.Format(time.RFC3339), out.Frame, out.Policy)
	for _, u := range us {
		fmt.Fprintf(w, "  %-12s %.6f\n", u.Name, out.Units[u.Name])
	}
	fmt.Fprintf(w, "  samples=%d sign_changes=%d guard_skips=%d\n", out.Samples, out.SignChanges, out.GuardSkips)
}
