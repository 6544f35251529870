// Package report renders a scenario run as a console table.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"

	"github.com/meenmo/shortrate/cmd/hwcalib/internal/scenario"
	"github.com/meenmo/shortrate/utils"
)

// volTolerance colors a model/market vol gap green when below it.
const volTolerance = 0.005

// Print writes the scenario report to w.
func Print(w io.Writer, rep *scenario.Report) {
	header := color.New(color.Bold, color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%s\n", header(fmt.Sprintf("Hull-White calibration on %s curve", rep.Source)))
	fmt.Fprintf(w, "Today %s, settlement %s, swap %s -> %s\n\n",
		utils.FormatDate(rep.Today), utils.FormatDate(rep.Settlement),
		utils.FormatDate(rep.SwapStart), utils.FormatDate(rep.SwapEnd))

	fmt.Fprintf(w, "Swap with fixed rate = %.6f\n", rep.Dummy.FixedRate)
	fmt.Fprintf(w, "Price = %.6f\n", rep.Dummy.NPV)
	fmt.Fprintf(w, "Fair rate = %.8f\n", rep.Dummy.FairRate)
	fmt.Fprintf(w, "Fixed leg BPS = %.6f, float leg BPS = %.6f\n", rep.Dummy.FixedLegBPS, rep.Dummy.FloatingLegBPS)
	for _, row := range []struct {
		label string
		q     scenario.SwapQuote
	}{{"ATM", rep.ATM}, {"OTM", rep.OTM}, {"ITM", rep.ITM}} {
		fmt.Fprintf(w, "%sSwap fixed rate = %.8f, NPV = %.6f\n", row.label, row.q.FixedRate, row.q.NPV)
	}
	fmt.Fprintln(w)

	res := rep.Calibration
	fmt.Fprintf(w, "%s\n", header("Hull-White (analytic formulae) calibration"))
	fmt.Fprintf(w, "%-8s %-10s %-10s %-11s %-14s %-14s\n", "Swaption", "Model", "Market", "Diff", "ModelValue", "MarketValue")
	for i, v := range rep.Vols {
		ir := res.Instruments[i]
		if v.VolError != "" {
			fmt.Fprintf(w, "%-8s %s %-10.5f %-11s %-14.9f %-14.9f\n", v.Name, red(fmt.Sprintf("%-10s", "n/a")), v.MarketVol, "", ir.ModelPrice, ir.MarketPrice)
			continue
		}
		paint := green
		if math.Abs(v.Diff) > volTolerance {
			paint = yellow
		}
		fmt.Fprintf(w, "%-8s %-10.5f %-10.5f %s %-14.9f %-14.9f\n",
			v.Name, v.ModelVol, v.MarketVol, paint(fmt.Sprintf("%+-11.5f", v.Diff)), ir.ModelPrice, ir.MarketPrice)
	}

	status := green("converged")
	if !res.Converged {
		status = red("not converged")
	}
	fmt.Fprintf(w, "problemValues: %.6e, use iterations: %d, stopped on %s (%s)\n",
		res.Objective, res.FunctionEvaluations, res.EndCriteria, status)
	fmt.Fprintf(w, "calibrated to:\na = %.8f, sigma = %.8f\nrun %s\n\n", res.Params.A, res.Params.Sigma, res.RunID)

	fmt.Fprintf(w, "Bond price from HW model: %.10f\n", rep.SwapBond.Model)
	fmt.Fprintf(w, "Bond price from rate curve: %.10f\n", rep.SwapBond.Curve)
	for _, b := range rep.Bonds {
		fmt.Fprintf(w, "Curve mat %-4s: Mkt bond price = %.10f, HW bond price = %.10f, yield %.6f%%\n", b.Label, b.Curve, b.Model, 100*b.CurveYield)
	}
}
