package explain

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/cube2222/hep/planner"
)

// FiringTable writes one row per firing of the execution, followed by the failed applications.
func FiringTable(w io.Writer, result *planner.Result) {
	table := tablewriter.NewWriter(w)
	table.SetColWidth(48)
	table.SetRowLine(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"program", "instruction", "firing", "rules", "passes", "applications", "limit reached"})
	for _, firing := range result.Firings {
		table.Append([]string{
			strconv.FormatUint(firing.Program, 10),
			strconv.Itoa(firing.Instruction),
			firing.Name,
			strconv.Itoa(firing.Rules),
			strconv.Itoa(firing.Passes),
			strconv.Itoa(firing.Applications),
			strconv.FormatBool(firing.LimitReached),
		})
	}
	table.Render()

	if len(result.Failures) == 0 {
		return
	}
	failures := tablewriter.NewWriter(w)
	failures.SetColWidth(64)
	failures.SetAutoFormatHeaders(false)
	failures.SetHeader([]string{"rule", "vertex", "attempts", "error"})
	for _, failure := range result.Failures {
		failures.Append([]string{
			failure.Rule,
			fmt.Sprintf("%s%s", failure.Kind, failure.Vertex),
			strconv.Itoa(failure.Attempts),
			failure.Err.Error(),
		})
	}
	failures.Render()
}
