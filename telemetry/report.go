package telemetry

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// WriteTable gathers the metrics of gatherer and writes the counters and histogram sample counts as a table.
func WriteTable(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "couldn't gather metrics")
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"metric", "labels", "value"})
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var value string
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				value = strconv.FormatFloat(metric.GetCounter().GetValue(), 'f', -1, 64)
			case dto.MetricType_HISTOGRAM:
				value = strconv.FormatUint(metric.GetHistogram().GetSampleCount(), 10)
			default:
				continue
			}
			table.Append([]string{family.GetName(), labels(metric), value})
		}
	}
	table.Render()
	return nil
}

func labels(metric *dto.Metric) string {
	pairs := make([]string, 0, len(metric.GetLabel()))
	for _, label := range metric.GetLabel() {
		pairs = append(pairs, label.GetName()+"="+label.GetValue())
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
