package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlan = `
vertices:
  - {name: emp, kind: TableScan, attributes: {table: emp}}
  - {name: trivial, kind: Filter, inputs: [emp], attributes: {condition: ["true"]}}
  - {name: rich, kind: Filter, inputs: [trivial], attributes: {condition: ["a > 1"]}}
  - {name: names, kind: Project, inputs: [rich], attributes: {fields: [name]}}
`

const testConfig = `
logging:
  level: error
programs:
  filters:
    - class: filter
`

func setup(t *testing.T) (planPath, configFile string) {
	dir := t.TempDir()
	planPath = filepath.Join(dir, "plan.yml")
	configFile = filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(planPath, []byte(testPlan), 0644))
	require.NoError(t, os.WriteFile(configFile, []byte(testConfig), 0644))

	programName, output, explainOutput = "", "json", "json"
	showStats, showMetrics = false, false
	return planPath, configFile
}

func execute(t *testing.T, args ...string) (string, string) {
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return stdout.String(), stderr.String()
}

func TestRunDefaultProgram(t *testing.T) {
	planPath, configFile := setup(t)
	stdout, _ := execute(t, "run", "--config", configFile, planPath)

	assert.JSONEq(t, `{"rels":[
		{"id":"0","relOp":"EnumerableTableScan","table":"emp","inputs":[]},
		{"id":"1","relOp":"EnumerableFilter","condition":["a > 1"]},
		{"id":"2","relOp":"EnumerableProject","fields":["name"]}
	]}`, stdout)
}

func TestRunConfiguredProgram(t *testing.T) {
	planPath, configFile := setup(t)
	stdout, stderr := execute(t, "run", "--config", configFile, "--program", "filters", "--stats", "--metrics", planPath)

	assert.JSONEq(t, `{"rels":[
		{"id":"0","relOp":"TableScan","table":"emp","inputs":[]},
		{"id":"1","relOp":"Filter","condition":["a > 1"]},
		{"id":"2","relOp":"Project","fields":["name"]}
	]}`, stdout)
	assert.Contains(t, stderr, "RuleClass(filter)")
	assert.Contains(t, stderr, "hep_planner_passes_total")
}

func TestExplain(t *testing.T) {
	planPath, _ := setup(t)
	stdout, _ := execute(t, "explain", planPath)

	assert.JSONEq(t, `{"rels":[
		{"id":"0","relOp":"TableScan","table":"emp","inputs":[]},
		{"id":"1","relOp":"Filter","condition":["true"]},
		{"id":"2","relOp":"Filter","condition":["a > 1"]},
		{"id":"3","relOp":"Project","fields":["name"]}
	]}`, stdout)
}

func TestExplainDot(t *testing.T) {
	planPath, _ := setup(t)
	stdout, _ := execute(t, "explain", "--output", "dot", planPath)
	assert.Contains(t, stdout, "digraph")
	assert.Contains(t, stdout, "TableScan")
}

func TestPrograms(t *testing.T) {
	_, configFile := setup(t)
	stdout, _ := execute(t, "programs", "--config", configFile)
	assert.Contains(t, stdout, "filters:")
	assert.Contains(t, stdout, "RuleClass(filter)")
}
