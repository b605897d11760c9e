// Command rcpspsmt is a small CLI around pkg/rcpsp: it builds one of a
// handful of bundled demonstration problems, solves it with the finite-
// domain backend, and prints the resulting schedule.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp"
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend/fdbackend"
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/facade"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputFmt string
	timeout   int

	rootCmd = &cobra.Command{
		Use:   "rcpspsmt",
		Short: "Build and solve RCPSP-to-SMT scheduling problems",
		Long:  `rcpspsmt builds bundled demonstration scheduling problems, solves them with the finite-domain backend, and prints the resulting schedule.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout-ms", 0, "Solver time budget in milliseconds (0 = unbounded)")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(examplesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rcpspsmt:", err)
		os.Exit(1)
	}
}

// bundledProblems holds the CLI's own inline demonstration problems,
// distinct from the runnable programs under examples/ — self-contained
// demos rather than a dispatch into a gallery directory.
var bundledProblems = map[string]func() (*rcpsp.Problem, error){
	"hello-world":        buildHelloWorld,
	"cumulative-capacity": buildCumulativeCapacity,
}

var solveCmd = &cobra.Command{
	Use:   "solve <problem>",
	Short: "Solve a bundled demonstration problem and print its schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		build, ok := bundledProblems[args[0]]
		if !ok {
			return fmt.Errorf("unknown problem %q (see: rcpspsmt solve --help)", args[0])
		}

		p, err := build()
		if err != nil {
			return err
		}

		opts := rcpsp.DefaultOptions()
		opts.MaxTime = time.Duration(timeout) * time.Millisecond

		be := fdbackend.New()
		solver := rcpsp.NewSolver(p, be, opts)

		sol, err := solver.Solve(context.Background())
		if err != nil {
			return fmt.Errorf("solve %s: %w", args[0], err)
		}

		return printSchedule(args[0], sol)
	},
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List or run the standalone programs under examples/",
}

func init() {
	examplesCmd.AddCommand(examplesListCmd, examplesRunCmd)
}

// exampleDescriptions names the programs that `examples run` looks for under
// ./examples/ in the working directory, one per end-to-end scenario. This
// repository ships no examples/ directory, so `examples run` fails unless
// one is provided.
var exampleDescriptions = map[string]string{
	"hello-world":              "two precedence-linked tasks, minimize makespan",
	"flow-shop":                "permutation flow-shop via XOR'd forward/backward precedence",
	"force-schedule-n":         "five optional tasks, force exactly three to schedule",
	"buffer-flow":              "a task draining one buffer and filling another",
	"weighted-multi-objective": "two tasks linked by an ad hoc indicator, weighted joint objective",
	"cumulative-capacity":      "three tasks sharing a capacity-2 cumulative worker",
}

var examplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the example program names that run accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range []string{
			"hello-world", "flow-shop", "force-schedule-n",
			"buffer-flow", "weighted-multi-objective", "cumulative-capacity",
		} {
			fmt.Printf("%-26s %s\n", name, exampleDescriptions[name])
		}
		return nil
	},
}

var examplesRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "go run the given examples/<name> program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := exampleDescriptions[args[0]]; !ok {
			return fmt.Errorf("unknown example %q (see: rcpspsmt examples list)", args[0])
		}
		c := exec.Command("go", "run", "./examples/"+args[0])
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

func printSchedule(problemName string, sol *rcpsp.Solution) error {
	sch := facade.NewSchedule(problemName, sol)

	switch outputFmt {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sch)
	case "yaml":
		return sch.WriteYAML(os.Stdout)
	default:
		fmt.Printf("problem=%s horizon=%d optimal=%t\n", sch.Problem, sch.Horizon, sch.Optimal)
		for _, name := range sol.TaskNames() {
			rec, _ := sol.Task(name)
			fmt.Printf("  %-12s start=%-4d end=%-4d duration=%-4d scheduled=%t\n",
				name, rec.Start, rec.End, rec.Duration, rec.Scheduled)
		}
		for _, name := range sol.IndicatorNames() {
			v, _ := sol.Indicator(name)
			fmt.Printf("  indicator %s = %d\n", name, v)
		}
		return nil
	}
}

func buildHelloWorld() (*rcpsp.Problem, error) {
	p := rcpsp.NewProblem("hello-world")
	p.SetHorizon(10)

	a, err := p.NewFixedDurationTask("A", 2)
	if err != nil {
		return nil, err
	}
	b, err := p.NewFixedDurationTask("B", 2)
	if err != nil {
		return nil, err
	}
	p.AddConstraint(rcpsp.NewTaskPrecedence(a, b, rcpsp.PrecedenceLax, 0))

	makespan, err := p.NewMakespan("makespan", []*rcpsp.Task{a, b})
	if err != nil {
		return nil, err
	}
	if _, err := p.NewObjective("makespan", makespan, rcpsp.Minimize, 1); err != nil {
		return nil, err
	}
	return p, nil
}

func buildCumulativeCapacity() (*rcpsp.Problem, error) {
	p := rcpsp.NewProblem("cumulative-capacity")
	p.SetHorizon(10)

	m, err := p.NewCumulativeWorker("M", 2, 1)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= 3; i++ {
		t, err := p.NewFixedDurationTask(fmt.Sprintf("T%d", i), 5)
		if err != nil {
			return nil, err
		}
		t.RequireResource(m)
	}
	return p, nil
}
