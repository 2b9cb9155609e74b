// Package main provides the CLI entry point for the accountant assistant.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"intelligent_accountant/pkg/core/agent"
	"intelligent_accountant/pkg/core/analyst"
	"intelligent_accountant/pkg/core/classify"
	"intelligent_accountant/pkg/core/prompt"
	"intelligent_accountant/pkg/core/workspace"
)

var (
	dataDir   string
	rulesPath string
	provider  string
	showPlan  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "accountant",
		Short: "Ask questions about your financial spreadsheets",
		Long: `accountant extracts tables from Excel and HTML financial statements
and answers questions about them through an LLM-planned, deterministic pipeline.`,
	}
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "data", "Directory of spreadsheets to load")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Classifier rules YAML (default: built-in rules)")

	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables extracted from the data directory",
		RunE:  runTables,
	}

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}
	askCmd.Flags().StringVar(&provider, "provider", "", "LLM provider override (groq, gemini)")
	askCmd.Flags().BoolVar(&showPlan, "show-plan", false, "Print the generated analysis plan")

	rootCmd.AddCommand(tablesCmd, askCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadWorkspace() (*workspace.Workspace, error) {
	rules := classify.DefaultRules()
	if rulesPath != "" {
		loaded, err := classify.LoadRules(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		rules = loaded
	}

	ws := workspace.New(rules)
	if err := ws.LoadDirectory(dataDir); err != nil {
		return nil, err
	}
	return ws, nil
}

func runTables(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	selections := ws.Selections()
	if len(selections) == 0 {
		fmt.Println("No tables found.")
	}
	for _, sel := range selections {
		t := sel.Primary
		fmt.Printf("%s\n", t.Key())
		fmt.Printf("  columns: %v\n", t.Columns)
		fmt.Printf("  rows: %d (%d detail, %d total)\n", len(t.Rows), len(t.DetailRows()), len(t.TotalRows()))
		for _, alt := range sel.Alternates {
			fmt.Printf("  alternate: %s\n", alt.Key())
		}
	}
	for _, f := range ws.Failures() {
		fmt.Printf("skipped: %s\n", f.String())
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	godotenv.Load()

	if err := prompt.LoadFromDirectory("resources"); err == nil {
		fmt.Fprintf(os.Stderr, "[PROMPT] Loaded %d prompts\n", prompt.Get().Count())
	}

	var agentCfg agent.Config
	if data, err := os.ReadFile("config/models.yaml"); err == nil {
		yaml.Unmarshal(data, &agentCfg)
	}
	mgr := agent.NewManager(agentCfg)
	if provider != "" {
		if err := mgr.SetGlobalProvider(provider); err != nil {
			return err
		}
	}

	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	answer, err := analyst.New(mgr).Ask(context.Background(), args[0], ws)
	if err != nil {
		return err
	}

	switch answer.Type {
	case "clarification":
		fmt.Printf("Need more detail: %s\n", answer.Question)
	default:
		if showPlan && answer.PlanJSON != "" {
			fmt.Printf("Plan:\n%s\n\n", answer.PlanJSON)
		}
		if answer.Result != nil {
			switch answer.Result.Kind {
			case "number":
				fmt.Printf("Result: %.2f\n", answer.Result.Number)
			case "table":
				for _, row := range answer.Result.Rows {
					fmt.Printf("  %s\n", row.Label)
				}
			}
		}
		fmt.Println(answer.Explanation)
	}
	return nil
}
