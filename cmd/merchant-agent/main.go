// merchant-agent runs the merchant-analysis workflow against a
// transaction database and writes a JSON results file.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantive/stepgraph/internal/merchant"
	"github.com/quantive/stepgraph/pkg/stepgraph/config"
	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
)

var flags struct {
	output  string
	dataset string
	table   string
	days    int
	model   string
	verbose bool
	db      string
	demo    bool
	filter  string
	config  string
}

var rootCmd = &cobra.Command{
	Use:   "merchant-agent",
	Short: "Analyze merchant transaction patterns with an LLM workflow",
	Long: `merchant-agent pulls per-merchant transaction statistics, screens for
merchants with a suspicious q50/avg amount ratio, analyzes each flagged
merchant's transactions for outliers, and writes a JSON results file.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file for results (default: auto-generated)")
	rootCmd.Flags().StringVarP(&flags.dataset, "dataset", "d", "transactions_dataset", "dataset name recorded in the results")
	rootCmd.Flags().StringVarP(&flags.table, "table", "t", "transactions", "table name recorded in the results")
	rootCmd.Flags().IntVar(&flags.days, "days", 30, "number of days to analyze")
	rootCmd.Flags().StringVarP(&flags.model, "model", "m", "gpt-4o-mini", "chat model to use")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.Flags().StringVar(&flags.db, "db", "", "path to the SQLite transaction database")
	rootCmd.Flags().BoolVar(&flags.demo, "demo", false, "use the built-in demo transaction set")
	rootCmd.Flags().StringVar(&flags.filter, "filter", merchant.DefaultFilterExpr, "merchant screening expression")
	rootCmd.Flags().StringVarP(&flags.config, "config", "c", "", "settings file (yaml or json); explicit flags win")
}

// applyConfig fills flag values from the settings file for any flag the
// user did not set explicitly.
func applyConfig(cmd *cobra.Command) error {
	if flags.config == "" {
		return nil
	}
	cfg, err := config.FromFile(flags.config)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	set := cmd.Flags().Changed
	if !set("model") {
		flags.model = cfg.String("model", flags.model)
	}
	if !set("days") {
		flags.days = cfg.Int("days", flags.days)
	}
	if !set("filter") {
		flags.filter = cfg.String("filter", flags.filter)
	}
	if !set("db") {
		flags.db = cfg.String("db", flags.db)
	}
	if !set("output") {
		flags.output = cfg.String("output", flags.output)
	}
	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	if err := applyConfig(cmd); err != nil {
		return err
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	src, err := openSource()
	if err != nil {
		return err
	}
	defer src.Close()

	client, err := openClient()
	if err != nil {
		return err
	}

	agent, err := merchant.New(client, src, merchant.Options{
		Model:      flags.model,
		Days:       flags.days,
		FilterExpr: flags.filter,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting analysis",
		"dataset", flags.dataset,
		"table", flags.table,
		"days", flags.days,
		"model", flags.model)

	report, err := agent.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report.Configuration = map[string]any{
		"dataset":        flags.dataset,
		"table":          flags.table,
		"analysis_days":  flags.days,
		"model":          flags.model,
		"filter":         flags.filter,
		"execution_time": time.Now().Format(time.RFC3339),
	}

	path, err := merchant.SaveReport(report, flags.output)
	if err != nil {
		return err
	}

	printSummary(report)
	if flags.verbose {
		fmt.Println("\nDETAILED MESSAGES:")
		for i, msg := range report.Messages {
			fmt.Printf("%2d. %s\n\n", i+1, msg)
		}
	}
	fmt.Printf("\nAnalysis complete. Results saved to: %s\n", path)
	return nil
}

func openSource() (merchant.TransactionSource, error) {
	if flags.demo || flags.db == "" {
		return merchant.NewStaticSource(merchant.DemoTransactions()), nil
	}
	return merchant.NewSQLiteSource(flags.db)
}

func openClient() (llm.Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey != "" {
		client, err := llm.NewOpenAIClientFromAPIKey(apiKey, flags.model)
		if err != nil {
			return nil, fmt.Errorf("create chat client: %w", err)
		}
		return client, nil
	}
	if flags.demo {
		return demoClient(), nil
	}
	return nil, fmt.Errorf("OPENAI_API_KEY is not set")
}

// demoClient replays a canned conversation over the built-in demo
// transactions, so --demo works without network access or credentials.
func demoClient() llm.Client {
	return llm.NewScriptedClient(
		llm.Response{ToolCalls: []llm.ToolCall{{
			ID: "call_1", Name: merchant.ToolMerchantStatistics, Arguments: json.RawMessage(`{"days": 30}`),
		}}},
		llm.Response{Content: "Statistics retrieved, reviewing the q50/avg ratios."},
		llm.Response{Content: "m-electronics stands out, proceeding with a detailed pass."},
		llm.Response{ToolCalls: []llm.ToolCall{{
			ID: "call_2", Name: merchant.ToolMerchantTransactions, Arguments: json.RawMessage(`{"merchant_id": "m-electronics"}`),
		}}},
		llm.Response{ToolCalls: []llm.ToolCall{{
			ID: "call_3", Name: merchant.ToolAnalyzeAnomalies, Arguments: json.RawMessage(`{"merchant_id": "m-electronics"}`),
		}}},
		llm.Response{Content: "A cluster of unit-priced transactions drags the average well below the median, producing the high q50/avg ratio."},
	)
}

func printSummary(report *merchant.Report) {
	fmt.Println("\nMERCHANT ANALYSIS SUMMARY")
	fmt.Println("=========================")

	if len(report.HighRatioMerchants) == 0 {
		fmt.Println("No merchants matched the screening filter.")
		return
	}

	fmt.Printf("Found %d merchants matching the screening filter:\n\n", len(report.HighRatioMerchants))
	for i, m := range report.HighRatioMerchants {
		if i >= 10 {
			break
		}
		fmt.Printf("%2d. Merchant: %s\n", i+1, m.MerchantID)
		fmt.Printf("    Q50/Avg Ratio: %.3f\n", m.Q50AvgRatio)
		fmt.Printf("    Transactions: %d\n", m.TransactionCount)
		fmt.Printf("    Avg Amount: $%.2f\n", m.AvgAmount)
		fmt.Printf("    Q50 Amount: $%.2f\n\n", m.Q50Amount)
	}
	fmt.Printf("Detailed analysis completed for %d merchants.\n", report.Summary.DetailedCompleted)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
