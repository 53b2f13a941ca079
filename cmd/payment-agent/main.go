// payment-agent answers payment-method questions in an interactive
// read-line loop.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantive/stepgraph/internal/payment"
	"github.com/quantive/stepgraph/internal/paymethods"
	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
)

var flags struct {
	model   string
	data    string
	db      string
	verbose bool
}

// exitTokens end the interactive loop, case-insensitively.
var exitTokens = map[string]bool{
	"quit": true,
	"exit": true,
	"q":    true,
	"bye":  true,
}

var rootCmd = &cobra.Command{
	Use:   "payment-agent",
	Short: "Look up payment methods by country and category",
	Long: `payment-agent parses free-text questions like "US card" or "bank
methods for Brazil" into a country and payment category, then answers
from the payment-method table.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&flags.model, "model", "m", "gpt-3.5-turbo", "chat model used for parsing")
	rootCmd.Flags().StringVar(&flags.data, "data", "", "path to a payment-methods CSV file")
	rootCmd.Flags().StringVar(&flags.db, "db", "", "path to a payment-methods SQLite database")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
}

func run(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// Parsing degrades to pattern matching when no API key is set.
	var client llm.Client
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		client, err = llm.NewOpenAIClientFromAPIKey(apiKey, flags.model)
		if err != nil {
			return fmt.Errorf("create chat client: %w", err)
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set, parsing with pattern matching only")
	}

	agent, err := payment.New(client, store, payment.Options{
		Model:  flags.model,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	fmt.Println("Interactive Mode - Type 'quit' to exit")
	fmt.Println(strings.Repeat("=", 50))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nEnter your message: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		if exitTokens[strings.ToLower(input)] {
			fmt.Println("Goodbye!")
			break
		}
		if input == "" {
			fmt.Println("Please enter a valid message.")
			continue
		}

		result, err := agent.Run(cmd.Context(), input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("Output: %s\n", out)
	}
	return scanner.Err()
}

func openStore() (paymethods.Store, error) {
	switch {
	case flags.db != "":
		return paymethods.NewSQLiteStore(flags.db)
	case flags.data != "":
		rows, err := paymethods.LoadCSV(flags.data)
		if err != nil {
			return nil, err
		}
		return paymethods.NewMemoryStore(rows), nil
	default:
		return paymethods.NewMemoryStore(paymethods.DemoRows()), nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
