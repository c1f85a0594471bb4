package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/parser"
	"github.com/agentdeck/agentdeck/internal/parser/claude"
	"github.com/agentdeck/agentdeck/internal/parser/codex"
)

var parseAgent string

func init() {
	parseCmd.Flags().StringVar(&parseAgent, "agent", claude.AgentID, "agent whose output format to parse (claude|codex)")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Normalize a JSONL agent stream from stdin and print canonical events",
	RunE:  runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	registry := parser.NewRegistry()
	registry.Register(claude.New())
	registry.Register(codex.New(codex.Config{
		Model:         cfg.Codex.Model,
		ContextWindow: cfg.Codex.ContextWindow,
	}))

	adapter := registry.Get(parseAgent)
	if adapter == nil {
		return fmt.Errorf("unsupported agent: %s", parseAgent)
	}

	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		event := adapter.ParseLine(scanner.Text())
		if event == nil {
			continue
		}
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}
