package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Motiontography/motiontography-bot/internal/config"
	"github.com/Motiontography/motiontography-bot/internal/kb"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Answer one question locally, without the HTTP server",
	Long:  "Runs a single message through the chat engine against the configured knowledge base. Useful while authoring KB files.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "ask")
		defer span.End()

		message := strings.TrimSpace(strings.Join(args, " "))
		if message == "" {
			return fmt.Errorf("message is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		cache := kb.NewCache(kbLoader(cfg), cfg.KBTTL)
		snap, err := cache.Get(ctx)
		if err != nil {
			return fmt.Errorf("loading knowledge base: %w", err)
		}

		engine, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		result := engine.Handle(ctx, message, snap)

		if askJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Println(result.Reply)
		for _, f := range result.Followups {
			fmt.Printf("  ↳ %s\n", f)
		}
		if result.RouteURL != "" {
			fmt.Printf("  → %s\n", result.RouteURL)
		}
		if result.Escalated {
			fmt.Fprintln(os.Stderr, "(escalated: no grounded answer)")
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(askCmd)
}
