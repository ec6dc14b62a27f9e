package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Motiontography/motiontography-bot/internal/kb"
	"github.com/Motiontography/motiontography-bot/kbdata"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a knowledge base file",
	Long:  "Parses and validates a knowledge base YAML file, reporting intent and trigger counts and any pattern triggers that failed to compile.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Start(cmd.Context(), "validate")
		defer span.End()

		var (
			snap *kb.KnowledgeBase
			err  error
			src  string
		)
		if len(args) == 1 {
			src = args[0]
			snap, err = kb.LoadFile(src)
		} else {
			src = "embedded default"
			snap, err = kb.Parse(kbdata.DefaultKBYAML())
		}
		if err != nil {
			log.Error().Err(err).Str("source", src).Msg("kb_validation_failed")
			fmt.Fprintf(os.Stderr, "✗ Validation failed: %s\n", src)
			return fmt.Errorf("validation failed: %w", err)
		}

		triggers := 0
		for _, intent := range snap.Intents {
			triggers += len(intent.Triggers)
		}

		fmt.Printf("✓ Knowledge base valid: %s\n", src)
		fmt.Printf("  Business: %s\n", snap.Business.Name)
		fmt.Printf("  Intents:  %d\n", len(snap.Intents))
		fmt.Printf("  Triggers: %d\n", triggers)
		fmt.Printf("  Links:    %d\n", len(snap.Links))

		if inert := snap.InertTriggers(); len(inert) > 0 {
			fmt.Printf("  ⚠ %d pattern trigger(s) failed to compile and will never match:\n", len(inert))
			for _, t := range inert {
				fmt.Printf("    - %s\n", t)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
