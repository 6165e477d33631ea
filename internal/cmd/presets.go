package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/imagesmith/imagesmith/internal/config"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available style presets",
	Long:  "List the style presets usable with 'generate --preset'.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		catalog, err := loadPresetCatalog(cfg.ImageLink.PresetsFile)
		if err != nil {
			return fmt.Errorf("loading presets: %w", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Slug", "Label", "Model", "Description"})
		for _, p := range catalog.List() {
			model := p.Model
			if model == "" {
				model = "(caller's choice)"
			}
			t.AppendRow(table.Row{p.Slug, p.Label, model, p.Description})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
