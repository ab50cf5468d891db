package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/registry"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
)

var appsOpts struct {
	catalog string
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List the application catalog",
	Long: `List every application the start menu offers, with its window kind,
whether several windows may be open at once, and its default window size.

Use --catalog to check a YAML catalog before deploying it.`,
	RunE: runApps,
}

func init() {
	rootCmd.AddCommand(appsCmd)

	appsCmd.Flags().StringVar(&appsOpts.catalog, "catalog", "",
		"YAML catalog file (defaults to the built-in catalog)")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = cellStyle.Foreground(lipgloss.Color("8"))
)

func runApps(cmd *cobra.Command, args []string) error {
	var (
		catalog *registry.Registry
		err     error
	)
	if appsOpts.catalog != "" {
		catalog, err = registry.LoadFile(appsOpts.catalog)
	} else {
		catalog, err = registry.Default()
	}
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(catalog.List()))
	return err
}

func renderCatalog(descs []types.Descriptor) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("ID", "TITLE", "KIND", "MULTIPLE", "SIZE").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return dimStyle
			default:
				return cellStyle
			}
		})

	for _, d := range descs {
		size := d.WindowSize()
		t.Row(
			d.ID,
			d.Title,
			string(d.Kind),
			strconv.FormatBool(d.AllowMultiple),
			fmt.Sprintf("%dx%d", size.Width, size.Height),
		)
	}
	return t.Render()
}
