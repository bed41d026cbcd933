package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pfcm/fxq"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(12)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 2)
)

var showCmd = &cobra.Command{
	Use:   "show format...",
	Short: "Describe fixed-point formats",
	Long: `Describe one or more fixed-point formats given in either notation,
for example Q8.7, uQ16.12, (3,-4) or u(3,-4).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		f, err := fxq.ParseFormat(arg)
		if err != nil {
			return err
		}
		fmt.Println(boxStyle.Render(describe(f)))
	}
	return nil
}

func describe(f fxq.Format) string {
	vi := f.ValueInterval()
	mi := f.MantissaInterval()
	rows := []struct{ label, value string }{
		{"p notation", f.PNotation()},
		{"signed", fmt.Sprintf("%v", f.Signed())},
		{"wordlength", fmt.Sprintf("%d bits", f.Wordlength())},
		{"msb, lsb", fmt.Sprintf("%d, %d", f.MSB(), f.LSB())},
		{"range", vi.String()},
		{"mantissas", mi.String()},
		{"epsilon", fmt.Sprintf("%g", f.Epsilon())},
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(f.QNotation()))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(r.value)
	}
	return b.String()
}
