// Package ui renders training progress to the terminal.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/citesage/citesage/internal/model"
	"golang.org/x/term"
)

var (
	epochStyle = lipgloss.NewStyle().Faint(true)
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	accStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// EpochLine formats one epoch of training for the console.
func EpochLine(stats model.EpochStats) string {
	return fmt.Sprintf("%s  %s  %s",
		epochStyle.Render(fmt.Sprintf("epoch %4d", stats.Epoch)),
		lossStyle.Render(fmt.Sprintf("loss=%.4f (~%.4f)", stats.TrainLoss, stats.SmoothedLoss)),
		accStyle.Render(fmt.Sprintf("val_acc=%5.1f%%", 100*stats.ValidationAccuracy)))
}

// PrintSummary prints the final test accuracy as a centered banner.
func PrintSummary(testAccuracy float32) {
	fmt.Println()
	printCentered(
		lipgloss.NewStyle().
			Background(lipgloss.Color("13")).
			Foreground(lipgloss.Color("0")).
			Padding(1, 2).
			Render(fmt.Sprintf("Test accuracy: %.1f%%", 100*testAccuracy)))
	fmt.Println()
}

func printCentered(block string) {
	lines := strings.Split(block, "\n")
	terminalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	blockWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > blockWidth {
			blockWidth = w
		}
	}
	indent := (terminalWidth - blockWidth) / 2
	if indent < 0 {
		indent = 0
	}
	for _, line := range lines {
		if len(line) == 0 {
			fmt.Println()
			continue
		}
		fmt.Printf("%s%s\n", strings.Repeat(" ", indent), line)
	}
}
