package progress

import (
	"fmt"

	"github.com/bnema/modctl/internal/ui/styles"
)

// PrintStep prints a step with the appropriate icon and styling
func PrintStep(state State, message string) {
	fmt.Println(FormatStep(state, message))
}

func PrintComplete(message string) {
	PrintStep(StateComplete, message)
}

func PrintError(message string) {
	PrintStep(StateError, message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	icon := iconWarning.Render(GetIcons().Warning)
	fmt.Printf("  %s %s\n", icon, styles.WarningText.Render(message))
}

// PrintTitle prints a title/header
func PrintTitle(title string) {
	style := styles.NormalText.Bold(true)
	fmt.Printf("%s\n\n", style.Render(title))
}

// PrintDetail prints an indented detail line
func PrintDetail(detail string) {
	fmt.Printf("      %s\n", styles.MutedText.Render(detail))
}

// PrintField prints an aligned "label: value" line, skipping empty values
func PrintField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %-14s %s\n", styles.MutedText.Render(label+":"), value)
}

func PrintNewline() {
	fmt.Println()
}

// FormatStep returns a formatted step string
func FormatStep(state State, message string) string {
	icon := StyledIcon(state)
	textStyle := StepStyle(state)
	return fmt.Sprintf("  %s %s", icon, textStyle.Render(message))
}
