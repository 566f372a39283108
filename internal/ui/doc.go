// Package ui styles CLI output with lipgloss.
//
// A [Palette] renders headers, success and failure lines, warnings and help text. [Default] uses
// the FLO brand blue for titles. Styles degrade to plain text when the output is not a terminal.
package ui
