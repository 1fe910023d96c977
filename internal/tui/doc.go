// Package tui implements the Fathom terminal user interface.
//
// A dive-planning and logbook instrument built with Charmbracelet's
// BubbleTea, Lipgloss, and Bubbles libraries.
//
// Component architecture:
//
//	model.go    — root model, message routing, Init/Update
//	theme.go    — centralized color + style definitions
//	header.go   — top bar with diver context, footer hints
//	sitelist.go — dive site browser with full-text search
//	planner.go  — best-mix planner with live recompute
//	logbook.go  — dive log with aggregate statistics
//	feedback.go — chatbot feedback review table
//	helpers.go  — formatting, truncation, bar rendering
package tui
