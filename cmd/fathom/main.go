// Fathom CLI — dive planning, logbook, and community tools.
//
// Usage:
//
//	fathom <command> [flags]
package main

import "github.com/fathomdive/fathom/cmd/fathom/commands"

func main() {
	commands.Execute()
}
