// ABOUTME: Entry point for the dealdesk CLI, MCP server, HTTP API, and TUI
// ABOUTME: Everything routes through the cobra command tree in package cli
package main

import (
	"os"

	"github.com/harperreed/dealdesk/cli"
)

func main() {
	os.Exit(cli.Execute())
}
