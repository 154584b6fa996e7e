package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/wikivault/internal/commands"
	"github.com/gerunddev/wikivault/internal/config"
	"github.com/gerunddev/wikivault/internal/styles"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "convert":
		commands.Convert(os.Args[2:])
	case "version", "--version":
		fmt.Printf("wikivault v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`
Usage:
  wikivault <command> [options]

Commands:
  convert     Convert a MediaWiki XML export into an Obsidian vault
  version     Show version information
  help        Show this help message

Convert options:
  [output_dir]        Vault directory (default: obsidian_vault)
  --skip-redirects    Do not write notes for redirect pages
  --renderer NAME     Markup renderer: pandoc, api or none
  --config PATH       Read configuration from PATH
  -v, --verbose       Debug logging

Examples:
  wikivault convert export.xml
  wikivault convert export.xml my_vault --skip-redirects
  wikivault convert export.xml --renderer api

Configuration:
  Config file: %s
  Environment: %s, WIKIVAULT_* overrides

For more information, visit: https://github.com/gerunddev/wikivault
`, config.ConfigPath(), config.EnvConfigPath)
	fmt.Print(styles.TitleStyle.Render("wikivault - MediaWiki exports to Obsidian vaults"))
	fmt.Print(styles.HelpStyle.Render(usage))
}
