package main

import (
	"os"

	"github.com/wonny/council/backend/cmd/council/commands"
)

// main is the entry point for the council CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/council [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
