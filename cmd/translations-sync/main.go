// Package main is the entry point for the translations sync service.
package main

import (
	"os"

	"github.com/stacklok/translations-sync/cmd/translations-sync/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
