package main

import (
	"dashgate/internal/di"
	"dashgate/internal/structures"
	"errors"
	"log"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

func main() {
	var flags structures.CliFlags

	parser := goflags.NewParser(&flags, goflags.Default)
	parser.Name = "dashgate"
	parser.LongDescription = "Tab-scoped data gateway between dashboard pages and the metrics backend."

	if _, err := parser.Parse(); err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if _, err := di.InitApp(&flags); err != nil {
		log.Fatalf("dashgate: %v", err)
	}
}
