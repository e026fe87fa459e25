package main

import (
	"os"

	"github.com/tutorgen-ai/tutorgen/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
