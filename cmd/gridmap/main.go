package main

import (
	"os"

	"github.com/JonMunkholm/gridmap/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
