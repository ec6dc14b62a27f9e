package main

import (
	"os"

	"github.com/Motiontography/motiontography-bot/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
