package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/ziadkadry99/apptagent/cmd"
)

func main() {
	// A missing .env is fine; the environment may already hold the keys.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
