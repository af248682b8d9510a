package main

import (
	"github.com/joho/godotenv"

	"github.com/rustyeddy/paperdesk/internal/cli"
)

func main() {
	// Optional .env for PAPERDESK_* overrides; absence is fine.
	_ = godotenv.Load()

	cli.Execute()
}
