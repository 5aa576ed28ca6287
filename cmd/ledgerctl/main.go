package main

import (
	"context"

	_ "github.com/joho/godotenv/autoload"

	"hotel_reputation/cmd/ledgerctl/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
