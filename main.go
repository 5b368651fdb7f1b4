package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/kbtools/pdf-ingest/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic("Error loading .env file")
	}
}
