// Package main запускает консольный клиент платформы розыгрышей.
package main

import (
	"os"

	"github.com/mmeshcher/raffle-client/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
