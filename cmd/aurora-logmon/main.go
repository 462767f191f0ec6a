package main

import (
	"fmt"
	"os"

	"github.com/diillson/aurora-logmon/internal/adapter/driven/config"
	"github.com/diillson/aurora-logmon/internal/adapter/driving/cli"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(config.NewConfigRepository())

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
