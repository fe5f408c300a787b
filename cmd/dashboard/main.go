package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/alecthomas/kong"

	"dashboard/internal/app"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"config/config.yaml"`
	EnvFile string `help:"Dotenv file loaded before the config." name:"env-file" default:".env"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Apply pending database migrations and exit."`
}

// @title        Personal Dashboard API
// @version      1.0.0
// @description  Tasks, projects and a YouTube proxy for the personal dashboard.
// @BasePath     /
func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("dashboard"),
		kong.Description("Personal dashboard backend"),
		kong.UsageOnError(),
		kong.Vars{"version": app.Version},
	)

	err := ctx.Run(&Globals{Config: CLI.Config, EnvFile: CLI.EnvFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
