// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/cinedex/internal/formatter"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// movieFieldFlags returns one flag per record field, plus --image.
func movieFieldFlags() []cli.Flag {
	flags := []cli.Flag{configFlag()}
	for _, name := range models.FieldNames {
		usage := fmt.Sprintf("Record %s", name)
		if name == models.FieldType {
			usage = fmt.Sprintf("Record type (%s or %s)", models.TypeMovie, models.TypeTVShow)
		}
		flags = append(flags, &cli.StringFlag{Name: name, Usage: usage})
	}
	return append(flags, &cli.StringFlag{
		Name:    "image",
		Aliases: []string{"i"},
		Usage:   "Path to a local image, stored on this machine only",
	})
}

func formatNames() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config file populated with defaults",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the catalog session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and persist the session",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:    "register",
				Aliases: []string{"signup"},
				Usage:   "Create an account and persist the session",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)"},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Clear the persisted session",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the current session",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog record operations
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse and manage movies & shows",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List records, one page at a time",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Search title, director or type"},
					&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "Page to fetch", Value: 1},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Keep loading pages until the list is exhausted"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: " + formatNames(), Value: string(formatter.FormatTable)},
				},
				Action: r.MoviesList,
			},
			{
				Name:   "add",
				Usage:  "Add a movie or show",
				Flags:  movieFieldFlags(),
				Action: r.MoviesAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit a record; only the given fields change",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     movieFieldFlags(),
				Action:    r.MoviesEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a record after confirmation",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: r.MoviesDelete,
			},
			{
				Name:  "export",
				Usage: "Write every record and its image to a directory",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory (default: cinedex_export_{epoch})"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Record file format: json|csv|md|text", Value: string(formatter.FormatJSON)},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent workers (max 10)", Value: 5},
					&cli.BoolFlag{Name: "download", Usage: "Download remote images as well"},
				},
				Action: r.MoviesExport,
			},
			{
				Name:      "image",
				Usage:     "Show where a record's image comes from, optionally saving or opening it",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "save", Aliases: []string{"o"}, Usage: "Write the image to this path"},
					&cli.BoolFlag{Name: "open", Usage: "Open the image with the system viewer"},
				},
				Action: r.MoviesImage,
			},
		},
	}
}

// serveCommand runs the local development backend.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run an in-memory catalog backend for development",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "host", Usage: "Listen host (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (default from config)"},
			&cli.BoolFlag{Name: "seed", Usage: "Start with a few sample records"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive catalog management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog browser",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "start", Usage: "Screen to open first, e.g. /movies/add", Value: "/movies"},
		},
		Action: r.TUI,
	}
}
