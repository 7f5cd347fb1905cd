// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the example configuration file",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the video cache and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Roll back every migration and recreate the schema, dropping cached videos",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the implicit grant login
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Twitch",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the authorize URL for the configured redirect",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "state",
						Usage: "Opaque state value echoed back by Twitch",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "login",
				Usage: "Run the local callback server and log in through the browser",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Loopback port for the redirect URI (0 picks a free port)",
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorize URL instead of opening a browser",
					},
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Show an interactive waiting screen",
					},
				},
				Action: r.AuthLogin,
			},
		},
	}
}

// videosCommand handles video lookups
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "videos",
		Aliases: []string{"v"},
		Usage:   "Twitch video operations",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Get one or more videos by ID",
				ArgsUsage: "<id> [id...]",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.BoolFlag{
						Name:  "cache",
						Usage: "Read and write the local video cache",
					},
					&cli.DurationFlag{
						Name:  "max-age",
						Usage: "Maximum age of cached videos",
						Value: time.Hour,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests when fetching several videos",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.VideosGet,
			},
			{
				Name:  "top",
				Usage: "List the most viewed videos",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of videos (1-100)",
						Value:   10,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Pagination offset",
					},
					&cli.StringFlag{
						Name:  "game",
						Usage: "Only videos from this game",
					},
					&cli.StringFlag{
						Name:  "period",
						Usage: "Time window: week, month or all",
						Value: "week",
					},
					&cli.StringFlag{
						Name:  "broadcast-type",
						Usage: "Comma separated: archive, highlight, upload",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, csv, markdown, json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the output to a file",
					},
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Browse the videos interactively",
					},
				},
				Action: r.VideosTop,
			},
		},
	}
}

// cacheCommand handles the local video cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local video cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached videos",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "purge",
				Usage:  "Delete every cached video",
				Action: r.CachePurge,
			},
		},
	}
}

// tokenFlag reads the access token from --token or TWX_ACCESS_TOKEN.
func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "token",
		Aliases: []string{"t"},
		Usage:   "Access token from 'twx auth login'",
		Sources: cli.EnvVars("TWX_ACCESS_TOKEN"),
	}
}
