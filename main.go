package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"deckclip/bridge"
	"deckclip/config"
	mylog "deckclip/log"
	"deckclip/plugin"
	"deckclip/ui"

	"github.com/apex/log"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	var (
		p      *plugin.Plugin
		closer io.Closer
	)

	return &cli.Command{
		Name:   "deckclip",
		Usage:  "clipboard of launch options for the Steam Deck",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "settings-dir",
				Usage: "directory holding " + config.EntriesFile + " (default $" + config.EnvSettingsDir + ")",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := config.Load(cmd.String("settings-dir"))
			if err != nil {
				return ctx, err
			}
			closer, err = mylog.InitDir(cfg.LogDir, cfg.LogLevel)
			if err != nil {
				return ctx, err
			}
			log.WithField("settings", cfg.SettingsDir).Debug("config resolved")

			p = plugin.New(cfg.SettingsDir)
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if closer != nil {
				return closer.Close()
			}
			return nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTUI(p)
		},
		Commands: []*cli.Command{
			{
				Name:  "tui",
				Usage: "browse, copy and edit entries",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runTUI(p)
				},
			},
			{
				Name:  "serve",
				Usage: "answer host runtime calls as JSON lines on stdin/stdout",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return bridge.NewServer(p).Serve(ctx, os.Stdin, cmd.Root().Writer)
				},
			},
			{
				Name:  "list",
				Usage: "print entries",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					p.Open()
					entries, err := p.GetEntries()
					if err != nil {
						return err
					}
					for _, e := range entries {
						fmt.Fprintf(cmd.Root().Writer, "%s\t%s\t%s\n", e.ID, e.Name, e.Command)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "add an entry",
				ArgsUsage: "NAME COMMAND",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("add takes NAME and COMMAND")
					}
					p.Open()
					e, err := p.AddEntry(cmd.Args().Get(0), cmd.Args().Get(1))
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, e.ID)
					return nil
				},
			},
			{
				Name:      "update",
				Usage:     "replace the name and command of an entry",
				ArgsUsage: "ID NAME COMMAND",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 3 {
						return fmt.Errorf("update takes ID, NAME and COMMAND")
					}
					p.Open()
					id := cmd.Args().Get(0)
					e, err := p.UpdateEntry(id, cmd.Args().Get(1), cmd.Args().Get(2))
					if err != nil {
						return err
					}
					if e == nil {
						return fmt.Errorf("no entry with id %q", id)
					}
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "remove every entry with the given id",
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("delete takes ID")
					}
					p.Open()
					_, err := p.DeleteEntry(cmd.Args().First())
					return err
				},
			},
			{
				Name:      "copy",
				Usage:     "copy an entry's command to the clipboard",
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("copy takes ID")
					}
					p.Open()
					id := cmd.Args().First()
					e, ok := p.Store().Get(id)
					if !ok {
						return fmt.Errorf("no entry with id %q", id)
					}
					return clipboard.WriteAll(e.Command)
				},
			},
		},
	}
}

func runTUI(p *plugin.Plugin) error {
	p.OnLoad()
	defer p.OnUnload()

	app, err := ui.NewApp(p)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	prog := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
