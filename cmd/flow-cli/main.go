package main

import (
	"os"

	"github.com/filswan/go-swan-lib/logs"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const FlagFlowRepo = "flow-repo"

func main() {
	app := &cli.App{
		Name:                 "flow-cli",
		Usage:                "Submit and manage spot compute tasks on the Foundry marketplace: find auctions matching a resource specification, place limit-price bids and track the resulting instances.",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    FlagFlowRepo,
				EnvVars: []string{"FLOW_PATH"},
				Usage:   "flow repo path holding flow.toml",
				Value:   "~/.foundry/flow",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "enable debug logging",
				Aliases: []string{"v"},
			},
		},
		Before: func(cctx *cli.Context) error {
			if cctx.Bool("verbose") {
				logs.GetLogger().SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			taskCmd,
			auctionCmd,
		},
	}
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
	}
}
