package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/foundrytechnologies/flow-sdk/internal/auction"
	"github.com/foundrytechnologies/flow-sdk/internal/client"
	"github.com/foundrytechnologies/flow-sdk/models"
)

var auctionCmd = &cli.Command{
	Name:  "auction",
	Usage: "Inspect marketplace auctions",
	Subcommands: []*cli.Command{
		auctionList,
	},
}

var auctionList = &cli.Command{
	Name:  "list",
	Usage: "List auctions, optionally filtered by a resource specification",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "gpu-type",
			Usage: "match auctions offering this GPU model, e.g. A100",
		},
		&cli.IntFlag{
			Name:  "num-gpus",
			Usage: "minimum number of GPUs the auction must have in inventory",
		},
		&cli.StringFlag{
			Name:  "internode",
			Usage: "required internode interconnect, e.g. IB_1600",
		},
		&cli.StringFlag{
			Name:  "intranode",
			Usage: "required intranode interconnect, e.g. SXM5",
		},
		&cli.StringFlag{
			Name:  "instance",
			Usage: "exact instance type name to match",
		},
		&cli.StringFlag{
			Name:  "catalog",
			Usage: "path to a local auction catalog YAML",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := initFlowConfig(cctx)
		if err != nil {
			return err
		}

		fc, err := client.NewFoundryClient(cfg)
		if err != nil {
			return err
		}

		var projectId string
		if cfg.FOUNDRY.ProjectName != "" {
			projects, err := fc.GetProjects()
			if err != nil {
				return err
			}
			for _, p := range projects {
				if strings.EqualFold(p.Name, cfg.FOUNDRY.ProjectName) {
					projectId = p.Id
					break
				}
			}
		}

		finder := auction.NewFinder(fc, cfg.FOUNDRY.CatalogPath)
		auctions, err := finder.FetchAuctions(projectId, cctx.String("catalog"))
		if err != nil {
			return fmt.Errorf("failed fetch auctions, error: %+v", err)
		}

		criteria := models.ResourcesSpecification{
			GpuType:               cctx.String("gpu-type"),
			InternodeInterconnect: cctx.String("internode"),
			IntranodeInterconnect: cctx.String("intranode"),
			FcpInstance:           cctx.String("instance"),
		}
		if cctx.IsSet("num-gpus") {
			numGpus := cctx.Int("num-gpus")
			criteria.NumGpus = &numGpus
		}
		matching := finder.FindMatchingAuctions(auctions, criteria)

		var data [][]string
		for _, a := range matching {
			data = append(data, []string{a.ClusterId, a.GpuType, fmt.Sprintf("%d", a.InventoryQuantity),
				a.IntranodeInterconnect, a.InternodeInterconnect, a.FcpInstance,
				centsToDollars(int(a.LastPrice * 100)), a.Region})
		}
		header := []string{"CLUSTER", "GPU TYPE", "INVENTORY", "INTRANODE", "INTERNODE", "INSTANCE", "LAST PRICE", "REGION"}
		fmt.Println("")
		NewVisualTable(header, data, nil).Generate()
		fmt.Printf("\n%d of %d auctions match \n", len(matching), len(auctions))
		return nil
	},
}
