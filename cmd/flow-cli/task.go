package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/foundrytechnologies/flow-sdk/conf"
	"github.com/foundrytechnologies/flow-sdk/constants"
	"github.com/foundrytechnologies/flow-sdk/internal/task"
	"github.com/foundrytechnologies/flow-sdk/models"
	"github.com/olekukonko/tablewriter"
)

var taskCmd = &cli.Command{
	Name:  "task",
	Usage: "Manage spot compute tasks",
	Subcommands: []*cli.Command{
		taskSubmit,
		taskStatus,
		taskCancel,
	},
}

var taskSubmit = &cli.Command{
	Name:      "submit",
	Usage:     "Submit a task defined in a YAML config",
	ArgsUsage: "[task_config.yaml]",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d, missing args: task_config.yaml", cctx.NArg())
		}

		cfg, err := initFlowConfig(cctx)
		if err != nil {
			return err
		}
		taskCfg, err := task.ParseTaskConfig(cctx.Args().First())
		if err != nil {
			return err
		}

		manager, err := task.NewTaskManagerFromConfig(cfg)
		if err != nil {
			return err
		}
		responses, err := manager.Run(taskCfg)
		if err != nil {
			return fmt.Errorf("failed submit task %s, error: %+v", taskCfg.Name, err)
		}

		var data [][]string
		for _, resp := range responses {
			data = append(data, []string{resp.Name, resp.Id, resp.Status,
				fmt.Sprintf("%d", resp.InstanceQuantity), resp.InstanceTypeId, resp.ClusterId})
		}
		header := []string{"ORDER NAME", "BID ID", "STATUS", "QUANTITY", "INSTANCE TYPE", "CLUSTER"}
		fmt.Println("")
		NewVisualTable(header, data, bidStatusColors(responses)).Generate()
		return nil
	},
}

var taskStatus = &cli.Command{
	Name:      "status",
	Usage:     "Show bids and instances for a task",
	ArgsUsage: "[task_name]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "all",
			Usage:   "include terminated bids",
			Aliases: []string{"a"},
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := initFlowConfig(cctx)
		if err != nil {
			return err
		}
		manager, err := task.NewTaskManagerFromConfig(cfg)
		if err != nil {
			return err
		}

		taskName := cctx.Args().First()
		status, err := manager.Status(nil, taskName, cctx.Bool("all"))
		if err != nil {
			return fmt.Errorf("failed get task status, error: %+v", err)
		}

		var bidData [][]string
		var rowColorList []RowColor
		for number, b := range status.Bids {
			bidData = append(bidData, []string{b.Name, b.Id, b.Status,
				fmt.Sprintf("%d", b.InstanceQuantity), b.InstanceTypeId, centsToDollars(b.LimitPriceCents), b.CreatedAt})

			var rowColor []tablewriter.Colors
			switch b.Status {
			case constants.BidStatusAllocated:
				rowColor = []tablewriter.Colors{{tablewriter.Bold, tablewriter.FgGreenColor}}
			case constants.BidStatusPending:
				rowColor = []tablewriter.Colors{{tablewriter.Bold, tablewriter.FgYellowColor}}
			default:
				rowColor = []tablewriter.Colors{{tablewriter.Bold, tablewriter.FgRedColor}}
			}
			rowColorList = append(rowColorList, RowColor{
				row:    number,
				column: []int{2},
				color:  rowColor,
			})
		}

		fmt.Println("")
		NewVisualTable([]string{"ORDER NAME", "BID ID", "STATUS", "QUANTITY", "INSTANCE TYPE", "LIMIT PRICE", "CREATED"},
			bidData, rowColorList).Generate()

		if len(status.Instances) > 0 {
			var instanceData [][]string
			for _, inst := range status.Instances {
				instanceData = append(instanceData, []string{inst.Name, inst.InstanceId, inst.InstanceStatus,
					inst.IpAddress, inst.RegionId, inst.CreatedAt})
			}
			fmt.Println("")
			NewVisualTable([]string{"INSTANCE NAME", "INSTANCE ID", "STATUS", "IP ADDRESS", "REGION", "CREATED"},
				instanceData, nil).Generate()
		}
		return nil
	},
}

var taskCancel = &cli.Command{
	Name:      "cancel",
	Usage:     "Cancel the bid carrying the task name",
	ArgsUsage: "[task_name]",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d, missing args: task_name", cctx.NArg())
		}

		cfg, err := initFlowConfig(cctx)
		if err != nil {
			return err
		}
		manager, err := task.NewTaskManagerFromConfig(cfg)
		if err != nil {
			return err
		}

		taskName := cctx.Args().First()
		if err := manager.Cancel(nil, taskName); err != nil {
			return fmt.Errorf("failed cancel task %s, error: %+v", taskName, err)
		}
		fmt.Printf("task %s canceled \n", taskName)
		return nil
	},
}

func initFlowConfig(cctx *cli.Context) (*conf.FlowConfig, error) {
	repoPath := cctx.String(FlagFlowRepo)
	if strings.HasPrefix(repoPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed resolve home dir, error: %+v", err)
		}
		repoPath = filepath.Join(home, strings.TrimPrefix(repoPath, "~"))
	}
	if err := conf.InitConfig(repoPath); err != nil {
		return nil, fmt.Errorf("load config file failed, error: %+v", err)
	}
	return conf.GetConfig(), nil
}

func bidStatusColors(responses []models.BidResponse) []RowColor {
	var rowColorList []RowColor
	for number, resp := range responses {
		var rowColor []tablewriter.Colors
		switch resp.Status {
		case constants.BidStatusAllocated:
			rowColor = []tablewriter.Colors{{tablewriter.Bold, tablewriter.FgGreenColor}}
		case constants.BidStatusDuplicate:
			rowColor = []tablewriter.Colors{{tablewriter.Bold, tablewriter.FgYellowColor}}
		default:
			rowColor = []tablewriter.Colors{{tablewriter.Bold, tablewriter.FgWhiteColor}}
		}
		rowColorList = append(rowColorList, RowColor{
			row:    number,
			column: []int{2},
			color:  rowColor,
		})
	}
	return rowColorList
}

func centsToDollars(cents int) string {
	if cents == 0 {
		return ""
	}
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
