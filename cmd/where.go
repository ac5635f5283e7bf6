package cmd

import (
	"github.com/playctl/playctl/color"
	"github.com/playctl/playctl/config"
	"github.com/playctl/playctl/style"
	"github.com/playctl/playctl/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type wherePath struct {
	name string
	flag string
	path func() string
}

var wherePaths = []wherePath{
	{"Config file", "config", config.Path},
	{"Watch positions", "positions", positionsPath},
	{"Recent videos", "recent", where.Recent},
	{"Logs", "logs", where.Logs},
	{"Cache", "cache", where.Cache},
	{"Temp", "temp", where.Temp},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, p := range wherePaths {
		whereCmd.Flags().Bool(p.flag, false, "Print only the "+p.name+" path")
	}
	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(p wherePath, _ int) string { return p.flag })...)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where playctl keeps its files",
	Run: func(cmd *cobra.Command, args []string) {
		if only, ok := lo.Find(wherePaths, func(p wherePath) bool {
			return lo.Must(cmd.Flags().GetBool(p.flag))
		}); ok {
			cmd.Println(only.path())
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		for i, p := range wherePaths {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n%s\n", header(p.name), style.Faint("--"+p.flag), p.path())
		}
	},
}
