package cmd

import (
	"fmt"

	"github.com/playctl/playctl/color"
	"github.com/playctl/playctl/icon"
	"github.com/playctl/playctl/position"
	"github.com/playctl/playctl/recent"
	"github.com/playctl/playctl/style"
	"github.com/playctl/playctl/util"
	"github.com/playctl/playctl/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type clearTarget struct {
	name  string
	flag  string
	short string
	clear func() error
}

var clearTargets = []clearTarget{
	{"cache", "cache", "c", func() error { return util.Delete(where.Cache()) }},
	{"watch positions", "positions", "p", func() error {
		var err error
		withPositions(func(store position.Store) error {
			err = store.Clear()
			return nil
		})
		return err
	}},
	{"recent videos", "recent", "r", recent.Clear},
	{"temp files", "temp", "t", func() error { return util.Delete(where.Temp()) }},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	for _, t := range clearTargets {
		clearCmd.Flags().BoolP(t.flag, t.short, false, "Clear "+t.name)
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached and stored data",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearTargets, func(t clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(t.flag))
		})
		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, t := range selected {
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), t.name))
			err := t.clear()
			erase()
			handleErr(err)
			fmt.Printf("%s %s cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)), util.Capitalize(t.name))
		}
	},
}
