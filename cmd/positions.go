package cmd

import (
	"fmt"
	"sort"

	"github.com/AlecAivazis/survey/v2"
	"github.com/playctl/playctl/color"
	"github.com/playctl/playctl/icon"
	"github.com/playctl/playctl/position"
	"github.com/playctl/playctl/recent"
	"github.com/playctl/playctl/style"
	"github.com/playctl/playctl/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(positionsCmd)
	positionsCmd.AddCommand(positionsListCmd)
	positionsCmd.AddCommand(positionsRemoveCmd)
	positionsCmd.AddCommand(positionsClearCmd)

	positionsClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var positionsCmd = &cobra.Command{
	Use:     "positions",
	Short:   "Manage saved watch positions",
	Aliases: []string{"pos"},
}

func withPositions(f func(store position.Store) error) {
	store, err := openPositions()
	handleErr(err)
	defer util.Ignore(store.Close)
	handleErr(f(store))
}

var positionsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved watch positions",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {
		withPositions(func(store position.Store) error {
			all, err := store.All()
			if err != nil {
				return err
			}

			if len(all) == 0 {
				fmt.Println(style.Faint("No saved positions"))
				return nil
			}

			ids := lo.Keys(all)
			sort.Strings(ids)
			for _, id := range ids {
				line := fmt.Sprintf("%s %s", style.Fg(color.Purple)(id), style.Bold(util.FormatElapsed(all[id])))
				if title, ok := recent.Title(id).Get(); ok {
					line += " " + style.Faint(title)
				}
				fmt.Println(fitTerminal(line))
			}
			return nil
		})
	},
}

var positionsRemoveCmd = &cobra.Command{
	Use:     "remove <video id>...",
	Short:   "Forget the saved position of videos",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withPositions(func(store position.Store) error {
			for _, id := range args {
				if err := store.Remove(id); err != nil {
					return err
				}
				fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(id))
			}
			return nil
		})
	},
}

var positionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every saved position",
	Run: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("yes")) {
			var confirmed bool
			handleErr(survey.AskOne(&survey.Confirm{
				Message: "Remove all saved watch positions?",
				Default: false,
			}, &confirmed))
			if !confirmed {
				return
			}
		}

		withPositions(func(store position.Store) error {
			all, err := store.All()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Printf("%s cleared %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), util.Quantify(len(all), "position", "positions"))
			return nil
		})
	},
}
