package cmd

import (
	"runtime"
	"strings"

	"github.com/playctl/playctl/color"
	"github.com/playctl/playctl/constant"
	"github.com/playctl/playctl/key"
	"github.com/playctl/playctl/player"
	"github.com/playctl/playctl/style"
	"github.com/playctl/playctl/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version number")
}

// versionRows are the label/value pairs printed by the version command.
func versionRows() [][2]string {
	playerPath := style.Fg(color.Red)("not found")
	if path, err := player.Available(viper.GetString(key.Player)); err == nil {
		playerPath = path
	}

	return [][2]string{
		{"Version", constant.Version},
		{"Git Commit", constant.Revision},
		{"Build Date", strings.TrimSpace(constant.BuiltAt)},
		{"Built By", constant.BuiltBy},
		{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
		{"Player", playerPath},
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify()

		cmd.Printf("%s %s\n\n", style.Fg(color.Purple)("▇▇▇"), style.Fg(color.Purple)(constant.Playctl))
		for _, row := range versionRows() {
			cmd.Printf("  %s %s\n", style.Faint(padRight(row[0], 12)), style.Bold(row[1]))
		}
	},
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
