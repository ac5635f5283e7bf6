package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/playctl/playctl/color"
	"github.com/playctl/playctl/icon"
	"github.com/playctl/playctl/key"
	"github.com/playctl/playctl/log"
	"github.com/playctl/playctl/network"
	"github.com/playctl/playctl/piped"
	"github.com/playctl/playctl/player"
	"github.com/playctl/playctl/position"
	"github.com/playctl/playctl/recent"
	"github.com/playctl/playctl/session"
	"github.com/playctl/playctl/style"
	"github.com/playctl/playctl/util"
	"github.com/playctl/playctl/where"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("playlist", "l", "", "Play the video as part of a playlist")
	watchCmd.Flags().StringP("at", "t", "", "Start at a timestamp (90, 1m30s)")
	watchCmd.Flags().BoolP("pick-quality", "q", false, "Choose the resolution interactively after loading")

	watchCmd.Flags().StringP("resolution", "r", "", "Preferred resolution label, matched as a substring")
	lo.Must0(viper.BindPFlag(key.DefaultResolution, watchCmd.Flags().Lookup("resolution")))

	watchCmd.Flags().StringP("subtitle", "s", "", "Preferred subtitle language code")
	lo.Must0(viper.BindPFlag(key.DefaultSubtitle, watchCmd.Flags().Lookup("subtitle")))

	watchCmd.Flags().BoolP("autoplay", "a", false, "Continue with the next video when playback ends")
	lo.Must0(viper.BindPFlag(key.Autoplay, watchCmd.Flags().Lookup("autoplay")))

	watchCmd.Flags().Bool("sponsorblock", true, "Skip sponsor segments")
	lo.Must0(viper.BindPFlag(key.SponsorBlockEnable, watchCmd.Flags().Lookup("sponsorblock")))
}

var watchCmd = &cobra.Command{
	Use:   "watch <video id or url>",
	Short: "Play a video with sponsor skipping, chapter tracking and autoplay",
	Example: "  playctl watch dQw4w9WgXcQ\n" +
		"  playctl watch 'https://youtube.com/watch?v=dQw4w9WgXcQ&t=42'\n" +
		"  playctl watch --autoplay --playlist PL123 dQw4w9WgXcQ",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeRecent,
	Run: func(cmd *cobra.Command, args []string) {
		target, err := parseTarget(args[0])
		handleErr(err)

		if playlist := lo.Must(cmd.Flags().GetString("playlist")); playlist != "" {
			target.playlist = playlist
		}
		if at := lo.Must(cmd.Flags().GetString("at")); at != "" {
			target.timestamp, err = parseTimestamp(at)
			handleErr(err)
		}

		handleErr(watch(target, lo.Must(cmd.Flags().GetBool("pick-quality"))))
	},
}

// completeRecent offers recently watched videos, titles as descriptions.
func completeRecent(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	return lo.Map(recent.SuggestMany(toComplete), func(s recent.Suggestion, _ int) string {
		if s.Title == "" {
			return s.VideoID
		}
		return s.VideoID + "\t" + s.Title
	}), cobra.ShellCompDirectiveNoFileComp
}

// watchTarget is what a watch invocation points at.
type watchTarget struct {
	videoID   string
	playlist  string
	timestamp time.Duration
}

// parseTarget accepts a bare video id or a watch/share link carrying v, list and t parameters.
func parseTarget(arg string) (watchTarget, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return watchTarget{}, errors.New("empty video id")
	}

	if !strings.Contains(arg, "/") {
		return watchTarget{videoID: arg}, nil
	}

	u, err := url.Parse(arg)
	if err != nil {
		return watchTarget{}, fmt.Errorf("invalid video url: %w", err)
	}

	query := u.Query()
	target := watchTarget{
		videoID:  query.Get("v"),
		playlist: query.Get("list"),
	}

	if target.videoID == "" {
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		target.videoID = segments[len(segments)-1]
	}
	if target.videoID == "" || target.videoID == "watch" {
		return watchTarget{}, fmt.Errorf("no video id in %s", arg)
	}

	if t := query.Get("t"); t != "" {
		if target.timestamp, err = parseTimestamp(t); err != nil {
			return watchTarget{}, err
		}
	}

	return target, nil
}

// parseTimestamp reads plain seconds or a Go duration such as 1m30s.
func parseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return d, nil
}

// settingsFromConfig builds the session settings from the loaded configuration.
func settingsFromConfig() session.Settings {
	return session.Settings{
		VideoFormat:       viper.GetString(key.VideoFormat),
		DefaultResolution: viper.GetString(key.DefaultResolution),
		DefaultSubtitle:   viper.GetString(key.DefaultSubtitle),
		Autoplay:          viper.GetBool(key.Autoplay),
		SponsorBlock:      viper.GetBool(key.SponsorBlockEnable),
		SkipNotifications: viper.GetBool(key.SponsorBlockNotifications),
		Categories:        viper.GetStringSlice(key.SponsorBlockCategories),
		SavePositions:     viper.GetBool(key.PositionsEnable),
		PollInterval:      time.Duration(viper.GetInt(key.PlayerPollInterval)) * time.Millisecond,
	}
}

// positionsPath resolves the store location of the configured backend.
func positionsPath() string {
	if viper.GetString(key.PositionsBackend) == position.BackendBolt {
		return where.PositionsDB()
	}
	return where.Positions()
}

func openPositions() (position.Store, error) {
	return position.Open(viper.GetString(key.PositionsBackend), positionsPath())
}

func watch(target watchTarget, pickQuality bool) error {
	bin := viper.GetString(key.Player)
	CheckDependencies(bin)

	settings := settingsFromConfig()

	var store position.Store
	if settings.SavePositions {
		var err error
		if store, err = openPositions(); err != nil {
			return err
		}
		defer util.Ignore(store.Close)
	}

	mpv := player.NewMPV(bin)
	defer util.Ignore(mpv.Close)

	ctrl := session.New(session.Deps{
		Backend: piped.New(viper.GetString(key.PipedInstance), network.Client),
		Player:  mpv,
		Store:   store,
	}, settings)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	defer wg.Wait()
	defer util.Ignore(ctrl.Close)

	wg.Go(func() {
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warnf("watch: %v", err)
		}
	})

	erase := util.PrintErasable(fmt.Sprintf("%s Loading %s...", icon.Get(icon.Progress), style.Fg(color.Purple)(target.videoID)))
	var opts []session.StartOption
	if target.playlist != "" {
		opts = append(opts, session.WithPlaylist(target.playlist))
	}
	if target.timestamp > 0 {
		opts = append(opts, session.WithTimestamp(target.timestamp))
	}
	handle, err := ctrl.StartSession(ctx, target.videoID, opts...)
	erase()
	if err != nil {
		return err
	}

	if pickQuality && len(handle.Labels) > 1 {
		var choice string
		prompt := &survey.Select{
			Message: "Resolution",
			Options: handle.Labels,
			Default: handle.Label,
		}
		if err := survey.AskOne(prompt, &choice); err != nil {
			return err
		}
		if choice != handle.Label {
			if err := ctrl.ChangeResolution(choice); err != nil {
				return err
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case <-mpv.Exited():
			return nil
		case ev, ok := <-ctrl.Events():
			if !ok {
				return nil
			}
			if started, ok := ev.(session.SessionStarted); ok {
				if err := recent.Remember(started.VideoID, started.Title, 1); err != nil {
					log.Warnf("recent: %v", err)
				}
			}
			if line := renderEvent(ev); line != "" {
				fmt.Println(fitTerminal(line))
			}
			if isFinal(ev) {
				return nil
			}
		}
	}
}

// fitTerminal cuts a status line to the terminal width when it is known.
func fitTerminal(line string) string {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		return line
	}
	return style.New().MaxWidth(width).Render(line)
}

// isFinal reports whether ev ends a watch run: playback ended and autoplay
// did not chain into another video.
func isFinal(ev session.Event) bool {
	ended, ok := ev.(session.SessionEnded)
	if !ok {
		return false
	}
	next, chained := ended.Next.Get()
	return !chained || next == ended.VideoID
}

// renderEvent formats a session event as one status line.
func renderEvent(ev session.Event) string {
	switch ev := ev.(type) {
	case session.SessionStarted:
		line := fmt.Sprintf("%s %s %s", icon.Get(icon.Play), style.Bold(ev.Title), style.Faint("["+ev.Label+"]"))
		if ev.Live {
			line += " " + style.Badge(color.Live)("LIVE")
		}
		if at, ok := ev.ResumeAt.Get(); ok {
			line += style.Faint(" resumed at " + util.FormatElapsed(at))
		}
		return line
	case session.SegmentSkipped:
		return fmt.Sprintf("%s Skipped %s %s", icon.Get(icon.Skip),
			style.Fg(color.Warning)(ev.Category),
			style.Faint(util.FormatElapsed(ev.From)+" → "+util.FormatElapsed(ev.To)))
	case session.ChapterChanged:
		return fmt.Sprintf("%s %s", icon.Get(icon.Chapter), style.Fg(color.Accent)(ev.Title))
	case session.LiveDrift:
		if ev.AtEdge {
			return fmt.Sprintf("%s %s", icon.Get(icon.Live), style.Fg(color.Live)("at live edge"))
		}
		return fmt.Sprintf("%s %s", icon.Get(icon.Live), style.Faint(ev.Text))
	case session.QualityChanged:
		return fmt.Sprintf("%s Quality %s", icon.Get(icon.Success), style.Bold(ev.Label))
	case session.SessionEnded:
		if next, ok := ev.Next.Get(); ok && next != ev.VideoID {
			return fmt.Sprintf("%s Up next: %s", icon.Get(icon.Next), style.Fg(color.Purple)(next))
		}
		return fmt.Sprintf("%s Finished", icon.Get(icon.Success))
	case session.Advisory:
		return fmt.Sprintf("%s %s", icon.Get(icon.Warn), style.Fg(color.Warning)(ev.Err.Error()))
	default:
		return ""
	}
}
