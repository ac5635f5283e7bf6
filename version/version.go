// Package version looks up the latest playctl release and tells the user about it.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/playctl/playctl/color"
	"github.com/playctl/playctl/constant"
	"github.com/playctl/playctl/filesystem"
	"github.com/playctl/playctl/icon"
	"github.com/playctl/playctl/key"
	"github.com/playctl/playctl/log"
	"github.com/playctl/playctl/network"
	"github.com/playctl/playctl/style"
	"github.com/playctl/playctl/util"
	"github.com/playctl/playctl/where"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

var releasesURL = "https://api.github.com/repos/playctl/playctl/releases/latest"

var cacher = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   48 * time.Hour,
	FileSystem: &filesystem.GacheFs{},
})

// Latest returns the newest released version, cached for two days.
func Latest(ctx context.Context) (string, error) {
	if cached, expired, err := cacher.Get(); err == nil && !expired && cached != "" {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := network.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("latest release: status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("latest release: %w", err)
	}
	if release.TagName == "" {
		return "", errors.New("latest release: empty tag name")
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	if err := cacher.Set(latest); err != nil {
		log.Warnf("cache latest version: %v", err)
	}
	return latest, nil
}

// Newer returns the latest version when it is newer than the running one.
func Newer(ctx context.Context) mo.Option[string] {
	latest, err := Latest(ctx)
	if err != nil {
		log.Debugf("version check: %v", err)
		return mo.None[string]()
	}

	return newer(latest, constant.Version)
}

func newer(latest, current string) mo.Option[string] {
	if cmp, err := Compare(latest, current); err != nil || cmp <= 0 {
		return mo.None[string]()
	}
	return mo.Some(latest)
}

// Notify prints a notice when a newer release exists and version checks are enabled.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	erase := util.PrintErasable(fmt.Sprintf("%s Checking for a new version...", icon.Get(icon.Progress)))
	latest, ok := Newer(ctx).Get()
	erase()
	if !ok {
		return
	}

	fmt.Printf("\n%s playctl %s is available %s\n%s\n\n",
		style.Fg(color.Green)(icon.Get(icon.Success)),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(you're on %s)", constant.Version)),
		style.Faint("https://github.com/playctl/playctl/releases/tag/v"+latest),
	)
}
