package config

import (
	"errors"
	"testing"

	"github.com/playctl/playctl/filesystem"
	"github.com/playctl/playctl/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given the configuration is set up without a file", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("Every registered key has a value", func() {
			for _, k := range Keys() {
				So(viper.Get(k), ShouldNotBeNil)
			}
		})

		Convey("The playback defaults are exposed", func() {
			So(viper.GetString(key.VideoFormat), ShouldEqual, "webm")
			So(viper.GetBool(key.Autoplay), ShouldBeFalse)
			So(viper.GetBool(key.PositionsEnable), ShouldBeTrue)
			So(viper.GetInt(key.PlayerPollInterval), ShouldEqual, 100)
			So(viper.GetStringSlice(key.SponsorBlockCategories), ShouldResemble, []string{"sponsor"})
		})

		Convey("The file path is under the config directory", func() {
			So(Path(), ShouldEndWith, "playctl.toml")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given registered fields", t, func() {
		Convey("The env name carries the application prefix", func() {
			So(Default[key.SponsorBlockNotifications].Env(), ShouldEqual, "PLAYCTL_SPONSORBLOCK_NOTIFICATIONS")
		})

		Convey("The type name follows the default value", func() {
			So(Default[key.SponsorBlockNotifications].TypeName(), ShouldEqual, "bool")
			So(Default[key.SponsorBlockCategories].TypeName(), ShouldEqual, "[]string")
		})

		Convey("Values are parsed into the default's type", func() {
			v, err := Default[key.PlayerPollInterval].Parse([]string{"250"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 250)

			v, err = Default[key.Autoplay].Parse([]string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)

			v, err = Default[key.SponsorBlockCategories].Parse([]string{"sponsor", "intro"})
			So(err, ShouldBeNil)
			So(v, ShouldResemble, []string{"sponsor", "intro"})

			_, err = Default[key.PlayerPollInterval].Parse([]string{"fast"})
			So(err, ShouldNotBeNil)
			_, err = Default[key.Autoplay].Parse(nil)
			So(err, ShouldNotBeNil)
		})

		Convey("Enumerated strings only accept their options", func() {
			v, err := Default[key.PositionsBackend].Parse([]string{"bolt"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "bolt")

			_, err = Default[key.PositionsBackend].Parse([]string{"sqlite"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given a misspelled key", t, func() {
		_, err := Lookup("sponsorblock.enabel")

		Convey("The closest key is suggested", func() {
			var unknown *UnknownKeyError
			So(errors.As(err, &unknown), ShouldBeTrue)
			So(unknown.Closest, ShouldEqual, key.SponsorBlockEnable)
		})
	})

	Convey("Given a registered key", t, func() {
		f, err := Lookup(key.Autoplay)
		So(err, ShouldBeNil)
		So(f.Key, ShouldEqual, key.Autoplay)
	})
}
