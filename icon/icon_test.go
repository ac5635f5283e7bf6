package icon

import (
	"testing"

	"github.com/playctl/playctl/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given the playback icons", t, func() {
		Reset(func() { viper.Set(key.IconsVariant, plain) })

		Convey("Every icon renders in every variant", func() {
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				for i := range icons {
					So(Get(i), ShouldNotBeEmpty)
				}
			}
		})

		Convey("An unknown variant falls back to plain", func() {
			viper.Set(key.IconsVariant, "sparkles")
			So(Get(Skip), ShouldEqual, ">>")
		})

		Convey("An unregistered icon renders nothing", func() {
			So(Get(Icon(99)), ShouldBeEmpty)
		})
	})
}
