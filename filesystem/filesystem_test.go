package filesystem

import (
	"io"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestBackend(t *testing.T) {
	Convey("Given the filesystem backend", t, func() {
		Reset(SetMemMapFs)

		Convey("It defaults to the real filesystem", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("An in-memory filesystem starts empty", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
			So(API().WriteFile("/a/b.json", []byte("{}"), 0o644), ShouldBeNil)

			SetMemMapFs()
			exists, err := API().Exists("/a/b.json")
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})

		Convey("A custom filesystem is honored", func() {
			Set(afero.NewReadOnlyFs(afero.NewMemMapFs()))
			So(API().WriteFile("/x", nil, 0o644), ShouldNotBeNil)
		})
	})
}

func TestGacheFs(t *testing.T) {
	Convey("Given the gache adapter over memory", t, func() {
		SetMemMapFs()
		var fs GacheFs

		So(fs.MkdirAll("/cache/dir", os.ModePerm), ShouldBeNil)

		f, err := fs.OpenFile("/cache/dir/v.json", os.O_CREATE|os.O_RDWR, 0o644)
		So(err, ShouldBeNil)
		_, err = io.WriteString(f, `"1.0.0"`)
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		data, err := API().ReadFile("/cache/dir/v.json")
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, `"1.0.0"`)
	})
}
