package sponsorblock

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type seekRecorder struct {
	seeks []time.Duration
	err   error
}

func (r *seekRecorder) seek(pos time.Duration) error {
	if r.err != nil {
		return r.err
	}
	r.seeks = append(r.seeks, pos)
	return nil
}

func TestSkipper(t *testing.T) {
	Convey("Given a single sponsor segment", t, func() {
		skipper := NewSkipper(Segments{{Start: 10 * time.Second, End: 20 * time.Second, Category: "sponsor"}})
		rec := &seekRecorder{}

		Convey("A tick inside the segment seeks to its end exactly once", func() {
			seg, skipped, err := skipper.Check(15*time.Second, rec.seek)
			So(err, ShouldBeNil)
			So(skipped, ShouldBeTrue)
			So(seg.Category, ShouldEqual, "sponsor")
			So(rec.seeks, ShouldResemble, []time.Duration{20 * time.Second})

			Convey("A following tick at the end does not re-trigger", func() {
				_, skipped, err := skipper.Check(20*time.Second, rec.seek)
				So(err, ShouldBeNil)
				So(skipped, ShouldBeFalse)
				So(len(rec.seeks), ShouldEqual, 1)
			})
		})

		Convey("The start is inclusive", func() {
			_, skipped, _ := skipper.Check(10*time.Second, rec.seek)
			So(skipped, ShouldBeTrue)
		})

		Convey("Positions outside never seek", func() {
			_, skipped, _ := skipper.Check(9999*time.Millisecond, rec.seek)
			So(skipped, ShouldBeFalse)
			So(rec.seeks, ShouldBeEmpty)
		})

		Convey("Seek failures are reported", func() {
			rec.err = errors.New("ipc down")
			_, skipped, err := skipper.Check(15*time.Second, rec.seek)
			So(skipped, ShouldBeFalse)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given overlapping segments", t, func() {
		skipper := NewSkipper(Segments{
			{Start: 5 * time.Second, End: 30 * time.Second, Category: "intro"},
			{Start: 10 * time.Second, End: 20 * time.Second, Category: "sponsor"},
		})
		rec := &seekRecorder{}

		Convey("Only the earliest-listed match is acted on", func() {
			seg, _, _ := skipper.Check(15*time.Second, rec.seek)
			So(seg.Category, ShouldEqual, "intro")
			So(rec.seeks, ShouldResemble, []time.Duration{30 * time.Second})
		})
	})

	Convey("An empty skipper does nothing", t, func() {
		var nilSkipper *Skipper
		So(nilSkipper.Empty(), ShouldBeTrue)
		_, skipped, err := NewSkipper(nil).Check(time.Second, func(time.Duration) error {
			return errors.New("should not seek")
		})
		So(err, ShouldBeNil)
		So(skipped, ShouldBeFalse)
	})
}

func TestFromSeconds(t *testing.T) {
	Convey("FromSeconds truncates to milliseconds", t, func() {
		seg := FromSeconds(1.2345, 61.5, "selfpromo")
		So(seg.Start, ShouldEqual, 1234*time.Millisecond)
		So(seg.End, ShouldEqual, 61500*time.Millisecond)
		So(seg.Category, ShouldEqual, "selfpromo")
	})
}
