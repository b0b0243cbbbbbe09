package dedupe_test

import (
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/progol/internal/domain/dedupe"
	"github.com/okian/progol/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord("HHDDAAHHDDAAHH")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord("HHDDAAHHDDAAHH")
				seen := d.SeenAndRecord("HHDDAAHHDDAAHH")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And a key is forgotten", func() {
				d.SeenAndRecord("k1")
				d.Forget("k1")
				d.Forget("missing")

				Convey("Then it can be admitted again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord("k1"), ShouldBeFalse)
				})
			})

			Convey("And the deduper is reset", func() {
				d.SeenAndRecord("k1")
				d.SeenAndRecord("k2")
				d.Reset()

				Convey("Then it should be empty", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord("k1"), ShouldBeFalse)
				})
			})
		})

		Convey("When tickets share picks", func() {
			d := dedupe.NewInMemoryDeduper()
			a := model.Ticket{}.Relabel("a", model.KindCandidate)

			Convey("Then the second ticket with the same picks is a duplicate", func() {
				So(d.SeenTicket(a), ShouldBeFalse)
				So(d.SeenTicket(a.Relabel("b", model.KindCandidate)), ShouldBeTrue)
			})
		})
	})
}

func TestBoundedDeduper(t *testing.T) {
	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When more keys than the bound are recorded", func() {
			for i := 0; i < 5; i++ {
				So(d.SeenAndRecord(fmt.Sprintf("k%d", i)), ShouldBeFalse)
			}

			Convey("Then only the newest keys are kept", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord("k4"), ShouldBeTrue)
				So(d.SeenAndRecord("k3"), ShouldBeTrue)
				So(d.SeenAndRecord("k0"), ShouldBeFalse)
			})
		})

		Convey("When a key is forgotten before eviction", func() {
			d.SeenAndRecord("a")
			d.Forget("a")
			d.SeenAndRecord("b")
			d.SeenAndRecord("c")
			d.SeenAndRecord("d")

			Convey("Then the size stays within the bound", func() {
				So(d.Size(), ShouldBeLessThanOrEqualTo, 3)
			})
		})
	})
}

func TestDeduperConcurrency(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0

		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					if !d.SeenAndRecord(fmt.Sprintf("key-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each key is fresh exactly once", func() {
			So(fresh, ShouldEqual, 100)
			So(d.Size(), ShouldEqual, 100)
		})
	})
}
