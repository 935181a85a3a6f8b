package forest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/tree"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
)

func TestPool(t *testing.T) {
	Convey("Given a pool with a task added", t, func() {
		var grown int32
		p := newPool(context.Background(), 2, func(t *tree.CART, d *dataset.Labeled) error {
			atomic.AddInt32(&grown, 1)
			return nil
		}, zap.NewNop())
		slots := make([]*tree.CART, 1)
		So(p.add(&task{0, classifier(), iris(3), slots}), ShouldBeTrue)

		Convey("stop returns once every worker has exited", func() {
			done := make(chan struct{})
			go func() {
				p.stop()
				close(done)
			}()
			var stopped bool
			select {
			case <-done:
				stopped = true
			case <-time.After(5 * time.Second):
			}
			So(stopped, ShouldBeTrue)
			So(atomic.LoadInt32(&grown), ShouldBeLessThanOrEqualTo, 1)
			So(p.waitForAll(), ShouldBeNil)
		})

		Convey("stopping after waiting for every task is harmless", func() {
			So(p.waitForAll(), ShouldBeNil)
			So(atomic.LoadInt32(&grown), ShouldEqual, 1)
			So(slots[0], ShouldNotBeNil)
			So(p.stop, ShouldNotPanic)
		})
	})

	Convey("Given a pool whose first task fails", t, func() {
		failure := errors.New("boom")
		p := newPool(context.Background(), 1, func(t *tree.CART, d *dataset.Labeled) error {
			return failure
		}, zap.NewNop())
		defer p.stop()
		slots := make([]*tree.CART, 2)
		So(p.add(&task{0, classifier(), iris(3), slots}), ShouldBeTrue)
		Convey("later tasks are refused and the failure is reported", func() {
			var refused bool
			for i := 0; i < 100 && !refused; i++ {
				refused = !p.add(&task{1, classifier(), iris(3), slots})
			}
			So(refused, ShouldBeTrue)
			err := p.waitForAll()
			var te *TaskError
			So(errors.As(err, &te), ShouldBeTrue)
			So(te.Index, ShouldEqual, 0)
			So(slots[0], ShouldBeNil)
		})
	})
}
