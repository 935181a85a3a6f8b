package forest

import (
	"context"
	"fmt"
	"sync"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/tree"
	"go.uber.org/zap"
)

/*
pool is a bounded set of workers that take tasks from a channel in the order
they are added and grow the trees of a forest.
*/
type pool struct {
	tasks      chan *task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         *sync.WaitGroup
	once       *sync.Once
	closeOnce  *sync.Once
	result     chan error
	grow       growFunc
	logger     *zap.Logger
}

/*
task holds a clone of the base tree, the bootstrap subset it must be grown
with and the slot of the forest where it is stored once grown.
*/
type task struct {
	index  int
	tree   *tree.CART
	subset *dataset.Labeled
	slots  []*tree.CART
}

type growFunc func(*tree.CART, *dataset.Labeled) error

func newPool(ctx context.Context, workers int, grow growFunc, logger *zap.Logger) *pool {
	ctx, cancelFunc := context.WithCancel(ctx)
	p := &pool{
		tasks:      make(chan *task),
		ctx:        ctx,
		cancelFunc: cancelFunc,
		wg:         &sync.WaitGroup{},
		once:       &sync.Once{},
		closeOnce:  &sync.Once{},
		result:     make(chan error, 1),
		grow:       grow,
		logger:     logger,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
	return p
}

/*
add blocks until a worker takes the task or the pool is stopped. It returns
false in the latter case, after which no more tasks should be added.
*/
func (p *pool) add(t *task) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- t:
		return true
	}
}

/*
waitForAll closes the task channel, waits for the workers to finish and
returns the first task error, if any.
*/
func (p *pool) waitForAll() error {
	p.closeOnce.Do(func() { close(p.tasks) })
	p.wg.Wait()
	select {
	case err := <-p.result:
		return err
	default:
		return nil
	}
}

/*
stop cancels the tasks not yet started and waits for the workers to exit. It
must be called from the goroutine adding the tasks.
*/
func (p *pool) stop() {
	p.cancelFunc()
	p.closeOnce.Do(func() { close(p.tasks) })
	p.wg.Wait()
}

func (p *pool) fail(err error) {
	p.once.Do(func() {
		p.result <- err
		p.cancelFunc()
	})
}

func (p *pool) work(id int) {
	defer p.wg.Done()
	for t := range p.tasks {
		if p.ctx.Err() != nil {
			continue
		}
		p.logger.Debug("growing tree", zap.Int("worker", id), zap.Int("tree", t.index), zap.Int("samples", t.subset.NumRows()))
		if err := p.process(t); err != nil {
			p.logger.Debug("tree failed", zap.Int("worker", id), zap.Int("tree", t.index), zap.Error(err))
			p.fail(&TaskError{t.index, err})
			continue
		}
		p.logger.Debug("tree grown", zap.Int("worker", id), zap.Int("tree", t.index), zap.Int("height", t.tree.Height()))
	}
}

func (p *pool) process(t *task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if err = p.grow(t.tree, t.subset); err != nil {
		return err
	}
	t.slots[t.index] = t.tree
	return nil
}
