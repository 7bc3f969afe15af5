package player

import (
	"time"

	"github.com/go-drift/nativevideo/pkg/platform"
)

// positionSampler is a self-rescheduling timer confined to the scheduler.
// The first tick runs as soon as the scheduler is free, later ticks every
// interval, until stop.
type positionSampler struct {
	sched    platform.Scheduler
	interval time.Duration
	tick     func()

	task    platform.Task
	stopped bool
}

func newPositionSampler(sched platform.Scheduler, interval time.Duration, tick func()) *positionSampler {
	return &positionSampler{sched: sched, interval: interval, tick: tick}
}

func (p *positionSampler) start() {
	p.sched.Post(p.run)
}

func (p *positionSampler) run() {
	if p.stopped {
		return
	}
	p.tick()
	if p.stopped {
		return
	}
	p.task = p.sched.PostDelayed(p.run, p.interval)
}

func (p *positionSampler) stop() {
	p.stopped = true
	if p.task != nil {
		p.task.Cancel()
		p.task = nil
	}
}
