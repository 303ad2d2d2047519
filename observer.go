package geometrize

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Step is reported to the Observer each time a view is cut.
// Level is zero for the whole image and grows by one with each recursion.
type Step struct {
	Level int
	View  View
	Cut   Cut
}

// Observer receives the cuts chosen by the partitioner, before the two parts are modified.
// When the partitioner runs with more than one worker Observe is called concurrently.
type Observer interface {
	Observe(Step)
}

// ObserverFunc is an adapter to allow the use of ordinary functions as observers.
type ObserverFunc func(Step)

// Observe calls f(s).
func (f ObserverFunc) Observe(s Step) { f(s) }

// Recorder collects every reported step in memory.
type Recorder struct {
	mu    sync.Mutex
	steps []Step
}

// Observe appends the step to the trace.
func (r *Recorder) Observe(s Step) {
	r.mu.Lock()
	r.steps = append(r.steps, s)
	r.mu.Unlock()
}

// Steps returns a copy of the recorded trace.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps := make([]Step, len(r.steps))
	copy(steps, r.steps)
	return steps
}

// Reset drops the recorded steps.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.steps = r.steps[:0]
	r.mu.Unlock()
}

// NewLogObserver returns an observer writing one debug entry per cut to the logger.
func NewLogObserver(logger logrus.FieldLogger) Observer {
	return ObserverFunc(func(s Step) {
		logger.WithFields(logrus.Fields{
			"depth":  s.Level,
			"view":   s.View.String(),
			"axis":   s.Cut.Axis.String(),
			"coord":  s.Cut.Coord,
			"mean_a": s.Cut.MeanA,
			"mean_b": s.Cut.MeanB,
			"score":  s.Cut.Score,
		}).Debug("cut")
	})
}

// multiObserver forwards each step to all of its observers.
type multiObserver []Observer

func (m multiObserver) Observe(s Step) {
	for _, o := range m {
		o.Observe(s)
	}
}

// MultiObserver combines several observers into one. Nil observers are skipped.
func MultiObserver(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}
