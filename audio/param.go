package audio

import "math"

type paramEventKind int

const (
	eventStep paramEventKind = iota
	eventLinear
	eventTarget
)

type paramEvent struct {
	kind  paramEventKind
	at    float64 // seconds on the engine clock
	value float64 // new value, ramp end value, or decay target
	tau   float64 // exponential time constant for eventTarget
}

// Param is an automatable scalar on the engine clock. All changes are
// scheduled: a step change, a linear ramp ending at a time, or an
// exponential decay toward a target with time constant tau, where
// v(t) = target + (v0-target)*exp(-(t-t0)/tau). Value replays the event
// list, so queued automations survive a suspend/resume cycle unchanged.
//
// Params are not safe for concurrent use; the engine mutex serializes
// scheduling against rendering.
type Param struct {
	initial float64
	events  []paramEvent
}

// NewParam creates a parameter with the given initial value.
func NewParam(value float64) *Param {
	return &Param{initial: value}
}

func (p *Param) insert(e paramEvent) {
	i := len(p.events)
	for i > 0 && p.events[i-1].at > e.at {
		i--
	}
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

// SetValueAt schedules a step change.
func (p *Param) SetValueAt(value, at float64) {
	p.insert(paramEvent{kind: eventStep, at: at, value: value})
}

// LinearRampTo schedules a linear ramp from the previous event to the
// given value, ending at the given time.
func (p *Param) LinearRampTo(value, at float64) {
	p.insert(paramEvent{kind: eventLinear, at: at, value: value})
}

// SetTargetAt schedules an exponential decay toward target starting at
// the given time. A zero tau degenerates to a step change.
func (p *Param) SetTargetAt(target, at, tau float64) {
	if tau <= 0 {
		p.SetValueAt(target, at)
		return
	}
	p.insert(paramEvent{kind: eventTarget, at: at, value: target, tau: tau})
}

// Value evaluates the parameter at the given time.
func (p *Param) Value(t float64) float64 {
	v := p.initial
	prev := 0.0
	for i := 0; i < len(p.events); i++ {
		e := p.events[i]
		switch e.kind {
		case eventStep:
			if e.at > t {
				return v
			}
			v, prev = e.value, e.at
		case eventLinear:
			if e.at >= t {
				if e.at <= prev || t <= prev {
					return v
				}
				return v + (e.value-v)*(t-prev)/(e.at-prev)
			}
			v, prev = e.value, e.at
		case eventTarget:
			if e.at > t {
				return v
			}
			// the decay runs until the next event overrides it
			end := t
			if i+1 < len(p.events) && p.events[i+1].at < t {
				end = p.events[i+1].at
			}
			v = e.value + (v-e.value)*math.Exp(-(end-e.at)/e.tau)
			prev = end
		}
	}
	return v
}
