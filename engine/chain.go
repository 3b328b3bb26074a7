package engine

import (
	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/effect"
)

// chain is an ordered in-place effect chain shared by tracks and the
// master bus. All mutations happen under the engine mutex, so the render
// loop observes either the pre- or the post-mutation order, never a
// half-stitched one.
type chain struct {
	effects []effect.Effect
}

func (c *chain) index(name string) int {
	for i, e := range c.effects {
		if e.Name() == name {
			return i
		}
	}
	return -1
}

// apply appends a new effect, or moves an existing one of the same name
// to the end with its parameters intact.
func (c *chain) apply(name string, typ cadenza.EffectType) error {
	if i := c.index(name); i >= 0 {
		e := c.effects[i]
		c.effects = append(c.effects[:i], c.effects[i+1:]...)
		c.effects = append(c.effects, e)
		return nil
	}
	e, err := effect.New(name, typ)
	if err != nil {
		return err
	}
	if err := e.Load(); err != nil {
		return err
	}
	c.effects = append(c.effects, e)
	return nil
}

// update delegates to the named effect; a miss reports false with no
// error so callers can stay idempotent.
func (c *chain) update(name string, opts map[string]float64, at, tau float64) (bool, error) {
	i := c.index(name)
	if i < 0 {
		return false, nil
	}
	if err := c.effects[i].Update(opts, at, tau); err != nil {
		return false, err
	}
	return true, nil
}

// remove drops the named effect, re-stitching the chain around it.
func (c *chain) remove(name string) bool {
	i := c.index(name)
	if i < 0 {
		return false
	}
	c.effects = append(c.effects[:i], c.effects[i+1:]...)
	return true
}

// names lists the chain order, for inspection and tests.
func (c *chain) names() []string {
	out := make([]string, len(c.effects))
	for i, e := range c.effects {
		out[i] = e.Name()
	}
	return out
}

func (c *chain) process(buf []float32, from int64) {
	for _, e := range c.effects {
		e.Process(buf, from)
	}
}
