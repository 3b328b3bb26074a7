package cadenza

import "fmt"

// Duration is a notated note length as a beat-scaling factor: the notated
// duration in seconds is 60/((factor/beatBase)*BPM). A larger factor is a
// shorter note.
type Duration float64

const (
	Whole        Duration = 1
	Half         Duration = 2
	Quarter      Duration = 4
	Eighth       Duration = 8
	Sixteenth    Duration = 16
	ThirtySecond Duration = 32
	SixtyFourth  Duration = 64
)

// Dotted lengthens a duration by half, i.e. scales the factor by 2/3.
func Dotted(d Duration) Duration { return d * 2 / 3 }

// DoubleDotted lengthens a duration by three quarters, i.e. scales the
// factor by 4/7.
func DoubleDotted(d Duration) Duration { return d * 4 / 7 }

// Durations maps every available notated duration name to its beat factor.
var Durations = func() map[string]Duration {
	base := []struct {
		name   string
		factor Duration
	}{
		{"Whole", Whole}, {"Half", Half}, {"Quarter", Quarter},
		{"Eighth", Eighth}, {"Sixteenth", Sixteenth},
		{"ThirtySecond", ThirtySecond}, {"SixtyFourth", SixtyFourth},
	}
	m := make(map[string]Duration, 3*len(base))
	for _, b := range base {
		m[b.name] = b.factor
		m["Dotted"+b.name] = Dotted(b.factor)
		m["DoubleDotted"+b.name] = DoubleDotted(b.factor)
	}
	return m
}()

// ParseDuration resolves a notated duration name like "Quarter" or
// "DottedHalf".
func ParseDuration(name string) (Duration, error) {
	if d, ok := Durations[name]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: unknown duration name %q", ErrValue, name)
}

// Span is the length of a sub-note: either a notated beat factor that
// scales with the tempo, or an absolute number of seconds fixed by a
// modification that has already done its concrete arithmetic. It replaces
// the signed-float duration encoding of the source design with an explicit
// sum type.
type Span struct {
	factor  Duration
	seconds float64
}

// BeatSpan wraps a notated beat factor.
func BeatSpan(factor Duration) Span { return Span{factor: factor} }

// SecondsSpan wraps an absolute length in seconds.
func SecondsSpan(s float64) Span { return Span{seconds: s} }

// Absolute reports whether the span is fixed in seconds rather than beats.
func (s Span) Absolute() bool { return s.factor == 0 }

// Factor returns the beat factor of a non-absolute span.
func (s Span) Factor() Duration { return s.factor }

// Seconds returns the concrete length of the span under the given tempo.
func (s Span) Seconds(t Tempo) float64 {
	if s.factor == 0 {
		return s.seconds
	}
	return t.NoteSeconds(s.factor)
}
