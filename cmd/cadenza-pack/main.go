// Command cadenza-pack builds an instrument container from WAV sample
// files, one per sampled pitch.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/codec"
	"github.com/cadenza-audio/cadenza/engine"
	"github.com/cadenza-audio/cadenza/instrument"
)

func main() {
	versionFlag := flag.Bool("v", false, "Print version.")
	name := flag.String("name", "", "Instrument name stored in the container (at most 32 bytes).")
	out := flag.String("o", "", "Output file. Defaults to the instrument name with a .inst extension.")
	min := flag.Int("min", int(cadenza.NoteMin), "Lowest playable MIDI note.")
	max := flag.Int("max", int(cadenza.NoteMax), "Highest playable MIDI note.")
	sustained := flag.Bool("sustained", false, "Samples carry their own decay; playback will not loop them.")
	slides := flag.Bool("slides", false, "Mark the instrument as capable of slide notes.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(engine.Version())
		os.Exit(0)
	}
	if *name == "" || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if err := run(*name, *out, *min, *max, *sustained, *slides, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "cadenza-pack: %v\n", err)
		os.Exit(1)
	}
}

func run(name, out string, min, max int, sustained, slides bool, args []string) error {
	c := &instrument.Container{
		Version: instrument.CurrentVersion,
		Metadata: instrument.Metadata{
			Name:                name,
			MinValidNote:        cadenza.Note(min),
			MaxValidNote:        cadenza.Note(max),
			SustainedNotesDecay: sustained,
			SlideNotesPossible:  slides,
			Format:              instrument.FormatPCM,
		},
	}
	for _, arg := range args {
		pitch, file, err := splitMapping(arg)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		buffer, err := codec.WAVDecoder{}.Decode(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", file, err)
		}
		mono := downmix(buffer)
		if c.Metadata.SampleRate == 0 {
			c.Metadata.SampleRate = mono.SampleRate
			c.Metadata.BitRate = 32 * mono.SampleRate
		} else if mono.SampleRate != c.Metadata.SampleRate {
			return fmt.Errorf("%w: %s is %d Hz, the container is %d Hz",
				cadenza.ErrInstrument, file, mono.SampleRate, c.Metadata.SampleRate)
		}
		payload, err := codec.EncodePCM(mono)
		if err != nil {
			return err
		}
		c.Entries = append(c.Entries, instrument.Entry{Midi: pitch, Data: payload})
	}
	emitted, err := c.Emit()
	if err != nil {
		return err
	}
	if out == "" {
		out = name + ".inst"
	}
	return os.WriteFile(out, emitted, 0644)
}

// splitMapping parses a "pitch=file.wav" argument; the pitch is a MIDI
// number or a note name like C4.
func splitMapping(arg string) (cadenza.Note, string, error) {
	pitch, file, ok := strings.Cut(arg, "=")
	if !ok {
		return 0, "", fmt.Errorf("%w: argument %q is not of the form pitch=file.wav", cadenza.ErrValue, arg)
	}
	if n, err := strconv.Atoi(pitch); err == nil {
		note := cadenza.Note(n)
		if !note.Valid() || note == cadenza.REST {
			return 0, "", fmt.Errorf("%w: MIDI pitch %d outside the playable range", cadenza.ErrValue, n)
		}
		return note, file, nil
	}
	note, err := cadenza.ParseNote(pitch)
	if err != nil {
		return 0, "", err
	}
	return note, file, nil
}

// downmix collapses a decoded sample to the mono layout the container
// stores.
func downmix(b *cadenza.Buffer) *cadenza.Buffer {
	if b.Channels == 1 {
		return b
	}
	mono := cadenza.NewBuffer(1, b.Frames(), b.SampleRate)
	for i := 0; i < b.Frames(); i++ {
		var sum float32
		for c := 0; c < b.Channels; c++ {
			sum += b.Sample(c, i)
		}
		mono.Data[i] = sum / float32(b.Channels)
	}
	return mono
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "cadenza-pack builds an instrument container from WAV samples")
	fmt.Fprintln(os.Stderr, "Usage: cadenza-pack -name piano [flags] 60=c4.wav 67=g4.wav ...")
	flag.PrintDefaults()
}
