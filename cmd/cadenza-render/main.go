// Command cadenza-render renders a yaml score offline to a WAV file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/audio"
	"github.com/cadenza-audio/cadenza/codec"
	"github.com/cadenza-audio/cadenza/engine"
)

func main() {
	versionFlag := flag.Bool("v", false, "Print version.")
	out := flag.String("o", "", "Output file. Defaults to the score name with a .wav extension.")
	tail := flag.Float64("tail", 1, "Seconds rendered after the last note, letting effect tails decay.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(engine.Version())
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	if err := run(flag.Arg(0), *out, *tail); err != nil {
		fmt.Fprintf(os.Stderr, "cadenza-render: %v\n", err)
		os.Exit(1)
	}
}

func run(filename, out string, tail float64) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var score cadenza.Score
	if err := yaml.Unmarshal(data, &score); err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}
	e := engine.New(nil)
	total, err := engine.PlayScore(e, &score, nil, 0)
	if err != nil {
		return err
	}
	e.Start()
	rendered := audio.Render(e, int(audio.SecondsFrames(total+tail)))
	encoded, err := codec.WAVEncoder{}.Encode(rendered)
	if err != nil {
		return err
	}
	if out == "" {
		out = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".wav"
	}
	return os.WriteFile(out, encoded, 0644)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "cadenza-render renders a yaml score to a WAV file")
	fmt.Fprintln(os.Stderr, "Usage: cadenza-render [flags] score.yml")
	flag.PrintDefaults()
}
