// Command cadenza-play plays a yaml score through the engine on the
// default audio output.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cadenza-audio/cadenza"
	"github.com/cadenza-audio/cadenza/engine"
	"github.com/cadenza-audio/cadenza/oto"
)

func main() {
	versionFlag := flag.Bool("v", false, "Print version.")
	verbose := flag.Bool("d", false, "Log engine activity to standard error.")
	tail := flag.Float64("tail", 1, "Seconds to keep playing after the last note, letting effect tails decay.")
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
	if err := run(flag.Arg(0), *verbose, *tail); err != nil {
		fmt.Fprintf(os.Stderr, "cadenza-play: %v\n", err)
		os.Exit(1)
	}
}

func run(filename string, verbose bool, tail float64) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var score cadenza.Score
	if err := yaml.Unmarshal(data, &score); err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}
	log := zap.NewNop()
	if verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	e := engine.New(log)
	total, err := engine.PlayScore(e, &score, nil, 0)
	if err != nil {
		return err
	}
	player, err := oto.NewPlayer(e)
	if err != nil {
		return err
	}
	defer player.Close()
	e.Start()
	player.Play()
	deadline := total + tail
	for e.Now() < deadline {
		time.Sleep(50 * time.Millisecond)
	}
	e.Stop()
	time.Sleep(300 * time.Millisecond)
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "cadenza-play plays a yaml score on the default audio output")
	fmt.Fprintln(os.Stderr, "Usage: cadenza-play [flags] score.yml")
	flag.PrintDefaults()
}
