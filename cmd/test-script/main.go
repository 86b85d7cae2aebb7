// Command test-script is a manual test for the keystroke script.
// It waits 3 seconds, then runs one pass of the script through the local
// desktop keyboard. Focus a text editor before the countdown finishes.
//
// Usage:
//
//	go run ./cmd/test-script [--method type|paste] [--strict]
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/chaz8081/vizard/internal/clock"
	"github.com/chaz8081/vizard/internal/inject"
	"github.com/chaz8081/vizard/internal/led"
	"github.com/chaz8081/vizard/internal/sequencer"
)

func main() {
	method := flag.String("method", "type", "inject method: type or paste")
	strict := flag.Bool("strict", false, "re-check the connection before every step")
	flag.Parse()

	fmt.Printf("Will run the script using %q method in 3 seconds...\n", *method)
	fmt.Println("Focus a text editor now!")

	for i := 3; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}

	kb := inject.NewLocalKeyboard(*method)
	kb.SetConnected(true)

	var opts sequencer.Options
	if *strict {
		opts.Recheck = kb
	}
	indicator := led.NewLogged("activity")
	seq := sequencer.New(kb, indicator, clock.Real{}, sequencer.Greeting(sequencer.StepDelay), opts)

	start := time.Now()
	seq.Run(context.Background())

	fmt.Printf("\nDone in %s, indicator pulsed %d times.\n", time.Since(start).Round(time.Millisecond), indicator.Pulses())
}
