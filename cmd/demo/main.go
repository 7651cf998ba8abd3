package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"

	"github.com/comalice/reactiontask"
	"github.com/comalice/reactiontask/internal/production"
)

func main() {
	err := mainError()
	if err != nil {
		panic(fmt.Sprintf("%#v\n", err))
	}
}

func mainError() error {
	duration := flag.Duration("duration", 2*time.Minute, "how long to measure")
	minSignal := flag.Duration("min-signal", reactiontask.DefaultMinSignal, "shortest delay before a signal")
	maxSignal := flag.Duration("max-signal", reactiontask.DefaultMaxSignal, "longest delay before a signal")
	debug := flag.Bool("debug", false, "print engine debug lines")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := micrologger.New(micrologger.Config{})
	if err != nil {
		return microerror.Mask(err)
	}

	host := reactiontask.HostFuncs{
		Signal: func() { fmt.Println("Signal Received") },
		Stop:   func() { fmt.Println("Signal Stop") },
	}
	if *debug {
		host.Debug = func(line string) { logger.Debugf(ctx, "%s", line) }
	}

	records := make(chan reactiontask.TransitionRecord, 64)
	publisher := production.NewChannelPublisher(records)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printSamples(records)
	}()

	session, err := reactiontask.New(host,
		reactiontask.WithSignalInterval(*minSignal, *maxSignal),
		reactiontask.WithPublisher(publisher),
	)
	if err != nil {
		return microerror.Mask(err)
	}
	defer func() {
		session.Close()
		publisher.Close()
		<-printed
	}()

	fmt.Println("Press Enter on a signal. 'm' adds a milestone, 'e <name>' logs an event, 'q' quits.")
	if err := session.StartMeasurement(); err != nil {
		return microerror.Mask(err)
	}

	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()
	lines := readLines(ctx, os.Stdin)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			err := handleLine(session, strings.TrimSpace(line))
			if IsQuit(err) {
				break loop
			} else if err != nil {
				logger.Errorf(ctx, err, "command %q failed", line)
			}
		}
	}

	reactions := session.ExportReactionData()
	events := session.ExportEventsData()
	if err := session.StopMeasurement(); err != nil {
		return microerror.Mask(err)
	}

	fmt.Println("reactions:", reactions)
	fmt.Println("events:   ", events)
	return nil
}

// readLines forwards lines from f until ctx is done or input ends.
func readLines(ctx context.Context, f *os.File) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// printSamples prints one line per recorded reaction until records closes.
func printSamples(records <-chan reactiontask.TransitionRecord) {
	for r := range records {
		if s := r.Sample; s != nil {
			outcome := "response"
			if s.TimedOut {
				outcome = "timeout"
			}
			fmt.Printf("%s: ms from start: %d, ms reaction: %d\n", outcome, s.ElapsedMs, s.ReactionMs)
		}
	}
}

func handleLine(session *reactiontask.Session, line string) error {
	switch {
	case line == "":
		return session.RespondToStimulus("")
	case line == "q":
		return microerror.Mask(quitError)
	case line == "m":
		return session.AddMilestone()
	case strings.HasPrefix(line, "e "):
		return session.AddEventLog(strings.TrimSpace(line[2:]))
	default:
		return session.RespondToStimulus(line)
	}
}
