// Package command turns text commands into calls against the calendar
// registry and its engines. It is the only layer that talks to the user; the
// core below it never prints.
package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"skej/src-cal/metric"
	"skej/src-cal/registry"
)

// Returned by Execute for the exit command so the loops can stop cleanly.
var errExit = errors.New("exit")

type Shell struct {
	reg      *registry.Registry
	counters *metric.Counters
	when     *when.Parser
	out      io.Writer
}

func NewShell(reg *registry.Registry, counters *metric.Counters, out io.Writer) *Shell {
	if counters == nil {
		counters = metric.Init()
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Shell{
		reg:      reg,
		counters: counters,
		when:     w,
		out:      out,
	}
}

// Run is the interactive loop: prompt, execute, report, repeat. Command
// errors are printed and the loop continues; only `exit` or EOF stop it.
func (s *Shell) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := s.Execute(scanner.Text()); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %s\n", err)
		}
	}
}

// RunScript is the headless mode: execute every line of the script, stop on
// the first failing command.
func (s *Shell) RunScript(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if err := s.Execute(scanner.Text()); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}

// Execute parses and runs one command line. Blank lines and # comments are
// no-ops.
func (s *Shell) Execute(line string) error {
	tokens := tokenize(line)
	if len(tokens) == 0 || tokens[0][0] == '#' {
		return nil
	}

	var err error
	switch tokens[0] {
	case "exit":
		return errExit
	case "create":
		err = s.dispatchCreate(tokens[1:])
	case "edit":
		err = s.dispatchEdit(tokens[1:])
	case "use":
		err = s.useCalendar(tokens[1:])
	case "print":
		err = s.printEvents(tokens[1:])
	case "show":
		err = s.showStatus(tokens[1:])
	case "copy":
		err = s.dispatchCopy(tokens[1:])
	case "export":
		err = s.export(tokens[1:])
	case "list":
		err = s.listCalendars(tokens[1:])
	default:
		err = fmt.Errorf("unknown command %q", tokens[0])
	}
	s.counters.ObserveError(err)
	return err
}

func (s *Shell) dispatchCreate(args []string) error {
	if len(args) == 0 {
		return errors.New("create what? (calendar, event)")
	}
	switch args[0] {
	case "calendar":
		return s.createCalendar(args[1:])
	case "event":
		return s.createEvent(args[1:])
	default:
		return fmt.Errorf("can't create %q", args[0])
	}
}

func (s *Shell) dispatchEdit(args []string) error {
	if len(args) == 0 {
		return errors.New("edit what? (calendar, event, events, series)")
	}
	switch args[0] {
	case "calendar":
		return s.editCalendar(args[1:])
	case "event", "events", "series":
		return s.editEvents(args[0], args[1:])
	default:
		return fmt.Errorf("can't edit %q", args[0])
	}
}

func (s *Shell) dispatchCopy(args []string) error {
	if len(args) == 0 {
		return errors.New("copy what? (event, events)")
	}
	switch args[0] {
	case "event":
		return s.copyEvent(args[1:])
	case "events":
		return s.copyEvents(args[1:])
	default:
		return fmt.Errorf("can't copy %q", args[0])
	}
}
