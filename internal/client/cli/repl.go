package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medigenie/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isRegistered(ctx context.Context) bool

	Register(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Language(ctx context.Context, args []string) error

	AddLog(ctx context.Context, args []string) error
	Logs(ctx context.Context, args []string) error

	Twin(ctx context.Context, args []string) error
	Rebuild(ctx context.Context, args []string) error
	Simulate(ctx context.Context, args []string) error
	Summary(ctx context.Context, args []string) error

	Chat(ctx context.Context, args []string) error
	Triage(ctx context.Context, args []string) error
	Pathway(ctx context.Context, args []string) error
	Drugs(ctx context.Context, args []string) error
	Lab(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Clinics(ctx context.Context, args []string) error

	Export(ctx context.Context, args []string) error
	Report(ctx context.Context, args []string) error
}

const (
	helpUnregistered = "Available commands: register, help, exit"
	helpRegistered   = "Available commands: profile, edit, lang, log, logs, twin, rebuild, simulate, summary, " +
		"chat, triage, pathway, drugs, lab, search, clinics, export, report, help, exit"
)

// runREPL starts the read–eval–print loop of the MediGenie CLI.
//
// It reads a line via next, parses the first token as the command and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits when next
// reports no more input, when the user types "exit" or "quit", or when ctx
// is canceled.
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, next func() (string, bool)) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("mg %s> ", statusFn()))
		line, ok := next()
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			if a.isRegistered(ctx) {
				printlnFn(helpRegistered)
			} else {
				printlnFn(helpUnregistered)
			}

		case "register":
			err = a.Register(ctx, args)
		case "profile":
			err = a.Profile(ctx, args)
		case "edit":
			err = a.Edit(ctx, args)
		case "lang":
			err = a.Language(ctx, args)

		case "log":
			err = a.AddLog(ctx, args)
		case "logs":
			err = a.Logs(ctx, args)

		case "twin":
			err = a.Twin(ctx, args)
		case "rebuild":
			err = a.Rebuild(ctx, args)
		case "simulate":
			err = a.Simulate(ctx, args)
		case "summary":
			err = a.Summary(ctx, args)

		case "chat":
			err = a.Chat(ctx, args)
		case "triage":
			err = a.Triage(ctx, args)
		case "pathway":
			err = a.Pathway(ctx, args)
		case "drugs":
			err = a.Drugs(ctx, args)
		case "lab":
			err = a.Lab(ctx, args)
		case "search":
			err = a.Search(ctx, args)
		case "clinics":
			err = a.Clinics(ctx, args)

		case "export":
			err = a.Export(ctx, args)
		case "report":
			err = a.Report(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(describe(err))
		}
	}
}

// describe turns service errors into a user-facing line.
func describe(err error) string {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return fmt.Sprintf("Invalid %s: %s.", ve.Field, ve.Reason)
	case errors.Is(err, common.ErrNotRegistered):
		return "Please register first (type 'register')."
	case errors.Is(err, common.ErrNoTwin):
		return "No digital twin yet. Add a follow-up log or run 'rebuild' first."
	case errors.Is(err, common.ErrInFlight):
		return "That action is already running, please wait."
	case errors.Is(err, common.ErrStaleResult):
		return "A newer rebuild superseded this one."
	case errors.Is(err, common.ErrInferenceUnavailable):
		return "The AI service is unavailable right now: " + err.Error()
	case errors.Is(err, common.ErrMalformedDerivedState):
		return "The AI service returned an unusable answer; nothing was changed."
	default:
		return "Error: " + err.Error()
	}
}
