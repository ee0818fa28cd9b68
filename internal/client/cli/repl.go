package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Forgot(ctx context.Context) error
	Search(ctx context.Context) error
	Watch(ctx context.Context) error
	Quotes(ctx context.Context) error
	Call(ctx context.Context, arg string) error
	Past(ctx context.Context) error
	Profile(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	Question(ctx context.Context) error
}

// runREPL starts a read-eval-print loop for the movequote CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - forgot         — reset password via security question
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - search         — submit a new moving search
//	  - watch          — poll the current search for quote updates
//	  - quotes         — show the current quotes once
//	  - call <n>       — place a call to the n-th company
//	  - past           — list past searches and pick one
//	  - profile        — show the profile
//	  - update         — edit name and email
//	  - question       — change the security question
//	  - logout         — sign out
//	  - exit | quit    — leave the program
//
// Errors returned by command handlers are printed here and the loop keeps
// going; a failed command never terminates the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	printlnFn("movequote CLI (type 'help' for commands)")

	for {
		printfFn("mq %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: search, watch, quotes, call <n>, past, profile, update, question, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "forgot":
			err = a.Forgot(ctx)

		case "search":
			err = a.Search(ctx)

		case "watch":
			err = a.Watch(ctx)

		case "quotes":
			err = a.Quotes(ctx)

		case "call":
			if len(args) == 0 {
				printlnFn("Usage: call <n>")
				continue
			}
			err = a.Call(ctx, args[0])

		case "past":
			err = a.Past(ctx)

		case "profile":
			err = a.Profile(ctx)

		case "update":
			err = a.UpdateProfile(ctx)

		case "question":
			err = a.Question(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(fmt.Sprintf("Error: %s", err))
		}
	}
}
