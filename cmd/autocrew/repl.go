package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/hupe1980/autocrew"
	"github.com/hupe1980/autocrew/logging"
	"github.com/hupe1980/autocrew/skill"
)

const replHelp = `Commands:
  /team <task>   Assemble an agent team for the task
  /history       Show the persisted conversation
  /clear         Clear the persisted conversation
  /help          Show this help
  /quit          Exit

Anything else is sent to the assistant.`

// runREPL drives the interactive loop until /quit or EOF. A SIGINT cancels
// the in-flight turn instead of killing the process.
func runREPL(crew *autocrew.AutoCrew) error {
	prompt := color.New(color.FgGreen, color.Bold)
	notice := color.New(color.FgHiBlack)

	if skills := crew.Skills(); skills != nil {
		watcher, err := skill.NewWatcher(skills, logging.NoOpLogger{})
		if err == nil {
			defer watcher.Close()
		}
	}

	fmt.Println("AutoCrew ready. Type /help for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		prompt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch {
		case input == "/quit" || input == "/exit":
			return nil

		case input == "/help":
			fmt.Println(replHelp)

		case input == "/clear":
			if err := crew.ClearSession(); err != nil {
				fmt.Fprintln(os.Stderr, "clear failed:", err)
				continue
			}
			notice.Println("session cleared")

		case input == "/history":
			records, err := crew.History()
			if err != nil {
				fmt.Fprintln(os.Stderr, "history failed:", err)
				continue
			}
			if len(records) == 0 {
				notice.Println("(empty)")
				continue
			}
			for _, rec := range records {
				fmt.Printf("%s: %s\n", rec.Role, rec.Content)
			}

		case strings.HasPrefix(input, "/team"):
			task := strings.TrimSpace(strings.TrimPrefix(input, "/team"))
			if task == "" {
				fmt.Println("usage: /team <task>")
				continue
			}
			if err := interruptible(func(ctx context.Context) error {
				report, err := crew.RunTeam(ctx, task)
				if report != nil {
					printReport(report)
				}
				return err
			}); err != nil {
				fmt.Fprintln(os.Stderr, "team run failed:", err)
			}

		case strings.HasPrefix(input, "/"):
			fmt.Println("unknown command, try /help")

		default:
			if err := interruptible(func(ctx context.Context) error {
				reply, err := crew.Chat(ctx, input)
				if err != nil {
					return err
				}
				fmt.Println(reply)
				return nil
			}); err != nil {
				fmt.Fprintln(os.Stderr, "chat failed:", err)
			}
		}
	}
}

// interruptible runs fn with a context canceled by Ctrl-C.
func interruptible(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx)
}
