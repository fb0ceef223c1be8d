package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/whatsheet/whatsheet/internal/model"
)

// runMenu drives the interactive operator loop until quit or ctx
// cancellation.
func (a *app) runMenu(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(out, "whatsheet — WhatsApp sheet automation\n")
	fmt.Fprintf(out, "Team member: %s\n\n", a.cfg.Operator.TeamMember)

	for ctx.Err() == nil {
		fmt.Fprintln(out, "Choose an option:")
		fmt.Fprintln(out, "1. Send bulk messages")
		fmt.Fprintln(out, "2. Send message queue")
		fmt.Fprintln(out, "3. Send both (bulk + queue)")
		fmt.Fprintln(out, "4. Check connection status")
		fmt.Fprintln(out, "5. Toggle autorun")
		fmt.Fprintln(out, "6. Exit")

		choice, ok := readLine(scanner, out, "Enter your choice (1-6): ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			if !confirm(scanner, out, "send bulk messages") {
				continue
			}
			a.reportPass(out, "bulk", func() (model.PassSummary, error) {
				return a.RunBulk(ctx)
			})
		case "2":
			if !confirm(scanner, out, "send the message queue") {
				continue
			}
			a.runQueueAction(ctx, out)
		case "3":
			if !confirm(scanner, out, "send both bulk messages and the message queue") {
				continue
			}
			a.reportPass(out, "bulk", func() (model.PassSummary, error) {
				return a.RunBulk(ctx)
			})
			a.runQueueAction(ctx, out)
		case "4":
			st, err := a.channel.Status(ctx)
			if err != nil {
				fmt.Fprintf(out, "ERROR: %v\n\n", err)
				continue
			}
			fmt.Fprintf(out, "Connected: %v  Phone: %s  State: %s\n\n", st.Connected, st.Phone, st.State)
		case "5":
			if a.sched.IsRunning() {
				a.sched.Stop()
				fmt.Fprintln(out, "Autorun stopped.")
			} else {
				a.sched.Start()
				fmt.Fprintf(out, "Autorun started (every %s).\n", a.cfg.Autorun.Interval)
			}
			fmt.Fprintln(out)
		case "6":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		default:
			fmt.Fprintf(out, "Invalid choice %q. Please select 1-6.\n\n", choice)
		}
	}
	return ctx.Err()
}

// runQueueAction mirrors the operator semantics: immediate rows first,
// then due scheduled rows.
func (a *app) runQueueAction(ctx context.Context, out io.Writer) {
	a.reportPass(out, "queue (immediate)", func() (model.PassSummary, error) {
		return a.RunQueue(ctx, false)
	})
	a.reportPass(out, "queue (scheduled)", func() (model.PassSummary, error) {
		return a.RunQueue(ctx, true)
	})
}

func (a *app) reportPass(out io.Writer, name string, run func() (model.PassSummary, error)) {
	sum, err := run()
	if err != nil {
		fmt.Fprintf(out, "ERROR: %s pass failed: %v\n\n", name, err)
		return
	}
	fmt.Fprintf(out, "%s: sent=%d failed=%d skipped=%d total=%d\n\n",
		name, sum.Sent, sum.Failed, sum.Skipped, sum.Total)
}

func readLine(scanner *bufio.Scanner, out io.Writer, prompt string) (string, bool) {
	fmt.Fprint(out, prompt)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

func confirm(scanner *bufio.Scanner, out io.Writer, action string) bool {
	answer, ok := readLine(scanner, out, fmt.Sprintf("Are you sure you want to %s? (y/n): ", action))
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
