package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/persimq/internal/queue"
)

// maxLineSize bounds a message read from standard input.
const maxLineSize = 16 << 20

func newPushCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "push [message...]",
		Short: "Append messages to the queue",
		Long: "Append each argument as one message. Without arguments every line " +
			"read from standard input becomes a message.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd, func(q *queue.Queue) error {
				pushed := 0
				push := func(msg []byte) error {
					if err := q.Push(msg); err != nil {
						return fmt.Errorf("push message %d: %w", pushed+1, err)
					}
					pushed++
					return nil
				}

				var err error
				if len(args) > 0 {
					for _, arg := range args {
						if err = push([]byte(arg)); err != nil {
							break
						}
					}
				} else {
					scanner := bufio.NewScanner(cmd.InOrStdin())
					scanner.Buffer(make([]byte, 64*1024), maxLineSize)
					for scanner.Scan() {
						if err = push(scanner.Bytes()); err != nil {
							break
						}
					}
					if err == nil {
						err = scanner.Err()
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d message(s)\n", pushed)
				return err
			})
		},
	}
}

func newPopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pop [n]",
		Short: "Remove the oldest n messages (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := uint64(1)
			if len(args) == 1 {
				v, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil || v == 0 {
					return fmt.Errorf("invalid count %q: must be a positive integer", args[0])
				}
				n = v
			}

			return ctx.withQueue(cmd, func(q *queue.Queue) error {
				available := q.MessagesAvailable()
				if available == 0 {
					return queue.ErrEmpty
				}
				if err := q.PopN(n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Popped %d message(s)\n", min(n, available))
				return nil
			})
		},
	}
}

func newPeekCommand(ctx *commandContext) *cobra.Command {
	var count uint64

	cmd := &cobra.Command{
		Use:   "peek",
		Short: "Show the oldest messages without removing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.inspectQueue(cmd, func(q *queue.Queue) error {
				out := cmd.OutOrStdout()
				if q.IsEmpty() {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}

				buf := make([]byte, q.BytesAvailable())
				total, read, err := q.GetAll(buf, count)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Peeked %d of %d message(s), %d bytes\n", read, q.MessagesAvailable(), total)
				fmt.Fprintf(out, "%q\n", buf[:total])
				return nil
			})
		},
	}

	cmd.Flags().Uint64VarP(&count, "count", "n", 10, "Maximum number of messages")
	return cmd
}

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var extract bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print messages as hex, optionally removing them",
		Long: "Print up to -n messages (0 = all) as hex bytes. Messages are popped " +
			"while printing; the removal is only persisted with --extract.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New("count must not be negative")
			}

			q, err := ctx.openQueue(cmd)
			if err != nil {
				ctx.flushLog()
				return err
			}
			defer ctx.flushLog()

			out := cmd.OutOrStdout()
			stats := q.Stats()
			fmt.Fprintf(out, "--- File size: %d bytes, %d message(s) ---\n", stats.FileSize, stats.Messages)

			err = dumpMessages(cmd, q, limit)

			// without --extract the pops are discarded
			var cerr error
			if extract {
				cerr = q.Close()
			} else {
				cerr = q.Drop()
			}
			if err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "--- Processing complete ---")
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "count", "n", 10, "Maximum number of messages to print (0 = all)")
	cmd.Flags().BoolVarP(&extract, "extract", "e", false, "Remove the printed messages from the queue")
	return cmd
}

func dumpMessages(cmd *cobra.Command, q *queue.Queue, limit int) error {
	out := cmd.OutOrStdout()
	for i := 1; !q.IsEmpty() && (limit == 0 || i <= limit); i++ {
		msg, err := q.Peek()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Message %d: [ %s ]\n", i, hexBytes(msg))
		if err := q.Pop(); err != nil {
			return err
		}
	}
	return nil
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("0x%02X", c)
	}
	return strings.Join(parts, ", ")
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd, func(q *queue.Queue) error {
				dropped := q.MessagesAvailable()
				if err := q.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d message(s)\n", dropped)
				return nil
			})
		},
	}
}
