package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/we"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run a single counter in the terminal",
	Long: `Reads one operation per line:

  increment | inc | +
  decrement | dec | -
  reset | 0
  increment-by N | by N | +N | -N
  count
  quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runRepl is a view over a local counter.Store. The count is printed by a
// subscription, so every applied operation reports the new count exactly once.
func runRepl(in io.Reader, out io.Writer) error {
	store := counter.New()
	printCount := func(state counter.Counter) {
		fmt.Fprintf(out, "The count is: %d\n", state.Value())
	}
	unsubscribe := store.Subscribe(printCount)
	defer unsubscribe()

	printCount(store.State())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "count":
			printCount(store.State())
			continue
		case "quit", "exit":
			return nil
		}

		op, err := counter.ParseOperation(line)
		switch {
		case err == nil:
			store.Dispatch(op)
		case counter.IsInvalidArgument(err):
			fmt.Fprintf(out, "invalid argument: %v\n", err)
		case errors.As(err, new(we.CommandNotFoundError)):
			fmt.Fprintf(out, "unknown operation %q\n", line)
		default:
			return err
		}
	}

	return scanner.Err()
}
