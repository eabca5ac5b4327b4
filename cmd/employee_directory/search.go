package main

import (
	"bufio"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/employee-directory/internal/observability"
	"github.com/jonathan/employee-directory/internal/search"
)

func newSearchCmd(a *app) *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search employees by name, email, department or designation",
		Long: "Search once for the given text, or with --interactive treat each line read " +
			"from stdin as the current contents of a search box. Lines arriving faster than " +
			"the debounce period are coalesced into a single query.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return a.runInteractiveSearch(cmd)
			}
			text := strings.Join(args, " ")
			items, err := a.service.SearchEmployees(cmd.Context(), text)
			if err != nil {
				return err
			}
			return a.emit(cmd, items, func(p *observability.Printer) { p.PrintEmployees(items) })
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read search text line by line from stdin")
	return cmd
}

func (a *app) runInteractiveSearch(cmd *cobra.Command) error {
	ctx := cmd.Context()
	printer := a.printer(cmd)

	var outMu sync.Mutex
	session := a.service.NewSearchSession(ctx, func(res search.Result) {
		outMu.Lock()
		defer outMu.Unlock()
		if a.jsonOutput {
			_ = writeJSON(cmd.OutOrStdout(), searchResultJSON(res))
			return
		}
		printer.PrintSearchResult(res)
	})
	defer session.Close()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		session.Input(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read search input: %w", err)
	}

	// Let the last input settle before detaching.
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for session.State() == search.Pending {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	session.Wait()

	stats := session.Stats()
	a.logger.Debug("search session finished",
		zap.Int("issued", stats.Issued),
		zap.Int("applied", stats.Applied),
		zap.Int("discarded", stats.Discarded),
	)
	if !a.jsonOutput {
		outMu.Lock()
		defer outMu.Unlock()
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d queries issued, %d applied, %d discarded\n",
			stats.Issued, stats.Applied, stats.Discarded)
		return err
	}
	return nil
}

func searchResultJSON(res search.Result) map[string]any {
	out := map[string]any{
		"query":   res.Text,
		"items":   res.Employees,
		"cleared": res.Cleared,
	}
	if res.Err != nil {
		out["error"] = res.Err.Error()
	}
	return out
}
