package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vnykmshr/persimq/internal/queue"
)

type statsView struct {
	Path         string  `json:"path"`
	FileSize     uint64  `json:"file_size"`
	RegionSize   uint64  `json:"region_size"`
	AppendPtr    uint64  `json:"append_ptr"`
	ExtractPtr   uint64  `json:"extract_ptr"`
	Messages     uint64  `json:"messages"`
	StoredBytes  uint64  `json:"stored_bytes"`
	PayloadBytes uint64  `json:"payload_bytes"`
	FreeBytes    uint64  `json:"free_bytes"`
	UsedPercent  float64 `json:"used_percent"`
}

func newStatsView(s queue.Stats) statsView {
	v := statsView{
		Path:         s.Path,
		FileSize:     s.FileSize,
		RegionSize:   s.RegionSize,
		AppendPtr:    s.AppendPtr,
		ExtractPtr:   s.ExtractPtr,
		Messages:     s.Messages,
		StoredBytes:  s.StoredBytes,
		PayloadBytes: s.PayloadBytes,
		FreeBytes:    s.FreeBytes,
	}
	if s.RegionSize > 0 {
		v.UsedPercent = float64(s.StoredBytes) / float64(s.RegionSize) * 100
	}
	return v
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show queue statistics",
		Long:  "Show queue statistics as a table on a terminal and as JSON otherwise.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var view statsView
			err := ctx.inspectQueue(cmd, func(q *queue.Queue) error {
				view = newStatsView(q.Stats())
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON || !isTerminal(out) {
				return writeJSON(cmd, view)
			}

			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, statsRows(view), []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Always print JSON")
	return cmd
}

func statsRows(view statsView) [][]string {
	p := message.NewPrinter(language.English)
	u := func(v uint64) string { return p.Sprintf("%d", v) }
	return [][]string{
		{"Path", view.Path},
		{"File Size", u(view.FileSize)},
		{"Region Size", u(view.RegionSize)},
		{"Append Pointer", u(view.AppendPtr)},
		{"Extract Pointer", u(view.ExtractPtr)},
		{"Messages", u(view.Messages)},
		{"Stored Bytes", u(view.StoredBytes)},
		{"Payload Bytes", u(view.PayloadBytes)},
		{"Free Bytes", u(view.FreeBytes)},
		{"Used", p.Sprintf("%.1f%%", view.UsedPercent)},
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
