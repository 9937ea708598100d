package slabpool

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// WriteStatus renders one row per size-class slot: index, block size, free
// and allocated block counts. Classes that have not been created show zero
// counts.
func (p *Pool) WriteStatus(w io.Writer) {
	p.panicIfReleased()
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Index", "Block", "Free", "Allocated", "Idle Bytes"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, c := range p.classes {
		row := []string{strconv.Itoa(i), strconv.Itoa(PowerOfTwo(i)), "0", "0", "0"}
		if c != nil {
			row[2] = strconv.Itoa(c.FreeCount())
			row[3] = strconv.Itoa(c.AllocatedCount())
			row[4] = strconv.Itoa(c.IdleBytes())
		}
		table.Append(row)
	}
	table.SetFooter([]string{"", "", "", "Free budget", strconv.Itoa(p.freeSize)})
	table.Render()
}

// logStatus emits per-class counts at debug level.
func (p *Pool) logStatus() {
	if !p.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, c := range p.classes {
		if c == nil {
			continue
		}
		p.logger.Debug("slabpool: size class status",
			"index", i, "size", c.Size(), "free", c.FreeCount(), "allocated", c.AllocatedCount())
	}
}
