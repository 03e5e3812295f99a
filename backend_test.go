package sheetdesk_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ideamans/go-sheetdesk"
)

// memoryBackend keeps sheets as row slices (row 1 at index 0) and records calls.
type memoryBackend struct {
	mu     sync.Mutex
	sheets map[string][][]string
	tabs   map[int64]string
	calls  []string

	failGet    error
	failAppend error
	failUpdate error
	failDelete error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		sheets: map[string][][]string{
			"Sheet1":   {sheetdesk.TicketSchema.Names()},
			"Sheet2":   {sheetdesk.QuoteSchema.Names()},
			"Archive":  {sheetdesk.TicketSchema.Names()},
			"Archive2": {sheetdesk.QuoteSchema.Names()},
		},
		tabs: map[int64]string{0: "Sheet1", 1: "Sheet2"},
	}
}

func (b *memoryBackend) record(call string) {
	b.calls = append(b.calls, call)
}

func (b *memoryBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// callCount counts calls whose name starts with prefix.
func (b *memoryBackend) callCount(prefix string) int {
	n := 0
	for _, c := range b.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (b *memoryBackend) GetValues(_ context.Context, _ string, rangeSpec string) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("get " + rangeSpec)
	if b.failGet != nil {
		return nil, b.failGet
	}

	sheet, startRow, endRow := parseTestRange(rangeSpec)
	rows := b.sheets[sheet]
	out := [][]string{}
	for r := startRow; r <= len(rows) && (endRow == 0 || r <= endRow); r++ {
		out = append(out, append([]string(nil), rows[r-1]...))
	}
	return out, nil
}

func (b *memoryBackend) AppendValues(_ context.Context, _ string, rangeSpec string, rows [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("append " + rangeSpec)
	if b.failAppend != nil {
		return b.failAppend
	}
	sheet := sheetdesk.RangeSheet(rangeSpec)
	b.sheets[sheet] = append(b.sheets[sheet], rows...)
	return nil
}

func (b *memoryBackend) UpdateValues(_ context.Context, _ string, rangeSpec string, rows [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("update " + rangeSpec)
	if b.failUpdate != nil {
		return b.failUpdate
	}
	sheet, startRow, _ := parseTestRange(rangeSpec)
	for i, row := range rows {
		r := startRow + i
		for len(b.sheets[sheet]) < r {
			b.sheets[sheet] = append(b.sheets[sheet], []string{})
		}
		b.sheets[sheet][r-1] = append([]string(nil), row...)
	}
	return nil
}

func (b *memoryBackend) DeleteRows(_ context.Context, _ string, tabID int64, startIndex, endIndex int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(fmt.Sprintf("delete %d %d-%d", tabID, startIndex, endIndex))
	if b.failDelete != nil {
		return b.failDelete
	}
	sheet, ok := b.tabs[tabID]
	if !ok {
		return fmt.Errorf("no tab %d", tabID)
	}
	rows := b.sheets[sheet]
	if int(endIndex) > len(rows) {
		endIndex = int64(len(rows))
	}
	if int(startIndex) < len(rows) {
		b.sheets[sheet] = append(rows[:startIndex], rows[endIndex:]...)
	}
	return nil
}

// Sheet returns a copy of the rows of sheet, header included.
func (b *memoryBackend) Sheet(name string) [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]string, len(b.sheets[name]))
	for i, row := range b.sheets[name] {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// parseTestRange extracts the sheet and row bounds of "Sheet1!A2:M" style ranges.
func parseTestRange(rangeSpec string) (sheet string, startRow, endRow int) {
	sheet = sheetdesk.RangeSheet(rangeSpec)
	cells := rangeSpec[strings.LastIndex(rangeSpec, "!")+1:]
	start, end, _ := strings.Cut(cells, ":")
	startRow = rowNumber(start)
	if startRow == 0 {
		startRow = 1
	}
	if end == "" {
		return sheet, startRow, startRow
	}
	return sheet, startRow, rowNumber(end)
}

func rowNumber(cell string) int {
	n, _ := strconv.Atoi(strings.TrimLeft(cell, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	return n
}
