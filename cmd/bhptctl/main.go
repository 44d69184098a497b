// bhptctl is a simple CLI for experimenting with a Binary History
// Probability Table.
//
// Usage:
//
//	bhptctl [options]    Start a REPL against a new in-memory table
//
// Options:
//
//	-I, --capacity             Entry capacity (default: from config)
//	-L, --history-length       History bits per entry (default: from config)
//	-N, --consideration-depth  Weight function window (default: history-length)
//	-m, --mwsp                 Minimal Weight State Position, -1 disables
//	    --defer                Enable deferred weight recomputation
//	    --auto-remove          Evict lowest-weight entry on Insert when full
//	    --seed                 PRNG seed
//	-c, --config               Explicit config file path
//
// Commands (in REPL):
//
//	push <index> <bit>        Record a new most-recent state bit
//	history <index>           Show an entry's history, newest-to-oldest
//	select [n]                Draw n times (default 1), show a histogram
//	insert [bits...]          Allocate an entry, optional initial state
//	remove <index>            Invalidate an entry
//	mwsp <m>                  Change the Minimal Weight State Position
//	defer <on|off>            Toggle deferred weight recomputation
//	info                      Show table configuration and occupancy
//	weights                   Show every entry's cached weight
//	dump <file>               Write a JSON snapshot of observable state
//	help                      Show this help
//	exit / quit / q           Exit
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bhpt/internal/bhptconfig"
	"github.com/calvinalkan/bhpt/pkg/bhpt"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "bhptctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("bhptctl", flag.ContinueOnError)
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: bhptctl [options]")
		fmt.Fprintln(os.Stderr)
		flagSet.PrintDefaults()
	}

	capacity := flagSet.IntP("capacity", "I", 0, "entry capacity")
	historyLength := flagSet.IntP("history-length", "L", 0, "history bits per entry")
	considerationDepth := flagSet.IntP("consideration-depth", "N", 0, "weight function window")
	mwsp := flagSet.IntP("mwsp", "m", 0, "minimal weight state position, -1 disables")
	deferMode := flagSet.Bool("defer", false, "enable deferred weight recomputation")
	autoRemove := flagSet.Bool("auto-remove", false, "evict lowest-weight entry on Insert when full")
	seed := flagSet.Uint64("seed", 0, "PRNG seed")
	configPath := flagSet.StringP("config", "c", "", "explicit config file path")

	if parseErr := flagSet.Parse(args); parseErr != nil {
		if parseErr == flag.ErrHelp {
			return nil
		}

		return parseErr
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getwd: %w", err)
	}

	cfg, _, err := bhptconfig.Load(workDir, *configPath, nil)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if isFlagSet(flagSet, "capacity") {
		cfg.Capacity = *capacity
	}

	if isFlagSet(flagSet, "history-length") {
		cfg.HistoryLength = *historyLength
	}

	if isFlagSet(flagSet, "consideration-depth") {
		cfg.ConsiderationDepth = *considerationDepth
	}

	if isFlagSet(flagSet, "mwsp") {
		cfg.MWSP = *mwsp
	}

	if isFlagSet(flagSet, "defer") {
		cfg.Defer = *deferMode
	}

	if isFlagSet(flagSet, "auto-remove") {
		cfg.AutoRemove = *autoRemove
	}

	if isFlagSet(flagSet, "seed") {
		cfg.Seed = *seed
	}

	table, err := bhpt.New(bhpt.Config{
		Capacity:           cfg.Capacity,
		HistoryLength:      cfg.HistoryLength,
		ConsiderationDepth: cfg.ConsiderationDepth,
		MWSP:               cfg.MWSP,
		Defer:              cfg.Defer,
		AutoRemove:         cfg.AutoRemove,
		Seed:               cfg.Seed,
	})
	if err != nil {
		return fmt.Errorf("constructing table: %w", err)
	}

	repl := &REPL{table: table, cfg: cfg}

	return repl.Run()
}

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})

	return found
}

// REPL is the interactive command loop.
type REPL struct {
	table *bhpt.Table
	cfg   bhptconfig.Config
	liner *liner.State
}

// historyFile returns the path to the line-editor history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".bhptctl_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("bhptctl - binary history probability table CLI (I=%d, L=%d, N=%d, mwsp=%d)\n",
		r.table.Capacity(), r.table.HistoryLength(), r.table.ConsiderationDepth(), r.table.MWSP())
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("bhptctl> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "push":
			r.cmdPush(args)

		case "history", "hist":
			r.cmdHistory(args)

		case "select":
			r.cmdSelect(args)

		case "insert":
			r.cmdInsert(args)

		case "remove", "rm":
			r.cmdRemove(args)

		case "mwsp":
			r.cmdMWSP(args)

		case "defer":
			r.cmdDefer(args)

		case "info":
			r.cmdInfo()

		case "weights":
			r.cmdWeights()

		case "dump":
			r.cmdDump(args)

		case "clear", "cls":
			fmt.Print("\033[H\033[2J")

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

// saveHistory persists command history to disk.
func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

// completer provides tab completion for commands.
func (r *REPL) completer(line string) []string {
	commands := []string{
		"push", "history", "hist", "select", "insert",
		"remove", "rm", "mwsp", "defer", "info", "weights",
		"dump", "clear", "cls", "help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  push <index> <bit>        Record a new most-recent state bit")
	fmt.Println("  history <index>           Show an entry's history, newest-to-oldest")
	fmt.Println("  select [n]                Draw n times (default 1), show a histogram")
	fmt.Println("  insert [bits...]          Allocate an entry, optional initial state")
	fmt.Println("  remove <index>            Invalidate an entry")
	fmt.Println("  mwsp <m>                  Change the Minimal Weight State Position")
	fmt.Println("  defer <on|off>            Toggle deferred weight recomputation")
	fmt.Println("  info                      Show table configuration and occupancy")
	fmt.Println("  weights                   Show every entry's cached weight")
	fmt.Println("  dump <file>               Write a JSON snapshot of observable state")
	fmt.Println("  help                      Show this help")
	fmt.Println("  exit / quit / q           Exit")
}

func (r *REPL) cmdPush(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: push <index> <bit>")
		return
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("invalid index:", args[0])
		return
	}

	bit, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("invalid bit:", args[1])
		return
	}

	if err := r.table.Push(index, bit); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("ok")
}

func (r *REPL) cmdHistory(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: history <index>")
		return
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("invalid index:", args[0])
		return
	}

	history, err := r.table.HistoryOf(index)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(formatBits(history))
}

func (r *REPL) cmdSelect(args []string) {
	n := 1

	if len(args) == 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("invalid count:", args[0])
			return
		}

		n = parsed
	}

	counts := make(map[int]int)

	for i := 0; i < n; i++ {
		e, err := r.table.Select()
		if err != nil {
			fmt.Println("error:", err)
			return
		}

		counts[e]++
	}

	entries := make([]int, 0, len(counts))
	for e := range counts {
		entries = append(entries, e)
	}

	sort.Ints(entries)

	for _, e := range entries {
		fmt.Printf("%6d: %s (%d)\n", e, strings.Repeat("#", counts[e]*40/n+1), counts[e])
	}
}

func (r *REPL) cmdInsert(args []string) {
	initial := make([]int, len(args))

	for i, a := range args {
		bit, err := strconv.Atoi(a)
		if err != nil {
			fmt.Println("invalid bit:", a)
			return
		}

		initial[i] = bit
	}

	index, err := r.table.Insert(initial)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("inserted at", index)
}

func (r *REPL) cmdRemove(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: remove <index>")
		return
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("invalid index:", args[0])
		return
	}

	if err := r.table.Remove(index); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("ok")
}

func (r *REPL) cmdMWSP(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: mwsp <m>")
		return
	}

	m, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("invalid mwsp:", args[0])
		return
	}

	if err := r.table.SetMWSP(m); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("ok")
}

func (r *REPL) cmdDefer(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: defer <on|off>")
		return
	}

	switch strings.ToLower(args[0]) {
	case "on":
		r.table.SetDefer(true)
	case "off":
		r.table.SetDefer(false)
	default:
		fmt.Println("usage: defer <on|off>")
		return
	}

	fmt.Println("ok")
}

func (r *REPL) cmdInfo() {
	fmt.Printf("capacity:             %d\n", r.table.Capacity())
	fmt.Printf("history_length:       %d\n", r.table.HistoryLength())
	fmt.Printf("consideration_depth:  %d\n", r.table.ConsiderationDepth())
	fmt.Printf("mwsp:                 %d\n", r.table.MWSP())
	fmt.Printf("defer:                %v\n", r.table.Defer())
	fmt.Printf("auto_remove:          %v\n", r.table.AutoRemove())
	fmt.Printf("valid:                %d\n", r.table.ValidCount())
	fmt.Printf("free:                 %d\n", r.table.FreeCount())
}

func (r *REPL) cmdWeights() {
	weights := r.table.Weights()
	for e, w := range weights {
		valid, _ := r.table.IsValid(e)
		if !valid {
			continue
		}

		fmt.Printf("%6d: %.4f\n", e, w)
	}
}

func (r *REPL) cmdDump(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: dump <file>")
		return
	}

	snapshot := tableSnapshot{
		Capacity:           r.table.Capacity(),
		HistoryLength:      r.table.HistoryLength(),
		ConsiderationDepth: r.table.ConsiderationDepth(),
		MWSP:               r.table.MWSP(),
		Defer:              r.table.Defer(),
		AutoRemove:         r.table.AutoRemove(),
	}

	weights := r.table.Weights()

	for e := 0; e < r.table.Capacity(); e++ {
		valid, _ := r.table.IsValid(e)
		if !valid {
			continue
		}

		history, err := r.table.HistoryOf(e)
		if err != nil {
			fmt.Println("error:", err)
			return
		}

		snapshot.Entries = append(snapshot.Entries, entrySnapshot{
			Index:   e,
			History: history,
			Weight:  weights[e],
		})
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if err := atomic.WriteFile(args[0], strings.NewReader(string(data))); err != nil {
		fmt.Println("error writing dump:", err)
		return
	}

	fmt.Println("wrote", args[0])
}

// tableSnapshot is the JSON shape written by the dump command.
type tableSnapshot struct {
	Capacity           int             `json:"capacity"`
	HistoryLength      int             `json:"history_length"`
	ConsiderationDepth int             `json:"consideration_depth"`
	MWSP               int             `json:"mwsp"`
	Defer              bool            `json:"defer"`
	AutoRemove         bool            `json:"auto_remove"`
	Entries            []entrySnapshot `json:"entries"`
}

type entrySnapshot struct {
	Index   int     `json:"index"`
	History []int   `json:"history"`
	Weight  float64 `json:"weight"`
}

func formatBits(bits []int) string {
	var b strings.Builder

	for i, bit := range bits {
		if i > 0 {
			b.WriteByte(' ')
		}

		fmt.Fprintf(&b, "%d", bit)
	}

	return b.String()
}
