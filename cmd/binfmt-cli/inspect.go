package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ergochat/readline"

	"github.com/gogo2464/LIEF/pefmt"
)

// runInspectShell drives a small readline REPL over a parsed Binary:
// `sections` lists the section table, `dir <n>` prints one data
// directory, `imports` lists decoded import libraries, `quit` exits.
func runInspectShell(bin *pefmt.Binary, colorize bool) error {
	rl, err := readline.New(inspectPrompt(colorize))
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintln(os.Stdout, "binfmt-cli inspect — type 'help' for commands, 'quit' to exit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if handled := dispatchInspectCommand(os.Stdout, bin, strings.TrimSpace(line)); !handled {
			return nil
		}
	}
}

func inspectPrompt(colorize bool) string {
	if colorize {
		return "\033[36mbinfmt\033[0m> "
	}
	return "binfmt> "
}

// dispatchInspectCommand runs one REPL command, returning false when
// the shell should exit.
func dispatchInspectCommand(w io.Writer, bin *pefmt.Binary, line string) bool {
	if line == "" {
		return true
	}
	fields := strings.Fields(line)

	switch fields[0] {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(w, "commands: sections, directories, dir <n>, imports, overlay, quit")
	case "sections":
		for i, s := range bin.Sections {
			fmt.Fprintf(w, "%2d  %-8s  rva=0x%x  size=0x%x  raw@0x%x\n", i, s.NameString(), s.VirtualAddress, s.VirtualSize, s.PointerToRawData)
		}
	case "directories":
		for i, d := range bin.Directories {
			if d.RVA == 0 {
				continue
			}
			fmt.Fprintf(w, "%2d  %-14s  rva=0x%x  size=0x%x\n", i, d.Kind, d.RVA, d.Size)
		}
	case "dir":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: dir <index 0-15>")
			break
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 || n >= len(bin.Directories) {
			fmt.Fprintln(w, "index out of range")
			break
		}
		d := bin.Directories[n]
		fmt.Fprintf(w, "%s: rva=0x%x size=0x%x present=%v\n", d.Kind, d.RVA, d.Size, d.RVA != 0)
	case "imports":
		for _, lib := range bin.Imports {
			fmt.Fprintf(w, "%s (%d entries)\n", lib.Name, len(lib.Entries))
			for _, e := range lib.Entries {
				if e.IsOrdinal {
					fmt.Fprintf(w, "    #%d\n", e.Ordinal)
				} else {
					fmt.Fprintf(w, "    %s\n", e.Name)
				}
			}
		}
	case "overlay":
		if bin.Overlay == nil {
			fmt.Fprintln(w, "no overlay")
		} else {
			fmt.Fprintf(w, "offset=0x%x size=0x%x\n", bin.Overlay.Offset, bin.Overlay.Size)
		}
	default:
		fmt.Fprintf(w, "unknown command: %s (try 'help')\n", fields[0])
	}
	return true
}
