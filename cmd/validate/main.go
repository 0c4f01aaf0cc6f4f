package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jwebster45206/story-editor/pkg/document"
	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

func main() {
	showTree := flag.Bool("tree", false, "print conversation trees")
	strict := flag.Bool("strict", false, "treat warnings as errors")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-tree] [-strict] <eventsets.xml|eventsets.yaml>\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	filename := flag.Arg(0)
	validator := &DocumentValidator{strict: *strict}

	doc, err := validator.validateFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	printDocument(os.Stdout, doc, *showTree)
	for _, w := range validator.warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Println("Event set document is valid!")
}

func (v *DocumentValidator) validateFile(filename string) (*document.Document, error) {
	fmt.Printf("Validating %s...\n", filename)

	format, err := treefmt.ParseFormat(filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Base(filename))
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	defer func() {
		_ = f.Close() // Ignore error in defer
	}()

	doc, warnings, err := document.Read(format, f)
	if err != nil {
		return nil, fmt.Errorf("file %s is not a valid document: %w", filename, err)
	}

	v.reset()
	for _, w := range warnings {
		v.warn("%s", w)
	}
	v.validateDocument(doc)

	if err := v.result(filename); err != nil {
		return nil, err
	}
	return doc, nil
}

func printDocument(w io.Writer, doc *document.Document, showTree bool) {
	for _, entry := range doc.Entries {
		fmt.Fprintf(w, "%s\n", entry.Label())
		for _, line := range entry.Set.Summarize() {
			fmt.Fprintf(w, "  %s\n", line)
		}
		if !showTree {
			continue
		}
		if root := entry.Set.LockedEvent().Conversation(); root != nil {
			fmt.Fprintln(w, "  locked conversation:")
			_ = root.PrintTree(&indentWriter{w: w, prefix: "    "})
		}
		for i := 0; i < entry.Set.UnlockedCount(); i++ {
			if root := entry.Set.UnlockedEvent(i).Conversation(); root != nil {
				fmt.Fprintf(w, "  unlocked %d conversation:\n", i)
				_ = root.PrintTree(&indentWriter{w: w, prefix: "    "})
			}
		}
	}
}

// indentWriter prefixes every line written through it.
type indentWriter struct {
	w       io.Writer
	prefix  string
	midLine bool
}

func (iw *indentWriter) Write(p []byte) (int, error) {
	for i, b := range p {
		if !iw.midLine {
			if _, err := io.WriteString(iw.w, iw.prefix); err != nil {
				return i, err
			}
			iw.midLine = true
		}
		if _, err := iw.w.Write([]byte{b}); err != nil {
			return i, err
		}
		if b == '\n' {
			iw.midLine = false
		}
	}
	return len(p), nil
}
