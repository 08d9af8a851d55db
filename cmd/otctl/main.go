// Command otctl is a small CLI around package ot's changeset algebra and
// package transport/session's collaboration server, replacing the
// teacher's ad hoc cmd/test_delete, cmd/test_large_insert demonstration
// binaries (and nzinfo-texere/coreseekdev-texere's single-purpose
// cmd/main.go demo server) with one binary carrying a subcommand per
// operation. No CLI framework is wired in: the teacher's own cmd/ entries
// are plain flag-free main()s, so otctl stays on the standard library's
// flag package rather than reaching for a dependency the pack never uses
// for this concern.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/texere-ot/ot/pkg/history"
	"github.com/texere-ot/ot/pkg/ot"
	"github.com/texere-ot/ot/pkg/session"
	"github.com/texere-ot/ot/pkg/transport"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "apply":
		err = runApply(os.Args[2:])
	case "compose":
		err = runCompose(os.Args[2:])
	case "transform":
		err = runTransform(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "otctl: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "otctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: otctl <subcommand> [args]

subcommands:
  apply <changeset.json> <text-file>     apply a changeset to a text file
  compose <a.json> <b.json>              print a composed with b
  transform <a.json> <b.json>            print (a', b') for concurrent a, b
  serve [--addr :8080]                   run an in-memory collaboration server`)
}

func readChangeset(path string) (ot.Changeset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ot.Changeset{}, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := ot.Decode(data)
	if err != nil {
		return ot.Changeset{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return c, nil
}

func printChangeset(c ot.Changeset) error {
	data, err := ot.Encode(c)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("apply requires <changeset.json> <text-file>")
	}

	c, err := readChangeset(fs.Arg(0))
	if err != nil {
		return err
	}
	text, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("reading %s: %w", fs.Arg(1), err)
	}

	result, err := ot.Apply(c, string(text))
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}

func runCompose(args []string) error {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("compose requires <a.json> <b.json>")
	}

	a, err := readChangeset(fs.Arg(0))
	if err != nil {
		return err
	}
	b, err := readChangeset(fs.Arg(1))
	if err != nil {
		return err
	}

	composed, err := ot.Compose(a, b)
	if err != nil {
		return err
	}
	return printChangeset(composed)
}

func runTransform(args []string) error {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("transform requires <a.json> <b.json>")
	}

	a, err := readChangeset(fs.Arg(0))
	if err != nil {
		return err
	}
	b, err := readChangeset(fs.Arg(1))
	if err != nil {
		return err
	}

	aPrime, bPrime, err := ot.Transform(a, b)
	if err != nil {
		return err
	}
	if err := printChangeset(aPrime); err != nil {
		return err
	}
	return printChangeset(bPrime)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "address to listen on")
	fs.Parse(args)

	store := history.NewStore()
	defer store.Close()

	manager := session.NewManager(store)
	server := transport.NewServer(manager)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/", func(w http.ResponseWriter, r *http.Request) {
		docID := r.URL.Query().Get("doc")
		if docID == "" {
			docID = "default"
		}
		server.ServeHTTP(docID, "", w, r)
	})

	fmt.Printf("otctl: serving on %s (ws://%s/ws/?doc=<id>)\n", *addr, *addr)
	return http.ListenAndServe(*addr, mux)
}
