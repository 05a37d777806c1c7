// Command relidx drives the loader and the index-aware selector directly
// from flags, standing in for the SQL parser the core specification
// leaves out of scope.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"relidx/btree"
	"relidx/loader"
	"relidx/pagefile"
	"relidx/predicate"
	"relidx/recordfile"
	"relidx/selector"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: relidx <load|select> [flags]")
	}
	switch os.Args[1] {
	case "load":
		runLoad(os.Args[2:])
	case "select":
		runSelect(os.Args[2:])
	default:
		log.Fatalf("unknown subcommand %q (want load or select)", os.Args[1])
	}
}

func runLoad(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	table := fs.String("table", "", "base path for <table>.tbl / <table>.idx")
	loadfile := fs.String("loadfile", "", "path to the loadfile")
	withIndex := fs.Bool("index", true, "also insert loaded rows into the index")
	fs.Parse(args)

	if *table == "" || *loadfile == "" {
		log.Fatalf("load: -table and -loadfile are required")
	}

	rf, err := recordfile.Open(*table+".tbl", pagefile.ReadWrite)
	if err != nil {
		log.Fatalf("load: open record file: %v", err)
	}
	defer rf.Close()

	var tree *btree.Tree
	if *withIndex {
		tree, err = btree.Open(*table+".idx", pagefile.ReadWrite)
		if err != nil {
			log.Fatalf("load: open index: %v", err)
		}
		defer tree.Close()
	}

	f, err := os.Open(*loadfile)
	if err != nil {
		log.Fatalf("load: open loadfile: %v", err)
	}
	defer f.Close()

	n, err := loader.Load(f, rf, tree, os.Stderr)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	fmt.Printf("loaded %d records\n", n)
}

func runSelect(args []string) {
	fs := flag.NewFlagSet("select", flag.ExitOnError)
	table := fs.String("table", "", "base path for <table>.tbl / <table>.idx")
	proj := fs.String("proj", "star", "projection: key|value|star|count")
	var wheres multiFlag
	fs.Var(&wheres, "where", "predicate \"ATTR OP LITERAL\", repeatable")
	fs.Parse(args)

	if *table == "" {
		log.Fatalf("select: -table is required")
	}

	projection, err := parseProjection(*proj)
	if err != nil {
		log.Fatalf("select: %v", err)
	}
	preds := make([]predicate.Predicate, 0, len(wheres))
	for _, w := range wheres {
		p, err := parsePredicate(w)
		if err != nil {
			log.Fatalf("select: -where %q: %v", w, err)
		}
		preds = append(preds, p)
	}

	rf, err := recordfile.Open(*table+".tbl", pagefile.ReadOnly)
	if err != nil {
		log.Fatalf("select: open record file: %v", err)
	}
	defer rf.Close()

	tree, err := btree.Open(*table+".idx", pagefile.ReadOnly)
	if err != nil {
		log.Fatalf("select: open index: %v", err)
	}
	defer tree.Close()

	if err := selector.Select(tree, rf, projection, preds, os.Stdout); err != nil {
		log.Fatalf("select: %v", err)
	}
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func parseProjection(s string) (predicate.Projection, error) {
	switch strings.ToLower(s) {
	case "key":
		return predicate.PROJ_KEY, nil
	case "value":
		return predicate.PROJ_VALUE, nil
	case "star":
		return predicate.PROJ_STAR, nil
	case "count":
		return predicate.PROJ_COUNT, nil
	default:
		return 0, fmt.Errorf("unknown projection %q", s)
	}
}

// parsePredicate parses "ATTR OP LITERAL", e.g. "KEY GE 10" or
// `VALUE EQ hello`.
func parsePredicate(s string) (predicate.Predicate, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return predicate.Predicate{}, fmt.Errorf("expected \"ATTR OP LITERAL\"")
	}
	attr, err := parseAttr(fields[0])
	if err != nil {
		return predicate.Predicate{}, err
	}
	op, err := parseOp(fields[1])
	if err != nil {
		return predicate.Predicate{}, err
	}
	literal := strings.Join(fields[2:], " ")

	p := predicate.Predicate{Attr: attr, Op: op}
	if attr == predicate.KEY {
		k, err := strconv.ParseInt(literal, 10, 32)
		if err != nil {
			return predicate.Predicate{}, fmt.Errorf("key literal: %w", err)
		}
		p.Key = int32(k)
	} else {
		p.Val = literal
	}
	return p, nil
}

func parseAttr(s string) (predicate.Attr, error) {
	switch strings.ToUpper(s) {
	case "KEY":
		return predicate.KEY, nil
	case "VALUE":
		return predicate.VALUE, nil
	default:
		return 0, fmt.Errorf("unknown attribute %q", s)
	}
}

func parseOp(s string) (predicate.Op, error) {
	switch strings.ToUpper(s) {
	case "EQ":
		return predicate.EQ, nil
	case "NE":
		return predicate.NE, nil
	case "LT":
		return predicate.LT, nil
	case "LE":
		return predicate.LE, nil
	case "GT":
		return predicate.GT, nil
	case "GE":
		return predicate.GE, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}
