// Copyright 2017 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// abi-db packs, unpacks and generates corpus databases of fuzzer inputs.
// It can also drop records that no longer decode.
// Inputs are stored in protobuf wire format, unpack can also emit the YAML form.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/abifuzz/pkg/abiproto"
	"github.com/google/abifuzz/pkg/db"
	"github.com/google/abifuzz/pkg/hash"
	"github.com/google/abifuzz/pkg/log"
	"github.com/google/abifuzz/pkg/osutil"
	"github.com/google/abifuzz/pkg/tool"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}
	if err := run(flag.Args()); err != nil {
		tool.Fail(err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New("no command")
	}
	cmd, args := args[0], args[1:]
	set := flag.NewFlagSet(cmd, flag.ContinueOnError)
	switch cmd {
	case "pack":
		version := set.Uint64("version", 0, "database version")
		if err := tool.ParseFlags(set, args, 2, 2); err != nil {
			return err
		}
		return pack(set.Arg(0), set.Arg(1), *version)
	case "unpack":
		text := set.Bool("yaml", false, "unpack inputs in YAML form")
		if err := tool.ParseFlags(set, args, 2, 2); err != nil {
			return err
		}
		return unpack(set.Arg(0), set.Arg(1), *text)
	case "gen":
		var (
			version = set.Uint64("version", 0, "database version")
			n       = set.Int("n", 100, "number of inputs to generate")
			calls   = set.Int("calls", 10, "max declarations per scope in generated inputs")
			seed    = set.Int64("seed", -1, "generation seed (-1 for time-based)")
		)
		if err := tool.ParseFlags(set, args, 1, 1); err != nil {
			return err
		}
		if *seed < 0 {
			*seed = time.Now().UnixNano()
		}
		log.Logf(0, "generating %v inputs with seed %v", *n, *seed)
		return gen(set.Arg(0), *version, rand.NewSource(*seed), *n, *calls)
	case "clean":
		if err := tool.ParseFlags(set, args, 1, 1); err != nil {
			return err
		}
		return clean(set.Arg(0))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  abi-db pack [-version N] dir corpus.db\n")
	fmt.Fprintf(os.Stderr, "  abi-db unpack [-yaml] corpus.db dir\n")
	fmt.Fprintf(os.Stderr, "  abi-db gen [-version N] [-n 100] [-calls 10] [-seed N] corpus.db\n")
	fmt.Fprintf(os.Stderr, "  abi-db clean corpus.db\n")
	flag.PrintDefaults()
	os.Exit(1)
}

// pack stores all files of dir in a new database.
// Files ending with .yaml or .yml are converted to wire format,
// other files must already be in wire format.
// A "-N" suffix of a file name sets the record sequence number.
func pack(dir, file string, version uint64) error {
	files, err := osutil.ReadDirFiles(dir)
	if err != nil {
		return fmt.Errorf("failed to read dir: %w", err)
	}
	var records []db.Record
	for _, name := range sortedNames(files) {
		data := files[name]
		base := name
		if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
			c, err := abiproto.ParseText(data)
			if err != nil {
				return fmt.Errorf("%v: %w", name, err)
			}
			data = abiproto.Marshal(c)
			base = strings.TrimSuffix(name, ext)
		} else if _, err := abiproto.Unmarshal(data); err != nil {
			return fmt.Errorf("%v: %w", name, err)
		}
		var seq uint64
		key := base
		if parts := strings.Split(base, "-"); len(parts) == 2 {
			if v, err := strconv.ParseUint(parts[1], 10, 64); err == nil {
				key, seq = parts[0], v
			}
		}
		if sig := hash.String(data); key != sig {
			log.Logf(1, "fixing hash %v -> %v", key, sig)
		}
		records = append(records, db.Record{
			Val: data,
			Seq: seq,
		})
	}
	log.Logf(0, "packing %v inputs into %v", len(records), file)
	return db.Create(file, version, records)
}

func unpack(file, dir string, text bool) error {
	corpus, err := db.Open(file, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := osutil.MkdirAll(dir); err != nil {
		return err
	}
	for _, key := range corpus.Keys() {
		rec := corpus.Records[key]
		fname := filepath.Join(dir, key)
		if rec.Seq != 0 {
			fname += fmt.Sprintf("-%v", rec.Seq)
		}
		data := rec.Val
		if text {
			c, err := abiproto.Unmarshal(data)
			if err != nil {
				log.Logf(0, "skipping %v: %v", key, err)
				continue
			}
			if data, err = abiproto.FormatText(c); err != nil {
				return err
			}
			fname += ".yaml"
		}
		if err := osutil.WriteFile(fname, data); err != nil {
			return fmt.Errorf("failed to output file: %w", err)
		}
	}
	return nil
}

// clean removes records that do not decode as inputs.
func clean(file string) error {
	corpus, err := db.Open(file, true)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	removed := 0
	for _, key := range corpus.Keys() {
		if _, err := abiproto.Unmarshal(corpus.Records[key].Val); err != nil {
			log.Logf(1, "removing %v: %v", key, err)
			corpus.Delete(key)
			removed++
		}
	}
	log.Logf(0, "removed %v broken inputs, %v left", removed, len(corpus.Records))
	return corpus.Flush()
}

func gen(file string, version uint64, rs rand.Source, n, calls int) error {
	records := make([]db.Record, 0, n)
	for i := 0; i < n; i++ {
		c := abiproto.Generate(rs, calls)
		records = append(records, db.Record{Val: abiproto.Marshal(c)})
	}
	return db.Create(file, version, records)
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
