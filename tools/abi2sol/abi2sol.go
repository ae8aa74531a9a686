// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// abi2sol converts fuzzer inputs into Solidity ABI coder tests.
//
// Convert a single input (wire or YAML form) and print the program:
//
//	abi2sol -input input.yaml
//
// Convert every input of a corpus database into <dir>/<key>.sol:
//
//	abi2sol -corpus corpus.db -out dir -j 8
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/abifuzz/pkg/abiproto"
	"github.com/google/abifuzz/pkg/abiv2"
	"github.com/google/abifuzz/pkg/config"
	"github.com/google/abifuzz/pkg/db"
	"github.com/google/abifuzz/pkg/log"
	"github.com/google/abifuzz/pkg/osutil"
	"github.com/google/abifuzz/pkg/stat"
	"github.com/google/abifuzz/pkg/tool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

var (
	statConverted = stat.New("converted", "Converted inputs", stat.Console, stat.Rate{},
		stat.Prometheus("abifuzz_converted_inputs"))
	statRejected = stat.New("rejected", "Inputs that failed to decode", stat.Console,
		stat.Prometheus("abifuzz_rejected_inputs"))
	statDecls = stat.New("declarations", "Declarations per program", stat.Console, stat.Distribution{})
	statBytes = stat.New("source bytes", "Emitted source bytes", stat.Simple,
		stat.Prometheus("abifuzz_source_bytes"))
)

var convertTime stat.AverageValue[time.Duration]

func main() {
	var (
		flagInput    = flag.String("input", "", "input file to convert")
		flagFormat   = flag.String("format", "auto", "input file format: wire, yaml or auto (by extension)")
		flagCorpus   = flag.String("corpus", "", "corpus database to convert")
		flagOut      = flag.String("out", "", "output file for -input, output dir for -corpus")
		flagConfig   = flag.String("config", "", "options config file (JSON or YAML)")
		flagContract = flag.String("contract", "", "contract name (overrides config)")
		flagProcs    = flag.Int("j", runtime.NumCPU(), "number of parallel conversions")
		flagHTTP     = flag.String("http", "", "serve Prometheus metrics on this address")
		flagSaveCfg  = flag.String("save-config", "", "save effective options to this file")
	)
	var flagPragmas tool.ListFlag
	flag.Var(&flagPragmas, "pragma", "pragma to emit before the contract (can be repeated or comma-separated)")
	err := tool.ParseFlags(flag.CommandLine, os.Args[1:], 0, 0)
	if err == nil && (*flagInput == "") == (*flagCorpus == "") {
		err = errors.New("exactly one of -input and -corpus is required")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nusage: abi2sol {-input file | -corpus corpus.db -out dir} [flags]\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}
	opts := abiv2.DefaultOptions()
	if *flagConfig != "" {
		if opts, err = abiv2.LoadOptions(*flagConfig); err != nil {
			tool.Fail(err)
		}
	}
	if *flagContract != "" {
		opts.Contract = *flagContract
	}
	opts.Pragmas = append(opts.Pragmas, flagPragmas...)
	if err := opts.Check(); err != nil {
		tool.Fail(err)
	}
	if *flagSaveCfg != "" {
		if err := config.SaveFile(*flagSaveCfg, opts); err != nil {
			tool.Fail(err)
		}
	}
	if *flagHTTP != "" {
		serveMetrics(*flagHTTP)
	}
	if *flagInput != "" {
		if err := convertFile(*flagInput, *flagFormat, *flagOut, opts); err != nil {
			tool.Fail(err)
		}
		return
	}
	if *flagOut == "" {
		tool.Failf("-corpus requires -out")
	}
	log.EnableLogCaching(1000, 1<<20)
	start := time.Now()
	if err := convertCorpus(context.Background(), *flagCorpus, *flagOut, opts, *flagProcs); err != nil {
		tool.FailWithLog("%v", err)
	}
	log.Logf(0, "done in %v", time.Since(start).Round(time.Millisecond))
	for _, st := range stat.Collect(stat.All) {
		log.Logf(0, "%-20v: %v", st.Name, st.Value)
	}
	log.Logf(0, "%-20v: p50=%v p90=%v", statDecls.Name(), statDecls.Quantile(0.5), statDecls.Quantile(0.9))
	log.Logf(0, "%-20v: %v", "avg conversion time", convertTime.Value())
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	log.Logf(0, "serving metrics on http://%v/metrics", addr)
	go func() {
		err := http.ListenAndServe(addr, mux)
		log.Fatalf("failed to serve metrics: %v", err)
	}()
}

// readInput decodes an input file, format is "wire", "yaml" or "auto".
func readInput(file, format string) (*abiproto.Contract, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if format == "auto" {
		format = "wire"
		if ext := filepath.Ext(file); ext == ".yaml" || ext == ".yml" {
			format = "yaml"
		}
	}
	switch format {
	case "wire":
		return abiproto.Unmarshal(data)
	case "yaml":
		return abiproto.ParseText(data)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// convertFile converts a single input, an empty out means stdout.
func convertFile(file, format, out string, opts abiv2.Options) error {
	c, err := readInput(file, format)
	if err != nil {
		statRejected.Add(1)
		return err
	}
	src, err := convert(c, opts)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(src)
		return err
	}
	return osutil.WriteFile(out, src)
}

func convert(c *abiproto.Contract, opts abiv2.Options) ([]byte, error) {
	start := time.Now()
	p, err := abiv2.Generate(c, opts)
	if err != nil {
		return nil, err
	}
	convertTime.Save(time.Since(start))
	statConverted.Add(1)
	statDecls.Add(len(p.Decls))
	statBytes.Add(len(p.Source))
	return p.Source, nil
}

var errNoInputs = errors.New("no inputs in the corpus")

// convertCorpus writes <dir>/<key>.sol for every decodable record of the corpus.
func convertCorpus(ctx context.Context, corpus, dir string, opts abiv2.Options, procs int) error {
	inputs, broken, err := db.ReadCorpus(corpus)
	if err != nil {
		return err
	}
	statRejected.Add(broken)
	if len(inputs) == 0 {
		return errNoInputs
	}
	if err := osutil.MkdirAll(dir); err != nil {
		return err
	}
	log.Logf(0, "converting %v inputs (%v broken) with %v procs", len(inputs), broken, procs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(procs, 1))
	for _, inp := range inputs {
		inp := inp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := convert(inp.Contract, opts)
			if err != nil {
				return err
			}
			log.Logf(1, "converted %v: %v bytes", inp.Key, len(src))
			return osutil.WriteFile(filepath.Join(dir, inp.Key+".sol"), src)
		})
	}
	return g.Wait()
}
