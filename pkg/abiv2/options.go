// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiv2

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/abifuzz/pkg/config"
)

// Options control the parts of the output that do not depend on the input.
type Options struct {
	// Contract is the name of the generated contract.
	Contract string `json:"contract"`
	// Pragmas are emitted as "pragma <text>;" lines before the contract.
	// Usually the compilation framework adds them, so there are none by default.
	Pragmas []string `json:"pragmas,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		Contract: "C",
	}
}

// LoadOptions loads options from a JSON or YAML config file on top of the defaults.
func LoadOptions(filename string) (Options, error) {
	opts := DefaultOptions()
	if err := config.LoadFile(filename, &opts); err != nil {
		return Options{}, err
	}
	if err := opts.Check(); err != nil {
		return Options{}, fmt.Errorf("bad options in %v: %w", filename, err)
	}
	return opts, nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Check returns an error if the options can't produce a well-formed program.
func (opts Options) Check() error {
	if !identRe.MatchString(opts.Contract) {
		return fmt.Errorf("contract name %q is not an identifier", opts.Contract)
	}
	if opts.Contract == producerName || opts.Contract == calleeName {
		return fmt.Errorf("contract name %q clashes with a function name", opts.Contract)
	}
	for _, pragma := range opts.Pragmas {
		if strings.TrimSpace(pragma) == "" {
			return errors.New("empty pragma")
		}
		if strings.ContainsAny(pragma, ";\n\r") {
			return fmt.Errorf("pragma %q contains ';' or a line break", pragma)
		}
	}
	return nil
}
