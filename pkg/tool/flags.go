// Copyright 2020 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tool

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

// ListFlag collects values of a flag that can be given several times,
// each occurrence may also hold a comma-separated list.
type ListFlag []string

func (l *ListFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *ListFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			return errors.New("empty list element")
		}
		*l = append(*l, v)
	}
	return nil
}

// ParseFlags parses args and checks that the number of positional arguments is in [minArgs, maxArgs].
// Negative maxArgs means no upper limit.
func ParseFlags(set *flag.FlagSet, args []string, minArgs, maxArgs int) error {
	if err := set.Parse(args); err != nil {
		return err
	}
	if n := set.NArg(); n < minArgs || maxArgs >= 0 && n > maxArgs {
		return fmt.Errorf("unexpected number of arguments: %q", set.Args())
	}
	return nil
}
