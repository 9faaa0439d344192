// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"
	"slices"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/config"
	"github.com/staranto/clubpulse/internal/model"
)

func init() {
	cfg, _ = config.Load("")
}

var (
	cfg config.Type

	schemaFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "list the attributes of the record",
		HideDefault: true,
	}

	tldrFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

// sources is the value chain of a flag that may be preset: the
// CLUBPULSE_<KEY> env var, then <ns>.<key> in the config file, then <key>.
// An empty ns skips the namespaced key.
func sources(ns, key string, global bool) cli.ValueSourceChain {
	env := "CLUBPULSE_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	chain := cli.NewValueSourceChain(cli.EnvVar(env))
	if ns != "" {
		chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+key, altsrc.StringSourcer(cfg.Source)))
	}
	if global {
		chain.Chain = append(chain.Chain, yaml.YAML(key, altsrc.StringSourcer(cfg.Source)))
	}
	return chain
}

// NewGlobalFlags returns the output shaping flags every list command takes.
// Defaults for output, color, titles and sort may be preset per command under
// ns in the config file.
func NewGlobalFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: sources(ns, "color", true),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results, _key=value filters go to the server",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.BoolFlag{
			Name:  "local",
			Usage: "show timestamps in CLUBPULSE_TZ or TZ",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json, yaml or raw",
			Sources: sources(ns, "output", true),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"q"},
			Usage:   "case-insensitive text to look for in the searchable attributes",
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: sources(ns, "sort", false),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: sources(ns, "titles", true),
		},
	}
}

// listFlags is the full flag set of a list command: its own flags, then tldr
// and schema, then the global flags.
func listFlags(ns string, own ...cli.Flag) []cli.Flag {
	return slices.Concat(own, []cli.Flag{tldrFlag, schemaFlag}, NewGlobalFlags(ns))
}

// NewPeriodFlag returns the --period flag of the analytics commands. The
// default may be preset with CLUBPULSE_PERIOD or under ns in the config file.
func NewPeriodFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "analytics period: week, month or year",
		Sources: sources(ns, "period", true),
		Value:   string(model.DefaultPeriod),
		Validator: func(value string) error {
			return FlagValidators(value, PeriodValidator)
		},
	}
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
