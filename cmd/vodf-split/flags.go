package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vodfgo/vodf/vodf"
)

type options struct {
	configPath  string
	metricsFile string
	obsIDs      []int64
	categories  []vodf.Category
}

// obsIDList accepts repeated and comma separated observation ids.
type obsIDList []int64

func (l *obsIDList) String() string {
	parts := make([]string, 0, len(*l))
	for _, id := range *l {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	return strings.Join(parts, ",")
}

func (l *obsIDList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid observation id %q", part)
		}

		*l = append(*l, id)
	}

	return nil
}

type categoryList []vodf.Category

func (l *categoryList) String() string {
	parts := make([]string, 0, len(*l))
	for _, c := range *l {
		parts = append(parts, c.String())
	}

	return strings.Join(parts, ",")
}

func (l *categoryList) Set(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid category %q", value)
	}

	*l = append(*l, vodf.CategoryOf(n))

	return nil
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var (
		opts       options
		obsIDs     obsIDList
		categories categoryList
	)

	fs := flag.NewFlagSet("vodf-split", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", "", "Path to the YAML config, defaults apply when empty")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	fs.Var(&obsIDs, "obs", "Observation id to split, repeatable or comma separated (default: all indexed)")
	fs.Var(&categories, "category", "Event category to keep, repeatable (default: all)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts.obsIDs = obsIDs
	opts.categories = categories

	return opts, nil
}
