// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/pcodedis/internal/options"
)

// ParseFlags parses command line flags and returns program and listing options
func ParseFlags() (options.Program, options.Listing, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		return opts, options.Listing{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Listing{}, err
	}

	if opts.Batch == "" {
		opts.Input = args[0]
	}

	listing, err := createListingOptions(opts)
	if err != nil {
		return opts, options.Listing{}, err
	}

	return opts, listing, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: pcodedis [options] <file to translate>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to translate, please pass the file to translate as last argument", arg),
			}
		}
	}
	return nil
}

// createListingOptions creates listing options based on program options
func createListingOptions(opts options.Program) (options.Listing, error) {
	codeBase, err := parseCodeBase(opts.CodeBase)
	if err != nil {
		return options.Listing{}, err
	}

	listing := options.NewListing(codeBase)
	listing.AssemblyOnly = opts.AssemblyOnly
	listing.Labels = !opts.NoLabels
	return listing, nil
}

// parseCodeBase parses the load address option, accepting decimal and
// 0x or $ prefixed hexadecimal values.
func parseCodeBase(value string) (uint16, error) {
	s := strings.ToLower(value)
	numberBase := 0
	if strings.HasPrefix(s, "$") {
		s = s[1:]
		numberBase = 16
	}
	base, err := strconv.ParseUint(s, numberBase, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid code base address %s: %w", value, err)
	}
	return uint16(base), nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input binary file")
	flags.StringVar(&opts.Output, "o", "", "name of the output listing file, printed on console if no name given")
	flags.StringVar(&opts.Packed, "p", "", "name of the packed pcode file to write")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatic listing file naming, for example *.bin")
	flags.StringVar(&opts.CodeBase, "base", "0x8000", "address the binary is loaded at")
	flags.BoolVar(&opts.AssemblyOnly, "asmonly", false, "output assembly without pcode operations")
	flags.BoolVar(&opts.NoLabels, "nolabels", false, "do not mark branch destinations with labels")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
