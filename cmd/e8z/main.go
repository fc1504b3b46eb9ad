// Command e8z is a small CLI wrapper around the e8z compressor (§6).
//
// Usage:
//
//	e8z compress   <in> <out> [--mode byte|char|word] [--frame-size-kib N] [--no-checksum] [--envelope flate|none|s2|lz4|zstd]
//	e8z decompress <in> <out>
//
// Exit codes follow §6: 0 success, 1 invalid arguments, 2 I/O error, 3
// format error, 4 checksum mismatch.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/arloliu/e8z"
	"github.com/arloliu/e8z/envelope"
	"github.com/arloliu/e8z/errs"
	"github.com/arloliu/e8z/format"
)

const (
	exitOK             = 0
	exitInvalidArgs    = 1
	exitIOError        = 2
	exitFormatError    = 3
	exitChecksumFailed = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()

		return exitInvalidArgs
	}

	switch args[0] {
	case "compress":
		return runCompress(args[1:])
	case "decompress":
		return runDecompress(args[1:])
	default:
		usage()

		return exitInvalidArgs
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: e8z compress|decompress <in> <out> [flags]")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: e8z %s <in> <out> [flags]\n", name)
		fs.PrintDefaults()
	}

	return fs
}

func runCompress(args []string) int {
	fs := newFlagSet("compress")
	mode := fs.String("mode", "byte", "tokenizer mode: byte, char, or word")
	frameSizeKiB := fs.Int("frame-size-kib", 233, "Horizon Batching frame size in KiB")
	noChecksum := fs.Bool("no-checksum", false, "disable the container checksum option")
	env := fs.String("envelope", "flate", "byte-mode envelope codec: none, flate, s2, lz4, or zstd")

	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}
	if fs.NArg() != 2 {
		usage()

		return exitInvalidArgs
	}

	modeVal, err := parseMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitInvalidArgs
	}

	envVal, err := parseEnvelope(*env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitInvalidArgs
	}

	input, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitIOError
	}

	out, err := e8z.Compress(input,
		e8z.WithMode(modeVal),
		e8z.WithFrameSizeKiB(*frameSizeKiB),
		e8z.WithChecksum(!*noChecksum),
		e8z.WithEnvelope(envVal),
	)
	if err != nil {
		return exitForError(err)
	}

	if err := os.WriteFile(fs.Arg(1), out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitIOError
	}

	return exitOK
}

func runDecompress(args []string) int {
	fs := newFlagSet("decompress")
	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}
	if fs.NArg() != 2 {
		usage()

		return exitInvalidArgs
	}

	input, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitIOError
	}

	out, err := e8z.Decompress(input)
	if err != nil {
		return exitForError(err)
	}

	if err := os.WriteFile(fs.Arg(1), out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)

		return exitIOError
	}

	return exitOK
}

func parseMode(s string) (format.Mode, error) {
	switch s {
	case "byte":
		return format.ModeByte, nil
	case "char":
		return format.ModeChar, nil
	case "word":
		return format.ModeWord, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", errs.ErrInvalidOption, s)
	}
}

func parseEnvelope(s string) (envelope.ID, error) {
	switch s {
	case "none":
		return envelope.None, nil
	case "flate":
		return envelope.Flate, nil
	case "s2":
		return envelope.S2, nil
	case "lz4":
		return envelope.LZ4, nil
	case "zstd":
		return envelope.Zstd, nil
	default:
		return 0, fmt.Errorf("%w: unknown envelope %q", errs.ErrInvalidOption, s)
	}
}

func exitForError(err error) int {
	fmt.Fprintln(os.Stderr, err)

	switch {
	case errors.Is(err, errs.ErrChecksumMismatch):
		return exitChecksumFailed
	case errors.Is(err, errs.ErrInvalidOption):
		return exitInvalidArgs
	case errors.Is(err, errs.ErrIoError):
		return exitIOError
	case errors.Is(err, errs.ErrInvalidMagic),
		errors.Is(err, errs.ErrTruncatedStream),
		errors.Is(err, errs.ErrUnsupportedVersion),
		errors.Is(err, errs.ErrSymbolTableCorrupt),
		errors.Is(err, errs.ErrRankOutOfRange):
		return exitFormatError
	default:
		return exitFormatError
	}
}
