// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/pcodedis/internal/arch/m6502"
	"github.com/retroenv/pcodedis/internal/options"
	"github.com/retroenv/pcodedis/internal/packed"
	"github.com/retroenv/pcodedis/internal/pcode"
	"github.com/retroenv/pcodedis/internal/space"
	"github.com/retroenv/pcodedis/internal/translate"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program,
	listing options.Listing) error {

	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", opts.Input, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("file %s is empty", opts.Input)
	}

	rom := m6502.NewROM(data, listing.CodeBase)
	backend := m6502.New(rom)
	if err := backend.Initialize(m6502.DefaultConfig()); err != nil {
		return fmt.Errorf("initializing translator: %w", err)
	}

	writer, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := writer.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	encoder, closeEncoder, err := createEncoder(opts)
	if err != nil {
		return fmt.Errorf("creating packed encoder: %w", err)
	}
	defer closeEncoder()

	proc := &processor{
		logger:  logger,
		backend: backend,
		rom:     rom,
		listing: listing,
		writer:  writer,
		encoder: encoder,
	}
	if err := proc.run(ctx); err != nil {
		return err
	}

	if encoder != nil {
		if err := encoder.Flush(); err != nil {
			return fmt.Errorf("flushing packed output: %w", err)
		}
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".lst"
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("pcodedis", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

func createEncoder(opts options.Program) (*packed.Encoder, func(), error) {
	if opts.Packed == "" {
		return nil, func() {}, nil
	}

	file, err := os.Create(opts.Packed)
	if err != nil {
		return nil, nil, fmt.Errorf("creating packed output file %s: %w", opts.Packed, err)
	}
	return packed.NewEncoder(file), func() { _ = file.Close() }, nil
}

// processor performs a linear sweep over the loaded image and writes the
// assembly and pcode listing.
type processor struct {
	logger  *log.Logger
	backend *m6502.Backend
	rom     *m6502.ROM
	listing options.Listing
	writer  io.Writer
	encoder *packed.Encoder

	labels set.Set[uint16]
}

func (p *processor) run(ctx context.Context) error {
	p.labels = set.New[uint16]()
	if p.listing.Labels && !p.listing.AssemblyOnly {
		if err := p.collectLabels(ctx); err != nil {
			return err
		}
	}
	return p.translateImage(ctx)
}

// collectLabels sweeps the image once and records every branch and call
// destination inside the image, so the final listing can mark them.
func (p *processor) collectLabels(ctx context.Context) error {
	ram := p.backend.Spaces().GetDefaultSpace()
	end := int(p.rom.Base()) + p.rom.Size()

	recorder := translate.NewRecorder()
	for offset := int(p.rom.Base()); offset < end; {
		if err := ctx.Err(); err != nil {
			return err
		}

		addr := space.Address{Space: ram, Offset: uint64(offset)}
		recorder.Reset()
		length, err := p.backend.OneInstruction(recorder, addr)
		if err != nil {
			offset += errorLength(err)
			continue
		}

		for _, ins := range recorder.Instructions() {
			for _, op := range ins.Ops {
				p.recordDestination(op)
			}
		}
		offset += length
	}
	return nil
}

// recordDestination adds the destination of a control flow operation to
// the label set if it points into the default space.
func (p *processor) recordDestination(op pcode.Op) {
	switch op.Opcode {
	case pcode.Branch, pcode.CBranch, pcode.Call:
	default:
		return
	}
	if len(op.Inputs) == 0 {
		return
	}
	destination := op.Inputs[0]
	if destination.Space != p.backend.Spaces().GetDefaultSpace() {
		return
	}
	p.labels.Add(uint16(destination.Offset))
}

func (p *processor) translateImage(ctx context.Context) error {
	ram := p.backend.Spaces().GetDefaultSpace()
	end := int(p.rom.Base()) + p.rom.Size()

	for offset := int(p.rom.Base()); offset < end; {
		if err := ctx.Err(); err != nil {
			return err
		}

		length, err := p.translateInstruction(ram, uint16(offset))
		if err != nil {
			return err
		}
		offset += length
	}
	return nil
}

// translateInstruction disassembles and translates a single instruction
// and writes its listing lines. It returns the number of bytes to
// advance, at least 1.
func (p *processor) translateInstruction(ram *space.AddrSpace, offset uint16) (int, error) {
	addr := space.Address{Space: ram, Offset: uint64(offset)}

	if p.labels.Contains(offset) {
		if err := p.write("l_%04x:\n", offset); err != nil {
			return 0, err
		}
	}

	var assembly string
	length, err := p.backend.PrintAssembly(translate.AssemblyEmitFunc(
		func(_ space.Address, mnemonic, body string) error {
			assembly = mnemonic
			if body != "" {
				assembly += " " + body
			}
			return nil
		}), addr)
	if err != nil {
		return p.skipInvalid(addr, err)
	}

	if err := p.write("%04x  %s\n", offset, assembly); err != nil {
		return 0, err
	}
	if p.listing.AssemblyOnly {
		return length, nil
	}

	recorder := translate.NewRecorder()
	recorder.BeginInstruction(addr, length)
	if _, err := p.backend.OneInstruction(recorder, addr); err != nil {
		return p.handleTranslationError(addr, length, err)
	}
	recorder.EndInstruction()

	for _, ins := range recorder.Instructions() {
		for _, op := range ins.Ops {
			if err := p.write("      %s\n", op); err != nil {
				return 0, err
			}
		}
		if p.encoder != nil {
			if err := p.encoder.EncodeInstruction(ins); err != nil {
				return 0, fmt.Errorf("encoding instruction at %s: %w", addr, err)
			}
		}
	}
	return length, nil
}

// handleTranslationError deals with instructions that disassemble but
// have no pcode translation. The sweep continues after them.
func (p *processor) handleTranslationError(addr space.Address, length int, err error) (int, error) {
	unimpl, ok := translate.AsUnimplemented(err)
	if !ok {
		return 0, fmt.Errorf("translating instruction at %s: %w", addr, err)
	}

	p.logger.Debug("No pcode translation",
		log.String("address", addr.String()),
		log.Int("length", unimpl.Length))

	if err := p.write("      ; unimplemented\n"); err != nil {
		return 0, err
	}
	if p.encoder != nil {
		if err := p.encoder.Unimplemented(unimpl.Length); err != nil {
			return 0, fmt.Errorf("encoding unimplemented marker at %s: %w", addr, err)
		}
	}
	return length, nil
}

// skipInvalid reports a byte that does not start a valid instruction and
// advances past it.
func (p *processor) skipInvalid(addr space.Address, err error) (int, error) {
	if !translate.IsBadData(err) {
		return 0, fmt.Errorf("disassembling at %s: %w", addr, err)
	}

	p.logger.Debug("Invalid instruction byte", log.String("address", addr.String()))

	value, readErr := p.rom.ReadMemory(uint16(addr.Offset))
	if readErr != nil {
		return 0, fmt.Errorf("reading invalid byte at %s: %w", addr, readErr)
	}
	if err := p.write("%04x  .byte $%02x\n", addr.Offset, value); err != nil {
		return 0, err
	}
	return 1, nil
}

// errorLength returns how many bytes an errored instruction occupies.
func errorLength(err error) int {
	if unimpl, ok := translate.AsUnimplemented(err); ok && unimpl.Length > 0 {
		return unimpl.Length
	}
	return 1
}

func (p *processor) write(format string, args ...any) error {
	if _, err := fmt.Fprintf(p.writer, format, args...); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}
