package fileprocessor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/pcodedis/internal/arch/m6502"
	"github.com/retroenv/pcodedis/internal/options"
	"github.com/retroenv/pcodedis/internal/packed"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func testProgram() []byte {
	return []byte{
		0xa9, 0x01, // lda #$01
		0x8d, 0x00, 0x02, // sta $0200
		0xd0, 0xf9, // bne $8000
		0x03, 0x40, // unofficial slo ($40,x)
		0x60, // rts
	}
}

func processTestFile(t *testing.T, code []byte, packedFile string) string {
	t.Helper()

	dir := t.TempDir()
	input := filepath.Join(dir, "test.bin")
	output := filepath.Join(dir, "test.lst")
	assert.NoError(t, os.WriteFile(input, code, 0o644))

	opts := options.Program{
		Parameters: options.Parameters{
			Input:  input,
			Output: output,
			Packed: packedFile,
		},
	}
	logger := log.NewTestLogger(t)
	assert.NoError(t, ProcessFile(context.Background(), logger, opts, options.NewListing(0x8000)))

	listing, err := os.ReadFile(output)
	assert.NoError(t, err)
	return string(listing)
}

func TestProcessFileListing(t *testing.T) {
	listing := processTestFile(t, testProgram(), "")

	assert.Contains(t, listing, "8000  lda #$01")
	assert.Contains(t, listing, "8002  sta $0200")
	assert.Contains(t, listing, "8005  bne $8000")
	assert.Contains(t, listing, "8009  rts")

	// the branch destination is marked with a label
	assert.Contains(t, listing, "l_8000:")

	// pcode operations follow each instruction
	assert.Contains(t, listing, "COPY")
	assert.Contains(t, listing, "CBRANCH")
	assert.Contains(t, listing, "RETURN")

	// the unofficial instruction disassembles but has no translation
	assert.Contains(t, listing, "; unimplemented")
}

func TestProcessFilePackedOutput(t *testing.T) {
	dir := t.TempDir()
	packedFile := filepath.Join(dir, "test.pcode")
	processTestFile(t, testProgram(), packedFile)

	data, err := os.ReadFile(packedFile)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	// the stream decodes through a manager with the same configuration
	backend := m6502.New(m6502.NewROM(testProgram(), 0x8000))
	assert.NoError(t, backend.Initialize(nil))

	instructions, err := packed.NewDecoder(strings.NewReader(string(data)), backend.Spaces()).DecodeAll()
	assert.NoError(t, err)
	assert.Len(t, instructions, 5)

	assert.Equal(t, uint64(0x8000), instructions[0].Address.Offset)
	assert.Equal(t, 2, instructions[0].Length)
	assert.True(t, instructions[3].Unimplemented)
	assert.Equal(t, 2, instructions[3].Length)
}

func TestProcessFileAssemblyOnly(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "test.bin")
	output := filepath.Join(dir, "test.lst")
	assert.NoError(t, os.WriteFile(input, testProgram(), 0o644))

	opts := options.Program{
		Parameters: options.Parameters{Input: input, Output: output},
	}
	listing := options.NewListing(0x8000)
	listing.AssemblyOnly = true

	logger := log.NewTestLogger(t)
	assert.NoError(t, ProcessFile(context.Background(), logger, opts, listing))

	data, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "lda #$01")
	assert.False(t, strings.Contains(string(data), "COPY"))
}

func TestProcessFileEmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "empty.bin")
	assert.NoError(t, os.WriteFile(input, nil, 0o644))

	opts := options.Program{Parameters: options.Parameters{Input: input}}
	logger := log.NewTestLogger(t)
	err := ProcessFile(context.Background(), logger, opts, options.NewListing(0x8000))
	assert.Error(t, err)
}

func TestGenerateOutputFilename(t *testing.T) {
	assert.Equal(t, "game.lst", GenerateOutputFilename("game.bin"))
	assert.Equal(t, "dir/game.lst", GenerateOutputFilename("dir/game.bin"))
}

func TestGetFilesToProcess(t *testing.T) {
	opts := &options.Program{Parameters: options.Parameters{Input: "game.bin"}}
	files, err := GetFilesToProcess(opts)
	assert.NoError(t, err)
	assert.Equal(t, []string{"game.bin"}, files)
}
