package lightmap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// FactorDumpFile is the conventional name of the view factor dump
const FactorDumpFile = "radFactors.bin"

// WriteViewFactors writes the factors as raw little-endian float32 values
func WriteViewFactors(w io.Writer, factors []float32) error {
	return binary.Write(w, binary.LittleEndian, factors)
}

// DumpViewFactors writes the view factor matrix of the lightmap to path
func (lm *Lightmap) DumpViewFactors(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create factor dump: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := WriteViewFactors(writer, lm.ViewFactors); err != nil {
		return fmt.Errorf("failed to write factor dump: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write factor dump: %w", err)
	}
	return nil
}
