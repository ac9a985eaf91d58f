package lightmap

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteViewFactors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteViewFactors(&buf, []float32{1, 0.5}))

	data := buf.Bytes()
	require.Len(t, data, 8)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])))
}

func TestDumpViewFactors(t *testing.T) {
	lm := buildFacingPair(false, false)
	path := filepath.Join(t.TempDir(), FactorDumpFile)
	require.NoError(t, lm.DumpViewFactors(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	n := len(lm.Patches)
	assert.Len(t, data, n*n*4)
}

func TestDumpViewFactors_BadPath(t *testing.T) {
	lm := buildFacingPair(false, false)
	err := lm.DumpViewFactors(filepath.Join(t.TempDir(), "missing", "factors.bin"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create factor dump")
}

func TestPacker_FactorDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), FactorDumpFile)
	p := newTestPacker()
	p.SetFactorDump(path)
	addSquareZ(p, 0, 0, 0, 1, true)
	addSquareZ(p, 2, 0, 0, 1, false)
	lm := p.BuildLightmap()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(lm.ViewFactors)*4), info.Size())
}
