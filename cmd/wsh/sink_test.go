package main

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func zstdFrame(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	encoder, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	require.NoError(t, err)
	_, err = encoder.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, encoder.Close())
	return buf.Bytes()
}

func decodeFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	dec, err := zstd.NewReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer dec.Close()

	result, err := io.ReadAll(dec)
	require.NoError(t, err)
	return string(result)
}

func openSink(t *testing.T, path string) zap.Sink {
	t.Helper()
	fileURL, err := url.Parse("zstd://" + filepath.ToSlash(path))
	require.NoError(t, err)

	sink, err := newCompressedSink(fileURL)
	require.NoError(t, err)
	return sink
}

func TestIsValidZstdFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"empty":   {},
		"zeros":   {0x00, 0x00, 0x00, 0x00},
		"short":   {0x28, 0xB5},
		"text":    []byte("plain text log"),
		"frame":   zstdFrame(t, "entry"),
		"missing": nil,
	}

	for name, content := range files {
		if content != nil {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0644))
		}
	}

	for name := range files {
		assert.Equal(t, name == "frame", isValidZstdFile(filepath.Join(dir, name)), name)
	}
}

func TestCompressedSinkAppendsFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wsh.zst")
	require.NoError(t, os.WriteFile(path, zstdFrame(t, "first session\n"), 0644))

	sink := openSink(t, path)
	n, err := sink.Write([]byte("second session\n"))
	require.NoError(t, err)
	assert.Equal(t, len("second session\n"), n, "Write reports input bytes, not compressed bytes")
	require.NoError(t, sink.Sync())
	require.NoError(t, sink.Close())

	assert.Equal(t, "first session\nsecond session\n", decodeFile(t, path))
}

func TestCompressedSinkTruncatesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wsh.zst")
	require.NoError(t, os.WriteFile(path, []byte("corrupted data"), 0644))

	sink := openSink(t, path)
	_, err := sink.Write([]byte("fresh"))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	assert.Equal(t, "fresh", decodeFile(t, path))
}

func TestCompressedSinkReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wsh.zst")

	for _, entry := range []string{"one ", "two"} {
		sink := openSink(t, path)
		_, err := sink.Write([]byte(entry))
		require.NoError(t, err)
		require.NoError(t, sink.Close())
	}

	assert.Equal(t, "one two", decodeFile(t, path))
}

func TestCompressedSinkWithZap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wsh.zst")
	sink := openSink(t, path)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(sink), zap.InfoLevel)
	logger := zap.New(core)

	logger.Info("received command", zap.String("line", "echo hi"))
	logger.Debug("filtered out")
	require.NoError(t, logger.Sync())
	require.NoError(t, sink.Close())

	logged := decodeFile(t, path)
	assert.Contains(t, logged, `"msg":"received command"`)
	assert.Contains(t, logged, `"line":"echo hi"`)
	assert.NotContains(t, logged, "filtered out")
}
