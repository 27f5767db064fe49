package health

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

// tailChunkSize is the fixed-size block read backwards from the end of the
// log file until enough newlines have been found (spec §4.5: "read from the
// tail in fixed-size chunks, splitting on the last newline boundary").
const tailChunkSize = 64 * 1024

// Logs returns the last req.Lines lines of the log file mapped to req.Kind.
func (m *Monitor) Logs(req core.LogsRequest) ([]string, error) {
	const op = "health_logs"

	filename, ok := m.logKind[req.Kind]
	if !ok {
		return nil, core.NewField(op, "kind", "unrecognized log kind")
	}
	path := filepath.Join(m.logDir, filename)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewTarget(core.KindNotFound, op, path, "log file does not exist")
		}
		return nil, core.Wrap(core.KindIOFailure, op, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, core.Wrap(core.KindIOFailure, op, path, err)
	}

	lines, err := tailLines(f, info.Size(), req.Lines)
	if err != nil {
		return nil, core.Wrap(core.KindIOFailure, op, path, err)
	}
	return lines, nil
}

// tailLines reads backwards from size in tailChunkSize blocks until at least
// n+1 newlines have been seen (or the start of the file is reached), then
// returns the last n lines in forward order. It never holds more than a
// small bounded multiple of tailChunkSize in memory regardless of file size.
func tailLines(f *os.File, size int64, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	var collected [][]byte
	var tail []byte
	pos := size
	newlineCount := 0

	for pos > 0 && newlineCount <= n {
		chunkSize := int64(tailChunkSize)
		if chunkSize > pos {
			chunkSize = pos
		}
		pos -= chunkSize

		buf := make([]byte, chunkSize)
		if _, err := f.ReadAt(buf, pos); err != nil {
			return nil, err
		}
		newlineCount += bytes.Count(buf, []byte{'\n'})
		tail = append(buf, tail...)
	}

	trimmed := bytes.TrimRight(tail, "\n")
	parts := bytes.Split(trimmed, []byte{'\n'})
	if len(parts) > n {
		parts = parts[len(parts)-n:]
	}
	for _, p := range parts {
		collected = append(collected, p)
	}

	out := make([]string, len(collected))
	for i, c := range collected {
		out[i] = string(c)
	}
	return out, nil
}
