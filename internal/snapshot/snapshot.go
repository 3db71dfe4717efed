// Package snapshot exports every record of a store to a zstd-compressed
// JSONL file and imports such files back into any store.
//
// The first line is a Header. Each following line is one record.
package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/mesh-intelligence/player/pkg/types"
)

// FormatVersion is the snapshot layout written by Export.
const FormatVersion = 1

// maxLine bounds one JSONL line. Records are small; the bound only keeps a
// corrupt file from exhausting memory.
const maxLine = 1 << 20

// Header opens every snapshot.
type Header struct {
	Version int      `json:"version"`
	Program types.ID `json:"program"`
	Records int      `json:"records"`
}

// Line is one record. Data is base64 in JSON.
type Line struct {
	Key    types.Key  `json:"key"`
	Kind   types.Kind `json:"kind"`
	Parent types.Key  `json:"parent,omitempty"`
	Data   []byte     `json:"data"`
}

// Export writes every record in store to path and returns how many were
// written. The file is replaced atomically: a failed export leaves any
// previous snapshot in place.
func Export(ctx context.Context, store types.RecordStore, program types.Program, path string) (int, error) {
	var lines []Line
	for _, kind := range types.Kinds {
		recs, err := store.List(ctx, kind)
		if err != nil {
			return 0, fmt.Errorf("listing %s records: %w", kind, err)
		}
		for _, rec := range recs {
			lines = append(lines, Line{Key: rec.Key, Kind: rec.Kind, Parent: rec.Parent, Data: rec.Data})
		}
	}
	header := Header{Version: FormatVersion, Program: program.ID, Records: len(lines)}
	if err := writeAtomic(path, header, lines); err != nil {
		return 0, err
	}
	return len(lines), nil
}

func writeAtomic(path string, header Header, lines []Line) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fail(fmt.Errorf("creating encoder: %w", err))
	}
	w := bufio.NewWriter(enc)
	je := json.NewEncoder(w)
	if err := je.Encode(header); err != nil {
		enc.Close()
		return fail(fmt.Errorf("writing header: %w", err))
	}
	for _, line := range lines {
		if err := je.Encode(line); err != nil {
			enc.Close()
			return fail(fmt.Errorf("writing record %s: %w", line.Key, err))
		}
	}
	if err := w.Flush(); err != nil {
		enc.Close()
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := enc.Close(); err != nil {
		return fail(fmt.Errorf("closing encoder: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Read parses the snapshot at path without touching any store.
func Read(path string) (Header, []Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Header{}, nil, fmt.Errorf("opening decoder: %w", err)
	}
	defer dec.Close()
	return decode(dec)
}

func decode(r io.Reader) (Header, []Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	var header Header
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Header{}, nil, fmt.Errorf("reading header: %w", err)
		}
		return Header{}, nil, fmt.Errorf("empty snapshot: %w", types.ErrInvalidData)
	}
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		return Header{}, nil, fmt.Errorf("parsing header: %v: %w", err, types.ErrInvalidData)
	}
	if header.Version != FormatVersion {
		return Header{}, nil, fmt.Errorf("snapshot version %d: %w", header.Version, types.ErrInvalidData)
	}

	lines := make([]Line, 0, header.Records)
	for n := 2; scanner.Scan(); n++ {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var line Line
		if err := json.Unmarshal(raw, &line); err != nil {
			return Header{}, nil, fmt.Errorf("line %d: %v: %w", n, err, types.ErrInvalidData)
		}
		if line.Key == "" || !line.Kind.Valid() {
			return Header{}, nil, fmt.Errorf("line %d: %w", n, types.ErrInvalidData)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return Header{}, nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	if len(lines) != header.Records {
		return Header{}, nil, fmt.Errorf("snapshot holds %d records, header says %d: %w", len(lines), header.Records, types.ErrInvalidData)
	}
	return header, lines, nil
}

// Import writes every record of the snapshot at path into store, replacing
// records with the same key, and returns how many were written. The whole
// file is parsed before the first write. A snapshot taken for another
// program is rejected with types.ErrProgramMismatch.
func Import(ctx context.Context, store types.RecordStore, program types.Program, path string) (int, error) {
	header, lines, err := Read(path)
	if err != nil {
		return 0, err
	}
	if header.Program != program.ID {
		return 0, fmt.Errorf("snapshot program %s: %w", header.Program, types.ErrProgramMismatch)
	}
	for i, line := range lines {
		rec := types.Record{Key: line.Key, Kind: line.Kind, Parent: line.Parent, Data: line.Data}
		if err := store.Write(ctx, rec); err != nil {
			return i, fmt.Errorf("writing %s: %w", line.Key, err)
		}
	}
	return len(lines), nil
}
