package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/medvoice/medvoice-backend/internal/store"
)

// ErrNoChunks is returned when assembly is requested for a recording with
// no uploaded chunks.
var ErrNoChunks = errors.New("recording has no chunks")

// Assembler concatenates a recording's uploaded chunks into a single audio
// artifact. Chunks are trusted to be byte-compatible fragments of one
// continuous stream; no format validation or header rewriting happens here.
type Assembler struct {
	recordings  store.RecordingStore
	storagePath string
}

func NewAssembler(recordings store.RecordingStore, storagePath string) *Assembler {
	return &Assembler{recordings: recordings, storagePath: storagePath}
}

// ArtifactPath returns the deterministic output path for a recording.
func (a *Assembler) ArtifactPath(recordingID uuid.UUID) string {
	return filepath.Join(a.storagePath, recordingID.String()+".wav")
}

// Assemble fetches all chunk metadata for the recording, sorts it by chunk
// index ascending (duplicate indices keep arrival order and are all
// concatenated), and writes the raw bytes of every chunk whose blob still
// exists into a fresh artifact. A chunk whose blob is missing is skipped
// without error; concatenation proceeds with a gap.
func (a *Assembler) Assemble(ctx context.Context, recordingID uuid.UUID) (string, error) {
	chunks, err := a.recordings.Chunks(ctx, recordingID)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", ErrNoChunks
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})

	if err := os.MkdirAll(a.storagePath, 0o755); err != nil {
		return "", err
	}

	outPath := a.ArtifactPath(recordingID)
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}

	for _, chunk := range chunks {
		in, err := os.Open(chunk.BlobPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			out.Close()
			return "", err
		}
		_, err = io.Copy(out, in)
		in.Close()
		if err != nil {
			out.Close()
			return "", err
		}
	}

	if err := out.Close(); err != nil {
		return "", err
	}
	return outPath, nil
}
