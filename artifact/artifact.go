// Package artifact loads WASM binaries and computes their content identity.
//
// The identity depends only on the file bytes; filesystem metadata never
// reaches the report. The digest is an injectable capability so hosts can
// substitute their own fingerprint function.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"io/fs"
	"os"

	sebierrors "github.com/0xphen/sebi/errors"
)

// MaxArtifactSize bounds loadable artifacts. Realistic Stylus contracts are
// well under this; anything larger fails before hashing.
const MaxArtifactSize = 64 << 20

// Digest computes a content fingerprint over artifact bytes.
type Digest struct {
	Algorithm string
	Sum       func(data []byte) []byte
}

// SHA256 is the default digest.
var SHA256 = Digest{
	Algorithm: "sha256",
	Sum: func(data []byte) []byte {
		sum := sha256.Sum256(data)
		return sum[:]
	},
}

// Artifact is a loaded binary plus its identity. Immutable after load.
type Artifact struct {
	// Path is informational only and never influences analysis.
	Path string

	// Bytes are the exact bytes read from disk. The digest is computed
	// over this buffer before any parsing, so loaded and analyzed bytes
	// cannot diverge.
	Bytes []byte

	SizeBytes uint64

	HashAlgorithm string
	HashHex       string
}

// Load reads the artifact at path and fingerprints it with digest.
func Load(path string, digest Digest) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, classifyIOError(path, err)
	}
	if info.Size() > MaxArtifactSize {
		return nil, sebierrors.TooLarge(path, info.Size(), MaxArtifactSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classifyIOError(path, err)
	}

	return FromBytes(path, data, digest), nil
}

// FromBytes fingerprints an in-memory buffer. Used by hosts that already
// hold the binary and by tests.
func FromBytes(path string, data []byte, digest Digest) *Artifact {
	return &Artifact{
		Path:          path,
		Bytes:         data,
		SizeBytes:     uint64(len(data)),
		HashAlgorithm: digest.Algorithm,
		HashHex:       hex.EncodeToString(digest.Sum(data)),
	}
}

func classifyIOError(path string, err error) error {
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return sebierrors.IO(sebierrors.KindNotFound, path, err)
	case stderrors.Is(err, fs.ErrPermission):
		return sebierrors.IO(sebierrors.KindPermissionDenied, path, err)
	default:
		return sebierrors.IO(sebierrors.KindIOFailure, path, err)
	}
}
