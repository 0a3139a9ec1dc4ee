package content

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnabledModsHash digests the ordered enabled-mod list. Each mod id is fed
// into SHA-256 followed by a zero byte so that ["ab","c"] and ["a","bc"]
// hash differently.
func EnabledModsHash(orderedModIDs []string) [32]byte {
	h := sha256.New()
	for _, id := range orderedModIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ModInputHash digests every file under the mod's source directory: the
// slash-normalized relative path, a zero byte, then the file bytes, over all
// files sorted by relative path. Any change to a file name or its contents
// changes the hash.
func ModInputHash(sourceDir string) ([32]byte, error) {
	var out [32]byte
	type sourceFile struct {
		relPath string
		absPath string
	}
	var files []sourceFile

	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return &PlanError{Code: PlanCodeReadDir, Path: path, Err: walkErr}
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(sourceDir, path)
		if relErr != nil {
			return &PlanError{Code: PlanCodeReadDir, Path: path, Err: relErr}
		}
		files = append(files, sourceFile{
			relPath: strings.ReplaceAll(rel, string(filepath.Separator), "/"),
			absPath: path,
		})
		return nil
	})
	if err != nil {
		return out, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].relPath < files[j].relPath })

	h := sha256.New()
	for _, f := range files {
		data, readErr := os.ReadFile(f.absPath)
		if readErr != nil {
			return out, &PlanError{Code: PlanCodeReadFile, Path: f.absPath, Err: readErr}
		}
		h.Write([]byte(f.relPath))
		h.Write([]byte{0})
		h.Write(data)
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}

// HashHex renders a 32-byte digest as lowercase hex.
func HashHex(hash [32]byte) string {
	return hex.EncodeToString(hash[:])
}

// PayloadHash digests an arbitrary byte slice with SHA-256.
func PayloadHash(data []byte) [32]byte {
	return sha256.Sum256(data)
}
