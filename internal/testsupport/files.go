package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteAudioFiles creates small placeholder files named after each entry in
// names under dir.
func WriteAudioFiles(t testing.TB, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		WriteFile(t, filepath.Join(dir, filepath.FromSlash(name)), 16)
	}
}

// WriteRoomFile writes raw room metadata to dir/name and returns the path.
// Any value other than string or []byte is encoded as JSON.
func WriteRoomFile(t testing.TB, dir, name string, content any) string {
	t.Helper()

	var data []byte
	switch v := content.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			t.Fatalf("encode room %s: %v", name, err)
		}
		data = encoded
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir rooms dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write room %s: %v", name, err)
	}
	return path
}

// WriteManifest writes a {"files": [...]} storage listing.
func WriteManifest(t testing.TB, path string, files ...string) {
	t.Helper()

	if files == nil {
		files = []string{}
	}
	data, err := json.Marshal(map[string][]string{"files": files})
	if err != nil {
		t.Fatalf("encode manifest: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir manifest dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}
