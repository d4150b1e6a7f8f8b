package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	audioExts = []string{".mp3", ".wav", ".m4a", ".aac", ".flac", ".ogg", ".opus"}
	videoExts = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv"}
)

// KindFromExt classifies a file name by extension.
func KindFromExt(name string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range audioExts {
		if ext == e {
			return KindAudio, true
		}
	}
	for _, e := range videoExts {
		if ext == e {
			return KindVideo, true
		}
	}
	return "", false
}

// Admit rejects media larger than limit bytes. A non-positive limit admits everything.
func Admit(size, limit int64) error {
	if limit > 0 && size > limit {
		return fmt.Errorf("%w: %.1f MB > %d MB", ErrTooLarge, float64(size)/(1024*1024), limit/(1024*1024))
	}
	return nil
}

// SaveUpload streams r into a new file in dir, enforcing limit while copying
// so a lying Content-Length cannot bypass admission. The caller owns the file.
func SaveUpload(r io.Reader, dir, name string, limit int64) (File, error) {
	kind, ok := KindFromExt(name)
	if !ok {
		return File{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
	}

	f, err := os.CreateTemp(dir, "upload-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return File{}, fmt.Errorf("create upload file: %w", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = Admit(n, limit)
	}
	if err != nil {
		os.Remove(f.Name())
		return File{}, fmt.Errorf("save upload: %w", err)
	}

	return File{Path: f.Name(), Kind: kind, Size: n}, nil
}
