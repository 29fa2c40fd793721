// Package upstream fetches a pinned simple-dftd3 source archive for runs
// where no local checkout is available.
package upstream

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
)

const githubArchiveURL = "https://github.com/%v/archive/refs/tags/%v.zip"

// Source describes where to fetch the upstream sources from and where to
// cache them locally.
type Source struct {
	// GitHub repository in "owner/name" form.
	GitHub string
	// Tag to download.
	Ref string
	// Directory the extracted sources are cached under.
	CacheDir string
}

// Dir returns the directory the sources of this ref are extracted into.
func (s *Source) Dir() string {
	_, name, _ := strings.Cut(s.GitHub, "/")
	return filepath.Join(s.CacheDir, strcase.ToSnake(name)+"@"+s.Ref)
}

// Have reports whether a complete extracted copy exists in the cache.
// A directory containing the incomplete-download lock file does not count.
func (s *Source) Have() (have bool, err error) {
	destDir := s.Dir()
	info, err := os.Stat(destDir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("expected %v to be a directory", destDir)
	}

	if lockInfo, err := os.Stat(filepath.Join(destDir, ".incomplete_lock")); err == nil {
		if !lockInfo.Mode().IsRegular() {
			return false, fmt.Errorf("expected .incomplete_lock to be a regular file")
		}
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	return true, nil
}

// Get downloads the source archive and extracts it into [Source.Dir],
// replacing any previous contents. The archive's single top-level
// directory is stripped.
func (s *Source) Get() error {
	url := fmt.Sprintf(githubArchiveURL, s.GitHub, s.Ref)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("get %v: %v: %v", url, resp.Status, string(data))
		}
		return fmt.Errorf("get %v: %v", url, resp.Status)
	}

	destDir := s.Dir()

	if err := os.RemoveAll(destDir); err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, os.ModePerm); err != nil {
		return err
	}

	if f, err := os.Create(filepath.Join(destDir, ".incomplete_lock")); err == nil {
		f.Close()
	} else {
		return err
	}

	if err := Unzip(destDir, data); err != nil {
		return err
	}

	return os.Remove(filepath.Join(destDir, ".incomplete_lock"))
}

// Unzip extracts a zip archive held in data into dstPath, stripping the
// first path element of every entry (GitHub archives wrap everything in a
// "<name>-<version>" directory).
func Unzip(dstPath string, data []byte) error {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	extractFile := func(f *zip.File) error {
		_, name, found := strings.Cut(f.Name, "/")
		if !found || name == "" {
			return nil
		}
		path := filepath.Clean(filepath.Join(dstPath, name))
		{
			wantPfx := filepath.Clean(dstPath) + string(filepath.Separator)
			if !strings.HasPrefix(path+string(filepath.Separator), wantPfx) {
				return fmt.Errorf("zip: illegal file path: %v (expected prefix %v)", path, wantPfx)
			}
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, os.ModePerm); err != nil {
				return err
			}
		} else {
			if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
				return err
			}
			out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
			if err != nil {
				return err
			}
			defer out.Close()

			in, err := f.Open()
			if err != nil {
				return err
			}
			defer in.Close()

			if _, err := io.Copy(out, in); err != nil {
				return err
			}
		}
		return nil
	}
	for _, f := range archive.File {
		if err := extractFile(f); err != nil {
			return err
		}
	}
	return nil
}
