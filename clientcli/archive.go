package clientcli

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ZipDirectory packs every regular file under dir into an in-memory zip,
// using slash-separated paths relative to dir. Symlinks and other special
// files are skipped; the server rejects them anyway.
func ZipDirectory(ctx context.Context, dir string) ([]byte, []string, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	var names []string

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("calculate relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		if err := addFileToZip(zw, path, relPath); err != nil {
			return err
		}
		names = append(names, relPath)
		return nil
	})
	if walkErr != nil {
		_ = zw.Close()
		return nil, nil, fmt.Errorf("walk directory: %w", walkErr)
	}

	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("close zip writer: %w", err)
	}

	return buf.Bytes(), names, nil
}

func addFileToZip(zw *zip.Writer, localPath, name string) error {
	f, err := os.Open(localPath) //#nosec G304 -- localPath comes from walking a user-provided directory
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("create zip header for %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write %s to zip: %w", name, err)
	}

	return nil
}
