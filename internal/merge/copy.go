package merge

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
)

// copyTree copies the directory src into dst, creating dst as needed, and
// returns the number of files written. Symlinks are followed.
func copyTree(ctx context.Context, src, dst string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fsError(err, "stat source directory", src)
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return 0, fsError(err, "create directory", dst)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, fsError(err, "read directory", src)
	}

	copied := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := os.Stat(srcPath)
		if err != nil {
			return copied, fsError(err, "stat source entry", srcPath)
		}
		if info.IsDir() {
			n, err := copyTree(ctx, srcPath, dstPath)
			copied += n
			if err != nil {
				return copied, err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// copyFile copies a single file, creating missing parent directories and
// preserving the source permissions.
func copyFile(src, dst string) (err error) {
	srcFile, err := os.Open(src) // #nosec G304 -- paths come from the configured trees
	if err != nil {
		return fsError(err, "open source file", src)
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fsError(err, "create directory", filepath.Dir(dst))
	}
	dstFile, err := os.Create(dst) // #nosec G304 -- output tree path
	if err != nil {
		return fsError(err, "create file", dst)
	}
	defer closeInto(&err, dstFile, dst)

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fsError(err, "copy file", dst)
	}

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fsError(err, "stat source file", src)
	}
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return fsError(err, "preserve file mode", dst)
	}
	return nil
}

// closeInto closes c and stores a close failure in *err unless an earlier
// error is already set.
func closeInto(err *error, c io.Closer, path string) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fsError(cerr, "close file", path)
	}
}

// resetDir removes dir and everything below it, then recreates it empty.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fsError(err, "clean output directory", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fsError(err, "create output directory", dir)
	}
	return nil
}

func fsError(err error, msg, path string) error {
	return errors.FileSystemError(msg).WithCause(err).WithContext("path", path).Build()
}
