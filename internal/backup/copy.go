package backup

import (
	"os"

	cp "github.com/otiai10/copy"
)

// fileHook runs before each regular file is copied. An error aborts the copy.
type fileHook func(src, dst string) error

// copyTree recursively copies src into the existing directory dst.
// Symlinks are copied as links, modes are kept and file contents are synced
// so a completed snapshot is durable.
func copyTree(src, dst string, beforeFile fileHook) error {
	opts := cp.Options{
		OnSymlink:         func(string) cp.SymlinkAction { return cp.Shallow },
		PermissionControl: cp.PerservePermission,
		Sync:              true,
	}
	if beforeFile != nil {
		opts.Skip = func(info os.FileInfo, src, dst string) (bool, error) {
			if !info.Mode().IsRegular() {
				return false, nil
			}
			return false, beforeFile(src, dst)
		}
	}
	return cp.Copy(src, dst, opts)
}
