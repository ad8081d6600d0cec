package export

import (
	"bufio"
	"context"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/b2l/internal/scene"
)

// BlobPath returns the path of the blob written next to luaPath.
func BlobPath(luaPath string) string {
	return luaPath + ".bin"
}

// ExportFiles writes luaPath and its blob. Both files are removed if the
// export fails.
func (e *Exporter) ExportFiles(ctx context.Context, s *scene.Snapshot, luaPath string) (sum *Summary, err error) {
	blobPath := BlobPath(luaPath)

	luaFile, err := os.Create(luaPath)
	if err != nil {
		return nil, err
	}
	blobFile, err := os.Create(blobPath)
	if err != nil {
		luaFile.Close()
		os.Remove(luaPath)
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, luaFile.Close(), blobFile.Close())
		if err != nil {
			sum = nil
			os.Remove(luaPath)
			os.Remove(blobPath)
		}
	}()

	lua := bufio.NewWriter(luaFile)
	blob := bufio.NewWriter(blobFile)

	sum, err = e.Export(ctx, s, lua, blob)
	if err != nil {
		return nil, err
	}
	if err := multierr.Combine(lua.Flush(), blob.Flush()); err != nil {
		return nil, err
	}
	e.log.Debug("wrote files", zap.String("lua", luaPath), zap.String("blob", blobPath))
	return sum, nil
}
