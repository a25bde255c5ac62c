package archive

import (
	"context"
	"fmt"

	"bcl-go/internal/bcl"
	"bcl-go/internal/config"
)

// NewArchiveFromConfig returns nil when archiving is disabled.
func NewArchiveFromConfig(ctx context.Context, cfg config.ArchiveConfig) (bcl.Archive, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem archive requires a root")
		}
		a, err := NewFileSystemArchive("filesystem", cfg.Root)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 archive requires a bucket")
		}
		a, err := NewS3ArchiveFromConfig(ctx, "s3", cfg)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}
