package search

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// DefaultMaxHashSize is the largest file hashed by FindDuplicates (100 MiB).
const DefaultMaxHashSize int64 = 100 * 1024 * 1024

// DuplicateOptions configures FindDuplicates.
type DuplicateOptions struct {
	// Recursive walks the whole tree; otherwise only direct children are hashed.
	Recursive bool
	// MaxFileSize skips larger files (0 = DefaultMaxHashSize).
	MaxFileSize int64
	// Algorithm selects the digest (empty = SHA-256).
	Algorithm HashAlgorithm
	// Excluded directory names are pruned like in a search (nil = DefaultExcluded).
	Excluded []string
	// Timeout bounds the walk and the hashing (0 = unlimited).
	Timeout time.Duration
}

// DuplicateGroup is a set of files with identical content.
type DuplicateGroup struct {
	Hash string
	Size int64
	// Files are in discovery order.
	Files []string
}

// DuplicateResult is the outcome of FindDuplicates.
type DuplicateResult struct {
	Success bool
	Message string
	// Groups are ordered by the discovery of their first member.
	Groups          []DuplicateGroup
	TotalDuplicates int
	SpaceWasted     int64
	FilesScanned    int
	FilesHashed     int
	SkippedLarge    int
	TimedOut        bool
	Elapsed         time.Duration
	Root            string
}

type dupKey struct {
	size int64
	hash string
}

// FindDuplicates groups the files below root by content digest. Files are
// first bucketed by size, so only files that share a size with another file are
// hashed. Empty files take part like any other size. Files above the size
// ceiling and files that cannot be read are left out.
func (e *Engine) FindDuplicates(ctx context.Context, root string, opts DuplicateOptions) DuplicateResult {
	start := e.now()
	root = filepath.Clean(root)
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxHashSize
	}
	if opts.Excluded == nil {
		opts.Excluded = DefaultExcluded
	}

	depth := -1
	if !opts.Recursive {
		depth = 1
	}
	req := Request{
		Root:          root,
		Scope:         ScopeFiles,
		MaxResults:    int(^uint(0) >> 1),
		MaxDepth:      depth,
		PerDirFileCap: -1,
		Timeout:       opts.Timeout,
		Excluded:      opts.Excluded,
	}
	listing := e.Walk(ctx, req, All())
	if !listing.Success {
		return DuplicateResult{
			Success: false,
			Message: listing.Message,
			Groups:  []DuplicateGroup{},
			Elapsed: e.now().Sub(start),
			Root:    root,
		}
	}

	res := DuplicateResult{
		Success:      true,
		Groups:       []DuplicateGroup{},
		FilesScanned: len(listing.Items),
		TimedOut:     listing.TimedOut,
		Root:         root,
	}

	bySize := make(map[int64]int)
	for _, item := range listing.Items {
		size := *item.Size
		if size > opts.MaxFileSize {
			res.SkippedLarge++
			continue
		}
		bySize[size]++
	}

	index := make(map[dupKey]int)
	for _, item := range listing.Items {
		size := *item.Size
		if bySize[size] < 2 || size > opts.MaxFileSize {
			continue
		}
		if ctx.Err() != nil || (opts.Timeout > 0 && e.now().Sub(start) >= opts.Timeout) {
			res.TimedOut = true
			break
		}
		sum, err := HashFile(e.fs, item.Path, opts.Algorithm)
		if err != nil {
			continue
		}
		res.FilesHashed++
		key := dupKey{size: size, hash: sum}
		i, ok := index[key]
		if !ok {
			i = len(res.Groups)
			index[key] = i
			res.Groups = append(res.Groups, DuplicateGroup{Hash: sum, Size: size})
		}
		res.Groups[i].Files = append(res.Groups[i].Files, item.Path)
	}

	groups := res.Groups[:0]
	for _, g := range res.Groups {
		if len(g.Files) < 2 {
			continue
		}
		groups = append(groups, g)
		res.TotalDuplicates += len(g.Files) - 1
		res.SpaceWasted += int64(len(g.Files)-1) * g.Size
	}
	res.Groups = groups
	res.Elapsed = e.now().Sub(start)
	res.Message = duplicateMessage(res)
	return res
}

func duplicateMessage(res DuplicateResult) string {
	secs := roundSeconds(res.Elapsed)
	var msg string
	if len(res.Groups) == 0 {
		msg = fmt.Sprintf("No duplicate files found in '%s' (%d files scanned in %.2fs)", res.Root, res.FilesScanned, secs)
	} else {
		msg = fmt.Sprintf("Found %d duplicate groups (%d duplicate files, %s wasted) in %.2fs",
			len(res.Groups), res.TotalDuplicates, FormatBytes(res.SpaceWasted), secs)
	}
	if res.TimedOut {
		msg += " (search timed out)"
	}
	return msg
}
