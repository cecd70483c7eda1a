package hn

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/maguenza/hackernews-ai-project/pkg/logging"
	"github.com/maguenza/hackernews-ai-project/pkg/telemetry"
)

// ItemSource is the subset of the client the tree fetcher needs.
type ItemSource interface {
	Item(ctx context.Context, id int64) (*Item, error)
}

// TreeFetcher materializes full comment trees by walking an item's kid
// references depth-first. Depth is bounded only by the natural depth of
// the thread; maxNodes caps the total fetch count as a guard against
// pathological threads exhausting the request quota (0 disables the cap).
type TreeFetcher struct {
	source   ItemSource
	maxNodes int
	logger   *zap.Logger
}

// NewTreeFetcher creates a new tree fetcher over the given item source.
func NewTreeFetcher(source ItemSource, maxNodes int) *TreeFetcher {
	return &TreeFetcher{
		source:   source,
		maxNodes: maxNodes,
		logger:   logging.GetLogger().With(zap.String("component", "tree-fetcher")),
	}
}

// FetchTree fetches the root item and recursively fills in its comment
// subtree. A child that the upstream reports as null is dropped from its
// parent's child list without aborting the sibling fetches; a fetch error
// on any node aborts the whole tree fetch. Returns (nil, nil) when the
// root itself is absent.
func (f *TreeFetcher) FetchTree(ctx context.Context, rootID int64) (*Item, error) {
	ctx, span := telemetry.StartSpan(ctx, "hn.fetch_tree")
	defer span.End()

	root, err := f.source.Item(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}

	budget := f.maxNodes
	if err := f.fetchChildren(ctx, root, &budget); err != nil {
		return nil, fmt.Errorf("failed to fetch comment tree for %d: %w", rootID, err)
	}
	return root, nil
}

func (f *TreeFetcher) fetchChildren(ctx context.Context, parent *Item, budget *int) error {
	for _, kid := range parent.Kids {
		if f.maxNodes > 0 && *budget <= 0 {
			f.logger.Warn("Comment tree node budget exhausted, skipping remaining children",
				zap.Int64("parent_id", parent.ID),
				zap.Int("max_nodes", f.maxNodes))
			return nil
		}

		child, err := f.source.Item(ctx, kid)
		if err != nil {
			return err
		}
		if child == nil {
			// Deleted or dangling reference; drop it and keep going.
			continue
		}
		if f.maxNodes > 0 {
			*budget--
		}

		parent.Comments = append(parent.Comments, child)
		if err := f.fetchChildren(ctx, child, budget); err != nil {
			return err
		}
	}
	return nil
}
