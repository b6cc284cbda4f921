package hybridrag

import (
	"context"
	"fmt"
	"strings"

	"github.com/soundprediction/hybridrag/pkg/types"
)

// Neighborhood returns the edges within the configured hop limit of the node
// named name. It returns driver.ErrNodeNotFound when no node has that name.
func (c *Client) Neighborhood(ctx context.Context, name string) ([]types.EdgeTriple, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrEmptyName
	}
	node, err := c.store.FindNode(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find node %q: %w", name, err)
	}
	return c.retriever.Neighborhood(ctx, node.NodeID)
}

// Topics returns the topic names.
func (c *Client) Topics(ctx context.Context) ([]string, error) {
	return c.store.Topics(ctx)
}

// NodesByTopic returns the catalog names linked to topic.
func (c *Client) NodesByTopic(ctx context.Context, topic string) ([]string, error) {
	return c.store.NodesByTopic(ctx, strings.TrimSpace(topic))
}

// RefreshCatalog reloads the suggestion catalog and returns its size.
func (c *Client) RefreshCatalog(ctx context.Context) (int, error) {
	snapshot, err := c.catalog.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	return len(snapshot.Names), nil
}
