package utils

import (
	"github.com/bwmarrin/snowflake"
)

// IDGenerator hands out globally unique, time-ordered identifiers. Ticket
// rows use the raw int64; queue tokens use the base58 encoding of the
// same ID space.
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator creates a generator for the given node. NodeID must be
// unique per running instance or IDs can collide.
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &IDGenerator{node: node}, nil
}

// NextID returns a fresh time-ordered numeric identifier.
func (g *IDGenerator) NextID() int64 {
	return g.node.Generate().Int64()
}

// NextToken returns a fresh opaque queue token.
func (g *IDGenerator) NextToken() string {
	return g.node.Generate().Base58()
}
