package uid

import (
	"crypto/sha256"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 IDs safe for distributed use.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node identity is derived from the
// machine id or hostname, so replicas on different hosts do not collide.
func NewSnowflake() (*Snowflake, error) {
	sum := sha256.Sum256([]byte(stableNodeIdentity()))
	nodeID := int64(sum[0])<<2 | int64(sum[1])>>6 // 10 bits

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new int64 ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func stableNodeIdentity() string {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s
		}
	}

	if h, err := os.Hostname(); err == nil {
		if h = strings.TrimSpace(h); h != "" {
			return h
		}
	}

	return "unknown"
}
