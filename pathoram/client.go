package pathoram

import (
	"go.uber.org/zap"
)

// Op names the kind of access the client performs.
type Op int

const (
	OpRead Op = iota
	OpWrite
)

// Client is the baseline oblivious tree client: a secret position map
// and stash held against a Server tree, implementing the path-read /
// stash-refresh / greedy-bottom-up-eviction access protocol.
type Client struct {
	cfg    Config
	depth  int
	server *Server

	posMap []int // block_id -> current leaf
	stash  []Block

	log *zap.Logger
}

// Setup allocates a Server of depth ceil(log2(n)) and a Client with an
// independently-uniform position map and an empty stash.
func Setup(cfg Config) (*Client, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	depth := DepthFromN(cfg.N)
	c := &Client{
		cfg:    cfg,
		depth:  depth,
		server: NewServer(depth, cfg.Z, cfg.BlockSize),
		posMap: make([]int, cfg.N),
		log:    zap.NewNop(),
	}
	for i := range c.posMap {
		c.posMap[i] = RandomLeaf(depth)
	}
	return c, nil
}

// WithLogger attaches a structured logger used for per-access bucket I/O
// traces at Debug level. A nil logger is treated as a no-op logger.
func (c *Client) WithLogger(log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c.log = log
	return c
}

// Depth returns the tree depth backing this client.
func (c *Client) Depth() int { return c.depth }

// StashSize returns the current number of real blocks held in the stash.
func (c *Client) StashSize() int { return len(c.stash) }

// Stats returns the server's bucket I/O counters since the last reset.
func (c *Client) Stats() ServerStats { return c.server.Stats() }

// ResetStats zeroes the server's bucket I/O counters.
func (c *Client) ResetStats() { c.server.ResetStats() }

// CountRealBlocksEverywhere counts real blocks across (stash ∪ all
// buckets); this must equal N once every block has been primed at least
// once, regardless of how many accesses have run since.
func (c *Client) CountRealBlocksEverywhere() int {
	count := 0
	for _, b := range c.stash {
		if !b.IsDummy {
			count++
		}
	}
	for level := range c.server.tree {
		for _, bucket := range c.server.tree[level] {
			count += len(bucket.RealBlocks())
		}
	}
	return count
}

// Access performs an oblivious read or write of block_id, implementing
// the canonical Path ORAM protocol:
//
//  1. old_leaf <- position_map[block_id]
//  2. re-sample new_leaf, update position_map BEFORE reading the path
//  3. read the old path into the stash, de-duplicating by block_id
//  4. locate (or materialize) the target block, retag its leaf
//  5. read or overwrite its data
//  6. evict the stash back onto a fresh path to old_leaf
//  7. write the fresh path back to the server
func (c *Client) Access(op Op, blockID int, newData []byte) ([]byte, error) {
	if blockID < 0 || blockID >= c.cfg.N {
		return nil, ErrBlockIDOutOfRange
	}
	if op != OpRead && op != OpWrite {
		return nil, ErrBadOp
	}
	if op == OpWrite && len(newData) != c.cfg.BlockSize {
		return nil, ErrBadDataSize
	}

	oldLeaf := c.posMap[blockID]
	newLeaf := RandomLeaf(c.depth)
	c.posMap[blockID] = newLeaf

	path := c.server.ReadPath(oldLeaf)
	for _, bucket := range path {
		for _, blk := range bucket.RealBlocks() {
			c.stashPutOrReplace(blk)
		}
	}

	var idx int
	if c.cfg.ConstantTime {
		idx = c.findInStashConstantTime(blockID)
	} else {
		idx = c.findInStash(blockID)
	}
	if idx == -1 {
		target := Block{BlockID: blockID, Data: cloneDefault(c.cfg.DefaultValue), Leaf: newLeaf, IsDummy: false}
		c.stash = append(c.stash, target)
		idx = len(c.stash) - 1
	}
	c.stash[idx].Leaf = newLeaf

	var result []byte
	if op == OpRead {
		result = cloneDefault(c.stash[idx].Data)
	} else {
		c.stash[idx].Data = cloneDefault(newData)
		result = nil
	}

	writeLeaf, newPath, err := c.evict(oldLeaf)
	if err != nil {
		return nil, err
	}
	if err := c.server.WritePath(writeLeaf, newPath); err != nil {
		return nil, err
	}

	c.log.Debug("pathoram access",
		zap.Int("block_id", blockID),
		zap.Int("old_leaf", oldLeaf),
		zap.Int("new_leaf", newLeaf),
		zap.Int("buckets_read", c.server.Stats().BucketsRead),
		zap.Int("buckets_written", c.server.Stats().BucketsWritten),
		zap.Int("stash_size", len(c.stash)),
	)

	return result, nil
}

func cloneDefault(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (c *Client) findInStash(blockID int) int {
	for i, b := range c.stash {
		if !b.IsDummy && b.BlockID == blockID {
			return i
		}
	}
	return -1
}

// stashPutOrReplace inserts block, replacing any existing entry with the
// same block_id.
func (c *Client) stashPutOrReplace(block Block) {
	for i, b := range c.stash {
		if !b.IsDummy && b.BlockID == block.BlockID {
			c.stash[i] = block
			return
		}
	}
	c.stash = append(c.stash, block)
}
