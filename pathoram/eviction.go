package pathoram

// evict builds the replacement path for oldLeaf and returns the leaf it
// must be written back to along with the buckets, without performing
// that final write itself. Dispatches on cfg.Eviction.
//
// EvictDeterministicTwoPath writes its primary path immediately (it must,
// since it goes on to read and merge a second, independent path into the
// stash before building the final path); the caller still performs the
// last write, to secondLeaf, exactly as it would for the single-path
// strategy.
func (c *Client) evict(oldLeaf int) (writeLeaf int, buckets []Bucket, err error) {
	switch c.cfg.Eviction {
	case EvictDeterministicTwoPath:
		primary, err := c.evictGreedyBottomUp(oldLeaf)
		if err != nil {
			return 0, nil, err
		}
		if err := c.server.WritePath(oldLeaf, primary); err != nil {
			return 0, nil, err
		}
		secondLeaf := RandomLeaf(c.depth)
		second := c.server.ReadPath(secondLeaf)
		for _, bucket := range second {
			for _, blk := range bucket.RealBlocks() {
				c.stashPutOrReplace(blk)
			}
		}
		final, err := c.evictGreedyBottomUp(secondLeaf)
		if err != nil {
			return 0, nil, err
		}
		return secondLeaf, final, nil
	default: // EvictGreedyBottomUp
		final, err := c.evictGreedyBottomUp(oldLeaf)
		if err != nil {
			return 0, nil, err
		}
		return oldLeaf, final, nil
	}
}

// evictGreedyBottomUp builds a fresh depth+1 bucket path to leaf, filled
// from the leaf upward (deepest bucket first). At each level, scan the
// stash in insertion order and move up to Z eligible real blocks (those
// whose current leaf lies on this node's path-to-leaf) into the bucket,
// then pad with dummies.
func (c *Client) evictGreedyBottomUp(leaf int) ([]Bucket, error) {
	nodes := PathNodes(leaf, c.depth)
	newBuckets := make([]Bucket, len(nodes))

	for pos := len(nodes) - 1; pos >= 0; pos-- {
		node := nodes[pos]
		bucket := NewBucket(c.cfg.Z)

		eligible := make([]int, 0, c.cfg.Z)
		for si, blk := range c.stash {
			if blk.IsDummy {
				continue
			}
			if OnPathToLeaf(node.Level, node.Idx, blk.Leaf, c.depth) {
				eligible = append(eligible, si)
			}
			if len(eligible) >= c.cfg.Z {
				break
			}
		}

		for _, si := range eligible {
			bucket.Blocks = append(bucket.Blocks, c.stash[si])
		}
		c.removeStashIndices(eligible)

		bucket.FillWithDummies(leaf, c.cfg.BlockSize)
		if err := bucket.EnforceCapacity(); err != nil {
			return nil, err
		}
		newBuckets[pos] = bucket
	}

	return newBuckets, nil
}

// removeStashIndices removes the stash entries at the given indices,
// which must be in ascending order, without disturbing the relative
// insertion order of the remaining entries (the eligibility scan depends
// on stable insertion order).
func (c *Client) removeStashIndices(indices []int) {
	for i := len(indices) - 1; i >= 0; i-- {
		idx := indices[i]
		c.stash = append(c.stash[:idx], c.stash[idx+1:]...)
	}
}
