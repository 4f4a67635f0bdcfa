package pathoram

// ServerStats counts the bucket I/O a Server has served since the last
// reset; this is exactly the per-access leakage signal the partitioned
// scheme (package seal) reads off after delegating to a baseline client.
type ServerStats struct {
	BucketsRead    int
	BucketsWritten int
}

// Server is a complete binary tree of depth+1 levels of fixed-capacity
// buckets. It is the exclusive owner of its buckets: ReadPath hands the
// caller an owned snapshot and simultaneously installs fresh all-dummy
// buckets on that path, so WritePath is the only way a block returns to
// the server ("clear-on-read" ownership rule).
type Server struct {
	depth     int
	z         int
	blockSize int
	tree      [][]Bucket // tree[level][idx]
	stats     ServerStats
}

// NewServer allocates a server tree of the given depth and bucket
// capacity, with every bucket initially full of dummies.
func NewServer(depth, z, blockSize int) *Server {
	s := &Server{depth: depth, z: z, blockSize: blockSize}
	s.tree = make([][]Bucket, depth+1)
	for level := 0; level <= depth; level++ {
		levelNodes := 1 << level
		s.tree[level] = make([]Bucket, levelNodes)
		for idx := range s.tree[level] {
			b := NewBucket(z)
			b.FillWithDummies(0, blockSize)
			s.tree[level][idx] = b
		}
	}
	return s
}

// Depth returns the tree's depth (depth+1 levels, 2^depth leaves).
func (s *Server) Depth() int { return s.depth }

// Stats returns the bucket I/O counters accumulated since the last reset.
func (s *Server) Stats() ServerStats { return s.stats }

// ResetStats zeroes the bucket I/O counters.
func (s *Server) ResetStats() { s.stats = ServerStats{} }

func (s *Server) freshDummyBucket() Bucket {
	b := NewBucket(s.z)
	b.FillWithDummies(0, s.blockSize)
	return b
}

// ReadPath returns the depth+1 buckets on the root-to-leaf path to leaf,
// in root-to-leaf order, and atomically replaces each with a fresh
// all-dummy bucket.
func (s *Server) ReadPath(leaf int) []Bucket {
	nodes := PathNodes(leaf, s.depth)
	out := make([]Bucket, len(nodes))
	for i, n := range nodes {
		s.stats.BucketsRead++
		out[i] = s.tree[n.Level][n.Idx].clone()
		s.tree[n.Level][n.Idx] = s.freshDummyBucket()
	}
	return out
}

// WritePath installs buckets along the root-to-leaf path to leaf. It
// requires len(buckets) == depth+1 and each bucket to be at or under
// capacity.
func (s *Server) WritePath(leaf int, buckets []Bucket) error {
	nodes := PathNodes(leaf, s.depth)
	if len(buckets) != len(nodes) {
		return ErrLengthMismatch
	}
	for i, n := range nodes {
		if err := buckets[i].EnforceCapacity(); err != nil {
			return err
		}
		s.stats.BucketsWritten++
		s.tree[n.Level][n.Idx] = buckets[i]
	}
	return nil
}
