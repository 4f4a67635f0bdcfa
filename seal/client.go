package seal

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/etclab/oramlab/pathoram"
)

// ErrGlobalIDOutOfRange reports an access with global_id outside [0, n).
var ErrGlobalIDOutOfRange = errors.New("seal: global id out of range")

// AccessLog is the per-access leakage record an observer at the server
// boundary would see: the observable sub-tree index and the
// bucket-I/O/stash-size counters captured as a difference around the
// delegated baseline access.
type AccessLog struct {
	SubIndex             int
	LocalID              int
	BucketsRead          int
	BucketsWritten       int
	StashSize            int
	ApproxBandwidthBytes int
}

// Client is the partitioned-scheme client: m = 2^alpha independent
// baseline oblivious trees (package pathoram), addressed by splitting a
// PRP-permuted global id into (sub-tree index, local id).
type Client struct {
	params         Params
	prp            *FeistelPRP
	subs           []*pathoram.Client
	blockSizeBytes int
	z              int

	lastAccess *AccessLog
	accessLog  []AccessLog

	log *zap.Logger
}

// ClientConfig configures a partitioned client.
type ClientConfig struct {
	N              int
	Z              int
	Alpha          int
	BlockSizeBytes int // payload size of every block in each sub-tree, also used for ApproxBandwidthBytes; defaults to 64
	PRPKey         []byte
	DefaultValue   []byte
}

// NewClient builds the partitioned client: validates (n, alpha), keys a
// fresh Feistel PRP (sampling a CSPRNG key when PRPKey is nil), and
// allocates m baseline sub-tree clients of size local_n each.
func NewClient(cfg ClientConfig) (*Client, error) {
	params, err := MakeParams(cfg.N, cfg.Alpha)
	if err != nil {
		return nil, err
	}

	prp, err := NewFeistelPRP(cfg.PRPKey, params.K)
	if err != nil {
		return nil, err
	}

	blockSizeBytes := cfg.BlockSizeBytes
	if blockSizeBytes == 0 {
		blockSizeBytes = 64
	}

	subs := make([]*pathoram.Client, params.M)
	for i := range subs {
		sub, err := pathoram.Setup(pathoram.Config{
			N:            params.LocalN,
			Z:            cfg.Z,
			BlockSize:    blockSizeBytes,
			DefaultValue: cfg.DefaultValue,
		})
		if err != nil {
			return nil, err
		}
		subs[i] = sub
	}

	return &Client{
		params:         params,
		prp:            prp,
		subs:           subs,
		blockSizeBytes: blockSizeBytes,
		z:              cfg.Z,
		log:            zap.NewNop(),
	}, nil
}

// WithLogger attaches a structured logger; nil is treated as a no-op.
func (c *Client) WithLogger(log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c.log = log
	c.log.Info("seal client ready",
		zap.Int("n", c.params.N),
		zap.Int("alpha", c.params.Alpha),
		zap.Int("m", c.params.M),
		zap.String("key_fingerprint", c.keyFingerprint()),
	)
	return c
}

// keyFingerprint returns a stable, non-secret correlation handle for this
// client's PRP key, derived deterministically from the key material via
// UUID v5 so logs can be grouped by session without ever printing the key.
func (c *Client) keyFingerprint() string {
	return uuid.NewSHA1(uuid.Nil, c.prp.roundKey).String()
}

// Params returns the partitioning sizes this client was built with.
func (c *Client) Params() Params { return c.params }

// Route returns (sub_index, local_id) for global_id:
//
//	j = PRP(global_id)
//	alpha == 0: sub_index = 0, local_id = j
//	else:       sub_index = j >> local_k, local_id = j & ((1<<local_k)-1)
func (c *Client) Route(globalID int) (subIndex, localID int, err error) {
	if globalID < 0 || globalID >= c.params.N {
		return 0, 0, ErrGlobalIDOutOfRange
	}
	j, err := c.prp.Permute(globalID)
	if err != nil {
		return 0, 0, err
	}
	if c.params.Alpha == 0 {
		return 0, j, nil
	}
	shift := c.params.LocalK
	sub := j >> shift
	local := j & ((1 << shift) - 1)
	return sub, local, nil
}

// Access routes global_id to a sub-tree, resets that sub-tree's server
// counters, delegates to its baseline access, and records the resulting
// leakage entry.
func (c *Client) Access(op pathoram.Op, globalID int, newData []byte) ([]byte, error) {
	sub, local, err := c.Route(globalID)
	if err != nil {
		return nil, err
	}

	oram := c.subs[sub]
	oram.ResetStats()

	result, err := oram.Access(op, local, newData)
	if err != nil {
		return nil, err
	}

	stats := oram.Stats()
	entry := AccessLog{
		SubIndex:             sub,
		LocalID:              local,
		BucketsRead:          stats.BucketsRead,
		BucketsWritten:       stats.BucketsWritten,
		StashSize:            oram.StashSize(),
		ApproxBandwidthBytes: (stats.BucketsRead + stats.BucketsWritten) * c.z * c.blockSizeBytes,
	}
	c.lastAccess = &entry
	c.accessLog = append(c.accessLog, entry)

	c.log.Debug("seal access routed",
		zap.Int("global_id", globalID),
		zap.Int("sub_index", sub),
		zap.Int("local_id", local),
		zap.Int("buckets_read", entry.BucketsRead),
		zap.Int("buckets_written", entry.BucketsWritten),
		zap.Int("stash_size", entry.StashSize),
	)

	return result, nil
}

// LastAccess returns the most recent access's leakage record, or nil if
// no access has been made yet.
func (c *Client) LastAccess() *AccessLog { return c.lastAccess }

// AccessLog returns every leakage record recorded since the last
// ResetLog (or since construction).
func (c *Client) AccessLog() []AccessLog {
	out := make([]AccessLog, len(c.accessLog))
	copy(out, c.accessLog)
	return out
}

// ResetLog clears the access log and last-access pointer, giving the
// next caller (e.g. package session, between attacker sessions) a fresh
// leakage trace.
func (c *Client) ResetLog() {
	c.accessLog = nil
	c.lastAccess = nil
}

