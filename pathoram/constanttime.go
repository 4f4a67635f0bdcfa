package pathoram

import "crypto/subtle"

// findInStashConstantTime searches the stash for blockID without an
// early exit: every entry is compared regardless of whether a match has
// already been found, so stash-scan timing does not depend on where (or
// whether) the target sits in the stash.
func (c *Client) findInStashConstantTime(blockID int) int {
	found := -1
	for i, b := range c.stash {
		idMatch := subtle.ConstantTimeEq(int32(b.BlockID), int32(blockID))
		notDummy := 1
		if b.IsDummy {
			notDummy = 0
		}
		match := idMatch & notDummy
		found = subtle.ConstantTimeSelect(match, i, found)
	}
	return found
}
