package service

import "blocknote/internal/domain"

// mergePage folds the changes another process made to a page (theirs,
// relative to base, the version this process last saw) into the version
// being written (ours). Where both sides changed the same block or the
// title, ours wins. Returns the merged title and blocks and how many
// changes from theirs were kept.
func mergePage(base, theirs domain.Page, title string, ours []domain.Block) (string, []domain.Block, int) {
	kept := 0
	if title == base.Title && theirs.Title != base.Title {
		title = theirs.Title
		kept++
	}

	baseByID := blocksByID(base.Blocks)
	theirsByID := blocksByID(theirs.Blocks)
	oursByID := blocksByID(ours)

	out := make([]domain.Block, 0, len(ours)+len(theirs.Blocks))
	for _, b := range ours {
		old, inBase := baseByID[b.ID]
		t, inTheirs := theirsByID[b.ID]
		switch {
		case inBase && b == old && !inTheirs:
			// Removed elsewhere, untouched here.
			kept++
			continue
		case inBase && b == old && t != old:
			out = append(out, t)
			kept++
			continue
		}
		out = append(out, b)
	}

	// Blocks added elsewhere land after the block that precedes them there.
	for i, t := range theirs.Blocks {
		if _, ok := baseByID[t.ID]; ok {
			continue
		}
		if _, ok := oursByID[t.ID]; ok {
			continue
		}
		at := 0
		if i > 0 {
			at = len(out)
			for j := range out {
				if out[j].ID == theirs.Blocks[i-1].ID {
					at = j + 1
					break
				}
			}
		}
		out = append(out, domain.Block{})
		copy(out[at+1:], out[at:])
		out[at] = t
		kept++
	}
	return title, out, kept
}

func blocksByID(blocks []domain.Block) map[string]domain.Block {
	m := make(map[string]domain.Block, len(blocks))
	for _, b := range blocks {
		m[b.ID] = b
	}
	return m
}
