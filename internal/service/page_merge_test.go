package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blocknote/internal/domain"
)

func blk(id, text string) domain.Block {
	return domain.Block{ID: id, Type: domain.BlockTypeParagraph, Content: text}
}

func blockIDs(blocks []domain.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

func TestMergePage(t *testing.T) {
	base := domain.Page{Title: "T", Blocks: []domain.Block{blk("a", "1"), blk("b", "2"), blk("c", "3")}}

	tests := []struct {
		name      string
		theirs    domain.Page
		title     string
		ours      []domain.Block
		wantTitle string
		want      []domain.Block
		wantKept  int
	}{
		{
			name:      "nothing changed elsewhere",
			theirs:    base,
			title:     "T2",
			ours:      []domain.Block{blk("a", "1x"), blk("b", "2"), blk("c", "3")},
			wantTitle: "T2",
			want:      []domain.Block{blk("a", "1x"), blk("b", "2"), blk("c", "3")},
		},
		{
			name:      "edit elsewhere to a block untouched here",
			theirs:    domain.Page{Title: "T", Blocks: []domain.Block{blk("a", "1"), blk("b", "2!"), blk("c", "3")}},
			title:     "T",
			ours:      []domain.Block{blk("a", "1x"), blk("b", "2"), blk("c", "3")},
			wantTitle: "T",
			want:      []domain.Block{blk("a", "1x"), blk("b", "2!"), blk("c", "3")},
			wantKept:  1,
		},
		{
			name:      "both edited the same block",
			theirs:    domain.Page{Title: "T", Blocks: []domain.Block{blk("a", "theirs"), blk("b", "2"), blk("c", "3")}},
			title:     "T",
			ours:      []domain.Block{blk("a", "ours"), blk("b", "2"), blk("c", "3")},
			wantTitle: "T",
			want:      []domain.Block{blk("a", "ours"), blk("b", "2"), blk("c", "3")},
		},
		{
			name:      "removed elsewhere",
			theirs:    domain.Page{Title: "T", Blocks: []domain.Block{blk("a", "1"), blk("c", "3")}},
			title:     "T",
			ours:      []domain.Block{blk("a", "1"), blk("b", "2"), blk("c", "3")},
			wantTitle: "T",
			want:      []domain.Block{blk("a", "1"), blk("c", "3")},
			wantKept:  1,
		},
		{
			name:      "added elsewhere lands after its neighbour",
			theirs:    domain.Page{Title: "New", Blocks: []domain.Block{blk("n0", "top"), blk("a", "1"), blk("n1", "mid"), blk("b", "2"), blk("c", "3")}},
			title:     "T",
			ours:      []domain.Block{blk("c", "3"), blk("a", "1"), blk("b", "2")},
			wantTitle: "New",
			want:      []domain.Block{blk("n0", "top"), blk("c", "3"), blk("a", "1"), blk("n1", "mid"), blk("b", "2")},
			wantKept:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, got, kept := mergePage(base, tt.theirs, tt.title, tt.ours)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, blockIDs(tt.want), blockIDs(got))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKept, kept)
		})
	}
}
