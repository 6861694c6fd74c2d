package dirty

import (
	"math/bits"
	"sync/atomic"

	"github.com/lixenwraith/cellforge/parameter"
)

// Tiles tracks which fixed-size tiles of a cell grid changed since the last clear.
// Bits are packed 64 per word and updated atomically, so writers on any goroutine
// can mark without locking; Resize is not safe against concurrent marks
type Tiles struct {
	words  []atomic.Uint64
	width  int
	height int
	tile   int
	tilesX int
	tilesY int
}

// NewTiles creates a clean tracker for a width x height cell grid using the default tile size
func NewTiles(width, height int) *Tiles {
	return NewTilesSize(width, height, parameter.DirtyTileSize)
}

// NewTilesSize creates a clean tracker with an explicit tile edge length
func NewTilesSize(width, height, tile int) *Tiles {
	if tile <= 0 {
		tile = parameter.DirtyTileSize
	}
	t := &Tiles{tile: tile}
	t.Resize(width, height)
	t.Clear()
	return t
}

// Resize adapts the grid to new cell dimensions. Every tile becomes dirty
func (t *Tiles) Resize(width, height int) {
	t.width = max(width, 0)
	t.height = max(height, 0)
	t.tilesX = (t.width + t.tile - 1) / t.tile
	t.tilesY = (t.height + t.tile - 1) / t.tile
	t.words = make([]atomic.Uint64, (t.tilesX*t.tilesY+63)/64)
	t.MarkAll()
}

// TileSize returns the tile edge length in cells
func (t *Tiles) TileSize() int { return t.tile }

// TilesX returns the number of tile columns
func (t *Tiles) TilesX() int { return t.tilesX }

// TilesY returns the number of tile rows
func (t *Tiles) TilesY() int { return t.tilesY }

// Mark flags the tile containing cell (x, y). Out-of-bounds cells are ignored
func (t *Tiles) Mark(x, y int) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	t.markTile(x/t.tile, y/t.tile)
}

func (t *Tiles) markTile(tx, ty int) {
	idx := ty*t.tilesX + tx
	t.words[idx/64].Or(1 << (idx & 63))
}

// MarkRect flags every tile intersecting r
func (t *Tiles) MarkRect(r Rect) {
	r = r.Clip(t.width, t.height)
	if r.Empty() {
		return
	}
	tx1, ty1 := r.X/t.tile, r.Y/t.tile
	tx2, ty2 := (r.Right()-1)/t.tile, (r.Bottom()-1)/t.tile
	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			t.markTile(tx, ty)
		}
	}
}

// MarkAll flags every tile
func (t *Tiles) MarkAll() {
	total := t.tilesX * t.tilesY
	full := total / 64
	for i := 0; i < full; i++ {
		t.words[i].Store(^uint64(0))
	}
	if rem := total % 64; rem > 0 {
		t.words[full].Store(uint64(1)<<rem - 1)
	}
}

// Clear marks every tile clean
func (t *Tiles) Clear() {
	for i := range t.words {
		t.words[i].Store(0)
	}
}

// ClearRect clears tiles whose whole (clipped) area lies inside r. Tiles only
// partially covered stay dirty
func (t *Tiles) ClearRect(r Rect) {
	r = r.Clip(t.width, t.height)
	if r.Empty() {
		return
	}
	for ty := r.Y / t.tile; ty <= (r.Bottom()-1)/t.tile; ty++ {
		for tx := r.X / t.tile; tx <= (r.Right()-1)/t.tile; tx++ {
			if r.Intersect(t.TileRect(tx, ty)) != t.TileRect(tx, ty) {
				continue
			}
			idx := ty*t.tilesX + tx
			t.words[idx/64].And(^(uint64(1) << (idx & 63)))
		}
	}
}

// IsDirty reports whether tile (tx, ty) is flagged
func (t *Tiles) IsDirty(tx, ty int) bool {
	if tx < 0 || ty < 0 || tx >= t.tilesX || ty >= t.tilesY {
		return false
	}
	idx := ty*t.tilesX + tx
	return t.words[idx/64].Load()&(1<<(idx&63)) != 0
}

// IsEmpty reports whether no tile is flagged
func (t *Tiles) IsEmpty() bool {
	for i := range t.words {
		if t.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of flagged tiles
func (t *Tiles) Count() int {
	n := 0
	for i := range t.words {
		n += bits.OnesCount64(t.words[i].Load())
	}
	return n
}

// ForEach calls fn for each flagged tile in row-major order
func (t *Tiles) ForEach(fn func(tx, ty int)) {
	for i := range t.words {
		w := t.words[i].Load()
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			idx := i*64 + bit
			fn(idx%t.tilesX, idx/t.tilesX)
			w &^= 1 << bit
		}
	}
}

// TileRect returns the cell rectangle of tile (tx, ty), clipped to the grid
func (t *Tiles) TileRect(tx, ty int) Rect {
	return R(tx*t.tile, ty*t.tile, t.tile, t.tile).Clip(t.width, t.height)
}

// Rects returns the flagged tiles merged into non-overlapping cell rectangles
func (t *Tiles) Rects() []Rect {
	if t.tilesX == 0 || t.tilesY == 0 {
		return nil
	}
	var out []Rect
	for _, r := range mergeSpans(t.tilesX, t.tilesY, t.IsDirty) {
		out = append(out, R(r.X*t.tile, r.Y*t.tile, r.W*t.tile, r.H*t.tile).Clip(t.width, t.height))
	}
	return out
}
