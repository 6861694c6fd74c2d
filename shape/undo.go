package shape

import "github.com/lixenwraith/cellforge/pixel"

type cellChange struct {
	idx           int
	before, after pixel.Pixel
}

// undoLog journals cell writes in groups. All methods are no-ops on a nil log,
// which is how a shape without undo support carries it
type undoLog struct {
	depth   int
	open    int
	current []cellChange
	done    [][]cellChange
	undone  [][]cellChange
}

func newUndoLog(depth int) *undoLog {
	return &undoLog{depth: depth}
}

func (u *undoLog) begin() {
	if u == nil {
		return
	}
	u.open++
}

func (u *undoLog) end() {
	if u == nil || u.open == 0 {
		return
	}
	u.open--
	if u.open > 0 || len(u.current) == 0 {
		return
	}
	u.done = append(u.done, u.current)
	if len(u.done) > u.depth {
		u.done = u.done[len(u.done)-u.depth:]
	}
	u.current = nil
	u.undone = nil
}

func (u *undoLog) record(idx int, before, after pixel.Pixel) {
	if u == nil || before == after {
		return
	}
	u.current = append(u.current, cellChange{idx: idx, before: before, after: after})
}

// EnableUndo starts journaling writes, keeping at most depth groups
func (s *FullShape) EnableUndo(depth int) {
	if depth <= 0 {
		s.undo = nil
		return
	}
	s.undo = newUndoLog(depth)
}

// BeginUndoGroup opens a group; writes until the matching EndUndoGroup undo as one step.
// Groups nest, only the outermost one is recorded
func (s *FullShape) BeginUndoGroup() {
	s.undo.begin()
}

// EndUndoGroup closes the group opened by BeginUndoGroup
func (s *FullShape) EndUndoGroup() {
	s.undo.end()
}

// Undo reverts the most recent group. It reports false when nothing is left to undo
func (s *FullShape) Undo() bool {
	u := s.undo
	if u == nil || u.open > 0 || len(u.done) == 0 {
		return false
	}
	group := u.done[len(u.done)-1]
	u.done = u.done[:len(u.done)-1]
	for i := len(group) - 1; i >= 0; i-- {
		s.restore(group[i].idx, group[i].before)
	}
	u.undone = append(u.undone, group)
	return true
}

// Redo reapplies the most recently undone group
func (s *FullShape) Redo() bool {
	u := s.undo
	if u == nil || u.open > 0 || len(u.undone) == 0 {
		return false
	}
	group := u.undone[len(u.undone)-1]
	u.undone = u.undone[:len(u.undone)-1]
	for _, c := range group {
		s.restore(c.idx, c.after)
	}
	u.done = append(u.done, group)
	return true
}

// restore writes a journaled value back without journaling it again
func (s *FullShape) restore(idx int, p pixel.Pixel) {
	s.chars[idx] = p.Char
	s.fg[idx] = p.Fg
	s.bg[idx] = p.Bg
	s.effects[idx] = p.Effects
	s.tiles.Mark(idx%s.width, idx/s.width)
}
