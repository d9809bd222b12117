package domain

// Layout is a saved canvas arrangement: the view transform and the world
// position of every live node.
type Layout struct {
	Scale     float64            `json:"scale"`
	OffsetX   float64            `json:"offset_x"`
	OffsetY   float64            `json:"offset_y"`
	Positions map[NodeType]Point `json:"positions"`
}

// Clone returns a copy that shares no map with l.
func (l Layout) Clone() Layout {
	out := l
	out.Positions = make(map[NodeType]Point, len(l.Positions))
	for k, v := range l.Positions {
		out.Positions[k] = v
	}
	return out
}
