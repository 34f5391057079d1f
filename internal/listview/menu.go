package listview

// Rect is a screen rectangle in cells. Right and Bottom are exclusive.
type Rect struct {
	Top    int
	Left   int
	Right  int
	Bottom int
}

// Contains reports whether pt lies inside r.
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.Left && pt.X < r.Right && pt.Y >= r.Top && pt.Y < r.Bottom
}

// Point is a screen cell.
type Point struct {
	X int
	Y int
}

// Menu is the row action menu. At most one is open at a time.
type Menu struct {
	openID string
	pos    Rect
	width  int
	height int
}

// NewMenu returns a closed menu of the given size.
func NewMenu(width, height int) *Menu {
	return &Menu{width: width, height: height}
}

// Toggle opens the menu for id next to anchor, or closes it when the menu
// for id is already open. It returns whether the menu is now open.
func (m *Menu) Toggle(id string, anchor Rect) bool {
	if m.openID == id {
		m.Close()
		return false
	}

	top := max(anchor.Top-1, 0)
	left := max(anchor.Right-m.width, 0)
	m.openID = id
	m.pos = Rect{Top: top, Left: left, Right: left + m.width, Bottom: top + m.height}
	return true
}

// Close dismisses the menu.
func (m *Menu) Close() {
	m.openID = ""
	m.pos = Rect{}
}

// IsOpen reports whether any menu is open.
func (m *Menu) IsOpen() bool {
	return m.openID != ""
}

// OpenID returns the id whose menu is open, or "".
func (m *Menu) OpenID() string {
	return m.openID
}

// Position returns where the open menu is drawn.
func (m *Menu) Position() Rect {
	return m.pos
}

// HandleOutsideClick closes the menu when pt is outside it. It reports
// whether the click dismissed the menu.
func (m *Menu) HandleOutsideClick(pt Point) bool {
	if !m.IsOpen() || m.pos.Contains(pt) {
		return false
	}
	m.Close()
	return true
}

// HandleEscape closes the menu. It reports whether a menu was open.
func (m *Menu) HandleEscape() bool {
	if !m.IsOpen() {
		return false
	}
	m.Close()
	return true
}
