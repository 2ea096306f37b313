package tui

type pageLayout struct {
	windowWidth  int
	windowHeight int
	contentWidth int
	listHeight   int
}

func newPageLayout() pageLayout {
	return pageLayout{
		windowWidth:  80,
		windowHeight: 24,
		contentWidth: 76,
		listHeight:   10,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	inner := width - contentHorizontalPad
	if inner < minContentWidth {
		inner = minContentWidth
	}
	l.contentWidth = inner
	// hero, pane tabs, list header, status and help lines
	const chrome = 12
	rows := height - chrome
	if rows < 3 {
		rows = 3
	}
	l.listHeight = rows
}

// listWindow returns the [start, end) range of a list of n rows that keeps cursor visible.
func (l pageLayout) listWindow(n, cursor int) (int, int) {
	if n <= l.listHeight {
		return 0, n
	}
	start := cursor - l.listHeight/2
	if start < 0 {
		start = 0
	}
	end := start + l.listHeight
	if end > n {
		end = n
		start = end - l.listHeight
	}
	return start, end
}
