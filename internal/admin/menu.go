package admin

import "sync"

// MenuItem is one node of the static navigation tree. Items referencing an
// unknown parent become top-level entries.
type MenuItem struct {
	Name     string     `json:"name"`
	Label    string     `json:"label"`
	Icon     string     `json:"icon,omitempty"`
	URL      string     `json:"url,omitempty"`
	Parent   string     `json:"-"`
	Children []MenuItem `json:"children,omitempty"`
}

// MenuManager collects menu items and builds the hierarchical tree.
// Purely presentational; independent of the data layer.
type MenuManager struct {
	mu    sync.RWMutex
	items []MenuItem
}

// NewMenuManager constructs an empty MenuManager.
func NewMenuManager() *MenuManager {
	return &MenuManager{}
}

// Register appends a menu item. Registration order is preserved within each
// level of the tree.
func (m *MenuManager) Register(item MenuItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

// Tree assembles the parent/child hierarchy.
func (m *MenuManager) Tree() []MenuItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byName := make(map[string]*MenuItem, len(m.items))
	ordered := make([]*MenuItem, 0, len(m.items))
	for _, item := range m.items {
		copied := item
		copied.Children = nil
		byName[copied.Name] = &copied
		ordered = append(ordered, &copied)
	}

	var roots []MenuItem
	// Two passes keep child ordering stable: attach children first, then
	// collect roots.
	for _, item := range ordered {
		if item.Parent == "" {
			continue
		}
		if parent, ok := byName[item.Parent]; ok {
			parent.Children = append(parent.Children, *item)
		}
	}
	for _, item := range ordered {
		if item.Parent == "" {
			roots = append(roots, *item)
			continue
		}
		if _, ok := byName[item.Parent]; !ok {
			roots = append(roots, *item)
		}
	}
	return roots
}
