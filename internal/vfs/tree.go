package vfs

import (
	"sort"
	"strings"
)

// Node is one entry of the derived file tree.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Type     string  `json:"type"` // "file" or "folder"
	Children []*Node `json:"children,omitempty"`
}

// Tree derives the folder hierarchy from the stored paths. Folders sort
// before files, each group by name.
func (fs Filesystem) Tree() []*Node {
	root := &Node{Type: "folder"}
	for _, p := range fs.Paths() {
		parts := strings.Split(strings.Trim(p, "/"), "/")
		cur := root
		for i, name := range parts {
			last := i == len(parts)-1
			child := cur.child(name)
			if child == nil {
				child = &Node{Name: name, Path: strings.Join(parts[:i+1], "/"), Type: "folder"}
				if last {
					child.Path = p
					child.Type = FileType
				}
				cur.Children = append(cur.Children, child)
			}
			cur = child
		}
	}
	sortNodes(root.Children)
	return root.Children
}

func (n *Node) child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Type != nodes[j].Type {
			return nodes[i].Type == "folder"
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}
