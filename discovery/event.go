package discovery

// Event is a membership change a Watcher emits as it diffs successive
// DiscoverPeers snapshots against what it already knew about.
type Event interface {
	IsEvent()
}

// NodeAdded fires the first time a Node is seen.
type NodeAdded struct {
	Node *Node
}

func (NodeAdded) IsEvent() {}

// NodeRemoved fires when a previously known Node drops out of the latest
// snapshot.
type NodeRemoved struct {
	Node *Node
}

func (NodeRemoved) IsEvent() {}

// NodeModified fires when a known Node reappears with different fields
// (e.g. its Meta changed). Current is the value before the update, Node
// the value after.
type NodeModified struct {
	Node    *Node
	Current *Node
}

func (NodeModified) IsEvent() {}
