package record

import (
	"slices"
	"strings"
)

// Namespace remaps type discriminator values written by the remote
// application to the names used by the local one.
type Namespace struct {
	// Prefix is removed from remote type names, for example "Legacy::".
	Prefix string

	// Map contains explicit renames and takes precedence over Prefix.
	Map map[string]string
}

// Local converts a remote type name to its local counterpart.
func (n Namespace) Local(remote string) string {
	if v, ok := n.Map[remote]; ok {
		return v
	}
	if n.Prefix != "" {
		return strings.TrimPrefix(remote, n.Prefix)
	}
	return remote
}

// Remote returns type names the remote application may use for a local
// type name. The local name itself is always included.
func (n Namespace) Remote(local string) []string {
	res := []string{local}
	if n.Prefix != "" {
		res = append(res, n.Prefix+local)
	}
	for k, v := range n.Map {
		if v == local && k != local {
			res = append(res, k)
		}
	}
	slices.Sort(res[1:])
	return slices.Compact(res)
}
