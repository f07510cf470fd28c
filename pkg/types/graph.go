package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// NodeKind distinguishes whole-file nodes from structural nodes declared
// inside a scene file.
type NodeKind string

const (
	NodeFile  NodeKind = "file"
	NodeScene NodeKind = "scene_node"
)

// Edge kind bases. CONNECTS_SIGNAL edges carry a ":<signal>-><method>"
// suffix on top of the base, so GraphEdge.Kind is a plain string.
const (
	EdgeChildOf           = "CHILD_OF"
	EdgeAttachesScript    = "ATTACHES_SCRIPT"
	EdgeInstantiatesScene = "INSTANTIATES_SCENE"
	EdgeUsesResource      = "USES_RESOURCE"
	EdgeConnectsSignal    = "CONNECTS_SIGNAL"
	EdgeExtends           = "EXTENDS"
	EdgePreloadsResource  = "PRELOADS_RESOURCE"
	EdgeLoadsResource     = "LOADS_RESOURCE"
	EdgeChangesScene      = "CHANGES_SCENE"
	EdgeReferencesNode    = "REFERENCES_NODE"
)

// GraphNode is one node in a tenant's relationship graph: either a File node
// representing an indexed file as a whole, or a SceneNode representing one
// declared node inside a structured scene file, keyed by its structural path.
type GraphNode struct {
	ID        string    `json:"id"`
	Kind      NodeKind  `json:"kind"`
	Name      string    `json:"name"`
	NodeType  string    `json:"node_type,omitempty"`
	FilePath  string    `json:"file_path"`
	NodePath  string    `json:"node_path,omitempty"`
	StartLine int       `json:"start_line,omitempty"`
	EndLine   int       `json:"end_line,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GraphEdge is a directed, typed relationship. CHILD_OF points parent to
// child; reference edges point referrer to referent. Endpoints are stable
// address hashes and need not both exist as materialized nodes: an edge to a
// not-yet-indexed file resolves once that file is indexed.
type GraphEdge struct {
	SrcID     string    `json:"src_id"`
	DstID     string    `json:"dst_id"`
	Kind      string    `json:"kind"`
	Strength  float64   `json:"strength"`
	FilePath  string    `json:"file_path"`
	StartLine int       `json:"start_line,omitempty"`
	EndLine   int       `json:"end_line,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RelationshipLabel returns the lowercase base kind used for traversal
// grouping labels ("uses_<label>" / "used_by_<label>"). Signal edges drop
// their ":<signal>-><method>" suffix.
func RelationshipLabel(kind string) string {
	if i := strings.IndexByte(kind, ':'); i >= 0 {
		kind = kind[:i]
	}
	return strings.ToLower(kind)
}

// FileNodeID computes the stable address hash identifying a file's node
// within a tenant. The id depends only on the tenant and the declared path,
// so edges created before the target file is indexed land on the same id as
// the node written when it is.
func FileNodeID(t Tenant, filePath string) string {
	return addressHash(t.UserID, t.ProjectID, "file", filePath)
}

// SceneNodeID computes the stable address hash for a structural node,
// keyed by its owning file and structural path.
func SceneNodeID(t Tenant, filePath, nodePath string) string {
	return addressHash(t.UserID, t.ProjectID, "node", filePath, nodePath)
}

func addressHash(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}
