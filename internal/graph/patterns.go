package graph

import (
	"path"
	"regexp"
	"strings"

	"github.com/scenedex/scenedex/pkg/types"
)

// Section format patterns. A single attribute regex parses every bracketed
// header; values are quoted strings or bare tokens.
var (
	sectionHeader = regexp.MustCompile(`^\[(\w+)\s*(.*?)\]\s*$`)
	headerAttr    = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|(\S+))`)
	extResource   = regexp.MustCompile(`ExtResource\(\s*"?([^")]+)"?\s*\)`)
	propertyLine  = regexp.MustCompile(`^([A-Za-z_]\w*(?:/\w+)*)\s*=\s*(.+)$`)
	quotedValue   = regexp.MustCompile(`^"([^"]*)"$`)
)

// Script reference patterns. Each match's first capture group is the target;
// targets that do not look like resource paths are dropped, mirroring how
// bare node names and callable expressions never resolve to files.
var scriptPatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{types.EdgeExtends, regexp.MustCompile(`^extends\s+["']([^"']+)["']`)},
	{types.EdgePreloadsResource, regexp.MustCompile(`preload\(\s*["']([^"']+)["']\s*\)`)},
	{types.EdgeLoadsResource, regexp.MustCompile(`\bload\(\s*["']([^"']+)["']\s*\)`)},
	{types.EdgeChangesScene, regexp.MustCompile(`change_scene(?:_to_file|_to_packed)?\(\s*["']([^"']+)["']\s*\)`)},
	{types.EdgeReferencesNode, regexp.MustCompile(`get_node\(\s*["']([^"']+)["']\s*\)`)},
	{types.EdgeReferencesNode, regexp.MustCompile(`\$([A-Za-z_][\w/]*)`)},
}

// signalConnect captures the signal name and the connect target expression
var signalConnect = regexp.MustCompile(`\bconnect\(\s*["']([^"']+)["']\s*,\s*([^,)]+)`)

// kindStrength weights edges by how directly the reference binds the files.
// Structural containment is certain; attachment and preloading are near
// certain; name-based lookups are weakest. Relative order matters more than
// the exact values.
var kindStrength = map[string]float64{
	types.EdgeChildOf:           1.0,
	types.EdgeAttachesScript:    0.9,
	types.EdgePreloadsResource:  0.9,
	types.EdgeExtends:           0.8,
	types.EdgeInstantiatesScene: 0.8,
	types.EdgeLoadsResource:     0.7,
	types.EdgeChangesScene:      0.7,
	types.EdgeConnectsSignal:    0.6,
	types.EdgeUsesResource:      0.6,
	types.EdgeReferencesNode:    0.5,
}

// strengthFor returns the weight for an edge kind, ignoring any
// ":<signal>-><method>" suffix.
func strengthFor(kind string) float64 {
	if i := strings.IndexByte(kind, ':'); i >= 0 {
		kind = kind[:i]
	}
	if s, ok := kindStrength[kind]; ok {
		return s
	}
	return 0.5
}

// normalizeResourcePath strips the engine resource scheme so targets address
// project-relative paths, the same coordinates the indexer stores files under.
func normalizeResourcePath(p string) string {
	return strings.TrimPrefix(p, "res://")
}

var resourceExt = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)

// looksLikeResourcePath reports whether a script reference target can address
// a file at all. Node paths ("Main/Player"), bare names, and callable
// expressions carry no file extension and can never resolve.
func looksLikeResourcePath(target string) bool {
	return resourceExt.MatchString(path.Ext(target))
}

// extResourceID extracts the reference id from an ExtResource("...") value,
// or returns "" when the value is not a reference.
func extResourceID(value string) string {
	m := extResource.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// parseAttrs parses a header's attribute blob into a key value map.
// Malformed fragments simply produce no entry.
func parseAttrs(blob string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range headerAttr.FindAllStringSubmatch(blob, -1) {
		if m[2] != "" {
			attrs[m[1]] = m[2]
		} else {
			attrs[m[1]] = m[3]
		}
	}
	return attrs
}
