package graph

import (
	"path"
	"strings"

	"github.com/scenedex/scenedex/pkg/types"
)

// Extractor derives relationship graph nodes and edges from file content.
// Extraction is per file and tolerant: malformed input degrades to fewer
// edges, never an error, and every file yields at least its File node.
type Extractor struct{}

// New creates a new Extractor instance
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the graph rows a file contributes. The File node comes
// first; scene nodes follow in declaration order. Edge endpoints are address
// hashes and may reference files that are not indexed yet.
func (e *Extractor) Extract(tenant types.Tenant, filePath, content string) ([]types.GraphNode, []types.GraphEdge) {
	fileNode := types.GraphNode{
		ID:       types.FileNodeID(tenant, filePath),
		Kind:     types.NodeFile,
		Name:     path.Base(filePath),
		FilePath: filePath,
	}

	switch types.DetectCategory(filePath) {
	case types.CategoryScene, types.CategoryResource:
		s := newSectionScan(tenant, filePath, fileNode.ID)
		s.run(content)
		return append([]types.GraphNode{fileNode}, s.nodes...), s.edges
	case types.CategoryScript:
		return []types.GraphNode{fileNode}, scanScript(tenant, filePath, content)
	default:
		return []types.GraphNode{fileNode}, nil
	}
}

// scanState tracks which kind of section the scanner is inside
type scanState int

const (
	outsideSection scanState = iota
	inNodeSection
	inConnectionSection
)

// extRef is one entry of the external reference table: a declared id mapped
// to the project-relative path it stands for.
type extRef struct {
	path     string
	category types.FileCategory
}

// sectionScan walks a section-based scene or resource file line by line.
// A bracketed header closes the previous section and opens a new one; only
// node sections produce GraphNodes, and property lines produce edges scoped
// to the enclosing node, or to the file itself outside node sections.
type sectionScan struct {
	tenant   types.Tenant
	filePath string
	fileID   string

	refs     map[string]extRef
	rootPath string
	state    scanState
	current  *types.GraphNode

	nodes []types.GraphNode
	edges []types.GraphEdge
}

func newSectionScan(tenant types.Tenant, filePath, fileID string) *sectionScan {
	return &sectionScan{
		tenant:   tenant,
		filePath: filePath,
		fileID:   fileID,
		refs:     make(map[string]extRef),
	}
}

func (s *sectionScan) run(content string) {
	lines := strings.Split(content, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if m := sectionHeader.FindStringSubmatch(line); m != nil {
			s.closeSection(lineNo - 1)
			s.openSection(m[1], m[2], lineNo)
			continue
		}
		if line == "" || s.state == inConnectionSection {
			continue
		}

		// Property lines bind to the enclosing node, or to the file
		// itself inside resource and sub resource sections
		src := s.fileID
		if s.state == inNodeSection {
			src = s.current.ID
		}
		s.scanProperty(src, line, lineNo)
	}
	s.closeSection(len(lines))
}

// closeSection finalizes an open node section at its last body line
func (s *sectionScan) closeSection(lastLine int) {
	if s.current != nil {
		if lastLine < s.current.StartLine {
			lastLine = s.current.StartLine
		}
		s.current.EndLine = lastLine
		s.nodes = append(s.nodes, *s.current)
		s.current = nil
	}
	s.state = outsideSection
}

func (s *sectionScan) openSection(name, attrBlob string, lineNo int) {
	attrs := parseAttrs(attrBlob)
	switch name {
	case "ext_resource":
		s.addExtResource(attrs)
	case "node":
		s.openNode(attrs, lineNo)
	case "connection":
		s.state = inConnectionSection
		s.addConnection(attrs, lineNo)
	}
}

func (s *sectionScan) addExtResource(attrs map[string]string) {
	id := attrs["id"]
	refPath := attrs["path"]
	if id == "" || refPath == "" {
		return
	}
	refPath = normalizeResourcePath(refPath)
	s.refs[id] = extRef{path: refPath, category: types.DetectCategory(refPath)}
}

// structuralPath resolves a node header to the node's path within the scene:
// an explicit node attribute wins, else parent/name, else just the name.
func structuralPath(attrs map[string]string) string {
	if p := attrs["node"]; p != "" {
		return p
	}
	if parent, ok := attrs["parent"]; ok && parent != "." {
		return parent + "/" + attrs["name"]
	}
	return attrs["name"]
}

func (s *sectionScan) openNode(attrs map[string]string, lineNo int) {
	name := attrs["name"]
	if name == "" {
		// Malformed header, skip the section body too
		return
	}

	nodePath := structuralPath(attrs)
	parent, hasParent := attrs["parent"]
	if !hasParent && s.rootPath == "" {
		s.rootPath = nodePath
	}

	node := types.GraphNode{
		ID:        types.SceneNodeID(s.tenant, s.filePath, nodePath),
		Kind:      types.NodeScene,
		Name:      name,
		NodeType:  attrs["type"],
		FilePath:  s.filePath,
		NodePath:  nodePath,
		StartLine: lineNo,
		EndLine:   lineNo,
	}
	s.current = &node
	s.state = inNodeSection

	if hasParent {
		parentPath := parent
		if parentPath == "." {
			parentPath = s.rootPath
		}
		if parentPath != "" {
			s.addEdge(types.SceneNodeID(s.tenant, s.filePath, parentPath), node.ID, types.EdgeChildOf, lineNo)
		}
	}

	if inst, ok := attrs["instance"]; ok {
		if ref, ok := s.refs[extResourceID(inst)]; ok && ref.category == types.CategoryScene {
			s.addEdge(node.ID, types.FileNodeID(s.tenant, ref.path), types.EdgeInstantiatesScene, lineNo)
		}
	}
}

func (s *sectionScan) addConnection(attrs map[string]string, lineNo int) {
	signal := attrs["signal"]
	from := s.resolveNodePath(attrs["from"])
	to := s.resolveNodePath(attrs["to"])
	method := attrs["method"]
	if signal == "" || from == "" || to == "" || method == "" {
		return
	}

	kind := types.EdgeConnectsSignal + ":" + signal + "->" + method
	s.addEdge(
		types.SceneNodeID(s.tenant, s.filePath, from),
		types.SceneNodeID(s.tenant, s.filePath, to),
		kind, lineNo,
	)
}

// resolveNodePath maps the "." shorthand to the scene root's path
func (s *sectionScan) resolveNodePath(p string) string {
	if p == "." {
		return s.rootPath
	}
	return p
}

// scanProperty emits reference edges for property values. A script property
// attaching a script-kind target is an attachment; every other resolvable
// reference is a generic resource use.
func (s *sectionScan) scanProperty(srcID, line string, lineNo int) {
	m := propertyLine.FindStringSubmatch(line)
	if m == nil {
		return
	}
	prop, value := m[1], m[2]

	var targets []string
	for _, rm := range extResource.FindAllStringSubmatch(value, -1) {
		if ref, ok := s.refs[strings.TrimSpace(rm[1])]; ok {
			targets = append(targets, ref.path)
		}
	}
	if len(targets) == 0 && prop == "script" {
		if qm := quotedValue.FindStringSubmatch(strings.TrimSpace(value)); qm != nil && qm[1] != "" {
			targets = append(targets, normalizeResourcePath(qm[1]))
		}
	}

	for _, target := range targets {
		kind := types.EdgeUsesResource
		if prop == "script" && types.DetectCategory(target) == types.CategoryScript {
			kind = types.EdgeAttachesScript
		}
		s.addEdge(srcID, types.FileNodeID(s.tenant, target), kind, lineNo)
	}
}

func (s *sectionScan) addEdge(srcID, dstID, kind string, lineNo int) {
	s.edges = append(s.edges, types.GraphEdge{
		SrcID:     srcID,
		DstID:     dstID,
		Kind:      kind,
		Strength:  strengthFor(kind),
		FilePath:  s.filePath,
		StartLine: lineNo,
		EndLine:   lineNo,
	})
}

// scanScript extracts file to file reference edges from procedural script
// text. Comment lines are ignored; targets that cannot address a file are
// dropped rather than stored as permanently dangling edges.
func scanScript(tenant types.Tenant, filePath, content string) []types.GraphEdge {
	srcID := types.FileNodeID(tenant, filePath)
	var edges []types.GraphEdge

	addEdge := func(target, kind string, lineNo int) {
		target = normalizeResourcePath(strings.TrimSpace(target))
		if !looksLikeResourcePath(target) {
			return
		}
		edges = append(edges, types.GraphEdge{
			SrcID:     srcID,
			DstID:     types.FileNodeID(tenant, target),
			Kind:      kind,
			Strength:  strengthFor(kind),
			FilePath:  filePath,
			StartLine: lineNo,
			EndLine:   lineNo,
		})
	}

	for i, raw := range strings.Split(content, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		for _, p := range scriptPatterns {
			for _, m := range p.re.FindAllStringSubmatch(line, -1) {
				addEdge(m[1], p.kind, lineNo)
			}
		}
		for _, m := range signalConnect.FindAllStringSubmatch(line, -1) {
			addEdge(m[2], types.EdgeConnectsSignal+":"+m[1], lineNo)
		}
	}
	return edges
}
