package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenedex/scenedex/pkg/types"
)

var extractTenant = types.Tenant{UserID: "u1", ProjectID: "p1"}

// edgesOfKind filters edges by base kind, ignoring signal suffixes
func edgesOfKind(edges []types.GraphEdge, kind string) []types.GraphEdge {
	var out []types.GraphEdge
	for _, e := range edges {
		if types.RelationshipLabel(e.Kind) == types.RelationshipLabel(kind) {
			out = append(out, e)
		}
	}
	return out
}

const mainScene = `[gd_scene load_steps=4 format=3]

[ext_resource type="Script" path="res://scripts/player.gd" id="1_script"]
[ext_resource type="PackedScene" path="res://scenes/ui.tscn" id="2_ui"]
[ext_resource type="Texture2D" path="res://art/player.png" id="3_tex"]

[node name="Main" type="Node2D"]
script = ExtResource("1_script")

[node name="Player" type="CharacterBody2D" parent="."]

[node name="Sprite" type="Sprite2D" parent="Player"]
texture = ExtResource("3_tex")

[node name="HUD" parent="." instance=ExtResource("2_ui")]

[connection signal="hit" from="Player" to="." method="_on_player_hit"]
`

func TestExtract_SceneNodes(t *testing.T) {
	ex := New()
	nodes, _ := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)

	require.Len(t, nodes, 5)

	// File node always comes first
	assert.Equal(t, types.NodeFile, nodes[0].Kind)
	assert.Equal(t, types.FileNodeID(extractTenant, "scenes/main.tscn"), nodes[0].ID)
	assert.Equal(t, "main.tscn", nodes[0].Name)

	root := nodes[1]
	assert.Equal(t, types.NodeScene, root.Kind)
	assert.Equal(t, "Main", root.Name)
	assert.Equal(t, "Node2D", root.NodeType)
	assert.Equal(t, "Main", root.NodePath)
	assert.Equal(t, types.SceneNodeID(extractTenant, "scenes/main.tscn", "Main"), root.ID)
	assert.Equal(t, 7, root.StartLine)

	player := nodes[2]
	assert.Equal(t, "Player", player.NodePath)

	sprite := nodes[3]
	assert.Equal(t, "Player/Sprite", sprite.NodePath)
	assert.Equal(t, types.SceneNodeID(extractTenant, "scenes/main.tscn", "Player/Sprite"), sprite.ID)

	hud := nodes[4]
	assert.Equal(t, "HUD", hud.NodePath)
}

func TestExtract_SceneChildOf(t *testing.T) {
	ex := New()
	_, edges := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)

	childEdges := edgesOfKind(edges, types.EdgeChildOf)
	require.Len(t, childEdges, 3)

	rootID := types.SceneNodeID(extractTenant, "scenes/main.tscn", "Main")
	playerID := types.SceneNodeID(extractTenant, "scenes/main.tscn", "Player")

	// "." parents resolve to the scene root
	assert.Equal(t, rootID, childEdges[0].SrcID)
	assert.Equal(t, playerID, childEdges[0].DstID)
	assert.Equal(t, 1.0, childEdges[0].Strength)

	// Explicit parent paths resolve directly
	assert.Equal(t, playerID, childEdges[1].SrcID)
	assert.Equal(t, types.SceneNodeID(extractTenant, "scenes/main.tscn", "Player/Sprite"), childEdges[1].DstID)
}

func TestExtract_SceneScriptAttachment(t *testing.T) {
	ex := New()
	_, edges := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)

	attach := edgesOfKind(edges, types.EdgeAttachesScript)
	require.Len(t, attach, 1)

	assert.Equal(t, types.SceneNodeID(extractTenant, "scenes/main.tscn", "Main"), attach[0].SrcID)
	assert.Equal(t, types.FileNodeID(extractTenant, "scripts/player.gd"), attach[0].DstID)
	assert.Equal(t, 0.9, attach[0].Strength)
	assert.Equal(t, 8, attach[0].StartLine)
}

func TestExtract_SceneInstance(t *testing.T) {
	ex := New()
	_, edges := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)

	inst := edgesOfKind(edges, types.EdgeInstantiatesScene)
	require.Len(t, inst, 1)

	assert.Equal(t, types.SceneNodeID(extractTenant, "scenes/main.tscn", "HUD"), inst[0].SrcID)
	assert.Equal(t, types.FileNodeID(extractTenant, "scenes/ui.tscn"), inst[0].DstID)
	assert.Equal(t, 0.8, inst[0].Strength)
}

func TestExtract_SceneResourceUse(t *testing.T) {
	ex := New()
	_, edges := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)

	uses := edgesOfKind(edges, types.EdgeUsesResource)
	require.Len(t, uses, 1)

	assert.Equal(t, types.SceneNodeID(extractTenant, "scenes/main.tscn", "Player/Sprite"), uses[0].SrcID)
	assert.Equal(t, types.FileNodeID(extractTenant, "art/player.png"), uses[0].DstID)
	assert.Equal(t, 0.6, uses[0].Strength)
}

func TestExtract_SceneSignalConnection(t *testing.T) {
	ex := New()
	_, edges := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)

	signals := edgesOfKind(edges, types.EdgeConnectsSignal)
	require.Len(t, signals, 1)

	e := signals[0]
	assert.Equal(t, "CONNECTS_SIGNAL:hit->_on_player_hit", e.Kind)
	assert.Equal(t, types.SceneNodeID(extractTenant, "scenes/main.tscn", "Player"), e.SrcID)
	// "." target resolves to the root
	assert.Equal(t, types.SceneNodeID(extractTenant, "scenes/main.tscn", "Main"), e.DstID)
	assert.Equal(t, 0.6, e.Strength)
}

func TestExtract_EdgeOwnership(t *testing.T) {
	ex := New()
	_, edges := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)

	require.NotEmpty(t, edges)
	for _, e := range edges {
		assert.Equal(t, "scenes/main.tscn", e.FilePath)
	}
}

func TestExtract_ExplicitNodeAttribute(t *testing.T) {
	scene := `[node name="Root" type="Node2D"]

[node name="Deep" type="Node2D" parent="." node="A/B/Deep"]
`
	ex := New()
	nodes, _ := ex.Extract(extractTenant, "s.tscn", scene)

	require.Len(t, nodes, 3)
	assert.Equal(t, "A/B/Deep", nodes[2].NodePath)
}

func TestExtract_DirectScriptPath(t *testing.T) {
	scene := `[node name="Root" type="Node2D"]
script = "res://scripts/root.gd"
`
	ex := New()
	_, edges := ex.Extract(extractTenant, "s.tscn", scene)

	attach := edgesOfKind(edges, types.EdgeAttachesScript)
	require.Len(t, attach, 1)
	assert.Equal(t, types.FileNodeID(extractTenant, "scripts/root.gd"), attach[0].DstID)
}

func TestExtract_UnknownReferenceSkipped(t *testing.T) {
	scene := `[node name="Root" type="Node2D"]
script = ExtResource("no_such_id")
`
	ex := New()
	nodes, edges := ex.Extract(extractTenant, "s.tscn", scene)

	assert.Len(t, nodes, 2)
	assert.Empty(t, edges)
}

func TestExtract_MalformedHeadersSkipped(t *testing.T) {
	scene := `[node type="Node2D"]
script = ExtResource("1")
[not a real header
[node name="Root" type="Node2D"]
`
	ex := New()
	nodes, edges := ex.Extract(extractTenant, "s.tscn", scene)

	// The nameless node produces nothing; the valid one still lands
	require.Len(t, nodes, 2)
	assert.Equal(t, "Root", nodes[1].Name)
	assert.Empty(t, edgesOfKind(edges, types.EdgeChildOf))
}

func TestExtract_NodeLineRanges(t *testing.T) {
	scene := `[node name="Root" type="Node2D"]
position = Vector2(0, 0)
rotation = 1.5

[node name="Child" type="Node2D" parent="."]
`
	ex := New()
	nodes, _ := ex.Extract(extractTenant, "s.tscn", scene)

	require.Len(t, nodes, 3)
	root := nodes[1]
	assert.Equal(t, 1, root.StartLine)
	assert.Equal(t, 4, root.EndLine)
}

func TestExtract_ResourceFile(t *testing.T) {
	resource := `[gd_resource type="Material" load_steps=3 format=3]

[ext_resource type="Texture2D" path="res://art/noise.png" id="1"]
[ext_resource type="Script" path="res://shaders/driver.gd" id="2"]

[resource]
script = ExtResource("2")
noise_texture = ExtResource("1")
`
	ex := New()
	nodes, edges := ex.Extract(extractTenant, "materials/fx.tres", resource)

	// Resource files yield only their File node
	require.Len(t, nodes, 1)
	assert.Equal(t, types.NodeFile, nodes[0].Kind)

	// Properties outside node sections bind to the file itself
	attach := edgesOfKind(edges, types.EdgeAttachesScript)
	require.Len(t, attach, 1)
	assert.Equal(t, nodes[0].ID, attach[0].SrcID)
	assert.Equal(t, types.FileNodeID(extractTenant, "shaders/driver.gd"), attach[0].DstID)

	uses := edgesOfKind(edges, types.EdgeUsesResource)
	require.Len(t, uses, 1)
	assert.Equal(t, types.FileNodeID(extractTenant, "art/noise.png"), uses[0].DstID)
}

const playerScript = `extends "res://scripts/actor.gd"

const Bullet = preload("res://scenes/bullet.tscn")
var sfx = null

func _ready():
	sfx = load("res://audio/jump.ogg")
	var hud = get_node("Main/HUD")
	var cam = $Camera2D
	# preload("res://not/real.tscn") in a comment stays ignored
	timer.connect("timeout", _on_timeout)

func die():
	get_tree().change_scene_to_file("res://scenes/game_over.tscn")
`

func TestExtract_ScriptEdges(t *testing.T) {
	ex := New()
	nodes, edges := ex.Extract(extractTenant, "scripts/player.gd", playerScript)

	require.Len(t, nodes, 1)
	assert.Equal(t, types.NodeFile, nodes[0].Kind)

	byKind := map[string]string{}
	for _, e := range edges {
		byKind[types.RelationshipLabel(e.Kind)] = e.DstID
	}

	assert.Equal(t, types.FileNodeID(extractTenant, "scripts/actor.gd"), byKind["extends"])
	assert.Equal(t, types.FileNodeID(extractTenant, "scenes/bullet.tscn"), byKind["preloads_resource"])
	assert.Equal(t, types.FileNodeID(extractTenant, "audio/jump.ogg"), byKind["loads_resource"])
	assert.Equal(t, types.FileNodeID(extractTenant, "scenes/game_over.tscn"), byKind["changes_scene"])

	// Node lookups and callable connects carry no file extension: dropped
	assert.NotContains(t, byKind, "references_node")
	assert.NotContains(t, byKind, "connects_signal")
	assert.Len(t, edges, 4)
}

func TestExtract_ScriptStrengths(t *testing.T) {
	ex := New()
	_, edges := ex.Extract(extractTenant, "scripts/player.gd", playerScript)

	want := map[string]float64{
		"extends":           0.8,
		"preloads_resource": 0.9,
		"loads_resource":    0.7,
		"changes_scene":     0.7,
	}
	for _, e := range edges {
		assert.Equal(t, want[types.RelationshipLabel(e.Kind)], e.Strength, e.Kind)
	}
}

func TestExtract_ScriptIdentifierExtendsSkipped(t *testing.T) {
	ex := New()
	_, edges := ex.Extract(extractTenant, "scripts/enemy.gd", "extends CharacterBody2D\n")

	// Built-in class extends cannot address a file
	assert.Empty(t, edges)
}

func TestExtract_ScriptPathLikeLookup(t *testing.T) {
	ex := New()
	_, edges := ex.Extract(extractTenant, "scripts/spawner.gd",
		`var scene = get_node("res://scenes/pool.tscn")`+"\n")

	refs := edgesOfKind(edges, types.EdgeReferencesNode)
	require.Len(t, refs, 1)
	assert.Equal(t, types.FileNodeID(extractTenant, "scenes/pool.tscn"), refs[0].DstID)
	assert.Equal(t, 0.5, refs[0].Strength)
}

func TestExtract_PlainFile(t *testing.T) {
	ex := New()
	nodes, edges := ex.Extract(extractTenant, "README.md", "# My Game\n\nNotes about preload(\"x.tscn\")\n")

	// Non-structured files yield only their File node
	require.Len(t, nodes, 1)
	assert.Equal(t, types.NodeFile, nodes[0].Kind)
	assert.Empty(t, edges)
}

func TestExtract_EmptyContent(t *testing.T) {
	ex := New()
	nodes, edges := ex.Extract(extractTenant, "scenes/empty.tscn", "")

	require.Len(t, nodes, 1)
	assert.Empty(t, edges)
}

func TestExtract_DeterministicIDs(t *testing.T) {
	ex := New()
	nodesA, edgesA := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)
	nodesB, edgesB := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)

	assert.Equal(t, nodesA, nodesB)
	assert.Equal(t, edgesA, edgesB)
}

func TestExtract_TenantScopesIDs(t *testing.T) {
	other := types.Tenant{UserID: "u2", ProjectID: "p1"}
	ex := New()
	nodesA, _ := ex.Extract(extractTenant, "scenes/main.tscn", mainScene)
	nodesB, _ := ex.Extract(other, "scenes/main.tscn", mainScene)

	assert.NotEqual(t, nodesA[0].ID, nodesB[0].ID)
}

func TestStrengthFor(t *testing.T) {
	assert.Equal(t, 1.0, strengthFor(types.EdgeChildOf))
	assert.Equal(t, 0.6, strengthFor("CONNECTS_SIGNAL:hit->_on_hit"))
	assert.Equal(t, 0.5, strengthFor("SOMETHING_ELSE"))
}

func TestParseAttrs(t *testing.T) {
	attrs := parseAttrs(`name="Player" type="CharacterBody2D" parent="." instance=ExtResource("2_ui") index=3`)

	assert.Equal(t, "Player", attrs["name"])
	assert.Equal(t, "CharacterBody2D", attrs["type"])
	assert.Equal(t, ".", attrs["parent"])
	assert.Equal(t, `ExtResource("2_ui")`, attrs["instance"])
	assert.Equal(t, "3", attrs["index"])
}

func TestExtResourceID(t *testing.T) {
	assert.Equal(t, "1_abc", extResourceID(`ExtResource("1_abc")`))
	assert.Equal(t, "1", extResourceID(`ExtResource( 1 )`))
	assert.Equal(t, "", extResourceID(`SubResource("2")`))
}
