package types

import (
	"path/filepath"
	"strings"
)

// FileCategory classifies an indexed file by its extension. Categories drive
// the search category filter and graph extraction; chunking strategies keep
// their own narrower extension tables.
type FileCategory string

const (
	CategoryScene    FileCategory = "scene"
	CategoryScript   FileCategory = "script"
	CategoryResource FileCategory = "resource"
	CategoryConfig   FileCategory = "config"
	CategoryDoc      FileCategory = "doc"
	CategoryText     FileCategory = "text"
)

var categoryByExt = map[string]FileCategory{
	".tscn": CategoryScene, ".scn": CategoryScene, ".scene": CategoryScene,

	".tres": CategoryResource, ".res": CategoryResource, ".resource": CategoryResource,
	".gdns": CategoryResource, ".gdnlib": CategoryResource, ".gdextension": CategoryResource,

	".gd": CategoryScript, ".cs": CategoryScript, ".cpp": CategoryScript,
	".h": CategoryScript, ".hpp": CategoryScript, ".c": CategoryScript,
	".shader": CategoryScript, ".gdshader": CategoryScript, ".glsl": CategoryScript,
	".script": CategoryScript,

	".godot": CategoryConfig, ".import": CategoryConfig, ".cfg": CategoryConfig,
	".ini": CategoryConfig, ".json": CategoryConfig, ".xml": CategoryConfig,
	".yaml": CategoryConfig, ".yml": CategoryConfig,

	".md": CategoryDoc, ".txt": CategoryDoc, ".rst": CategoryDoc,
}

// DetectCategory classifies a path by extension. Unknown extensions fall
// back to the generic text category.
func DetectCategory(path string) FileCategory {
	ext := strings.ToLower(filepath.Ext(path))
	if cat, ok := categoryByExt[ext]; ok {
		return cat
	}
	return CategoryText
}

// IndexableExtension reports whether files with this extension are eligible
// for text indexing at all. Media, binaries, and archives are never indexed.
func IndexableExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := categoryByExt[ext]; ok {
		return true
	}
	return false
}

// ValidCategoryFilter reports whether a search category filter value is
// recognized. Empty and "text" both mean "no restriction" at the search
// layer; "text" additionally matches uncategorized files.
func ValidCategoryFilter(v string) bool {
	switch FileCategory(v) {
	case "", CategoryScene, CategoryScript, CategoryResource, CategoryConfig, CategoryDoc, CategoryText:
		return true
	}
	return false
}
