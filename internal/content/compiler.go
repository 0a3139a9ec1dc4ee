package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// DefaultMoveSpeed is applied when a def omits moveSpeed.
const DefaultMoveSpeed float32 = 5.0

// spriteRenderablePrefix marks a sprite renderable, e.g. "sprite:pawn_east".
const spriteRenderablePrefix = "sprite:"

// CompileModDefs parses every .yaml/.yml file under sourceDir into entity
// defs. Files are processed sorted by slash-normalized relative path so the
// output order is stable across platforms. A duplicate def name inside one
// mod is fatal; duplicates across mods are resolved later by the merge.
func CompileModDefs(sourceDir, modID string) ([]EntityDef, error) {
	files, err := collectDefFiles(sourceDir, modID)
	if err != nil {
		return nil, err
	}

	var defs []EntityDef
	seen := make(map[string]string, 8) // def name -> file it came from
	for _, file := range files {
		data, readErr := os.ReadFile(file.absPath)
		if readErr != nil {
			return nil, &CompileError{Code: CodeReadFailure, ModID: modID,
				Message: fmt.Sprintf("read %s: %v", file.relPath, readErr)}
		}
		fileDefs, parseErr := parseDefFile(data, modID, file.relPath)
		if parseErr != nil {
			return nil, parseErr
		}
		for _, def := range fileDefs {
			if origin, dup := seen[def.DefName]; dup {
				return nil, &CompileError{Code: CodeDuplicateDefName, ModID: modID, DefName: def.DefName,
					Message: fmt.Sprintf("already defined in %s, redefined in %s", origin, file.relPath)}
			}
			seen[def.DefName] = file.relPath
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// MergeDefs applies load order: later mods replace earlier defs with the
// same name. Output is sorted by def name so database ids are reproducible
// regardless of per-mod file layout.
func MergeDefs(perMod [][]EntityDef) []EntityDef {
	merged := make(map[string]EntityDef)
	for _, defs := range perMod {
		for _, def := range defs {
			merged[def.DefName] = def
		}
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]EntityDef, 0, len(merged))
	for _, name := range names {
		out = append(out, merged[name])
	}
	return out
}

type defFile struct {
	relPath string
	absPath string
}

func collectDefFiles(sourceDir, modID string) ([]defFile, error) {
	var files []defFile
	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return &CompileError{Code: CodeReadFailure, ModID: modID,
				Message: fmt.Sprintf("walk %s: %v", path, walkErr)}
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		rel, relErr := filepath.Rel(sourceDir, path)
		if relErr != nil {
			return &CompileError{Code: CodeReadFailure, ModID: modID,
				Message: fmt.Sprintf("relativize %s: %v", path, relErr)}
		}
		files = append(files, defFile{
			relPath: strings.ReplaceAll(rel, string(filepath.Separator), "/"),
			absPath: path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].relPath < files[j].relPath })
	return files, nil
}

// parseDefFile decodes one def file. Parsing walks the yaml node tree by
// hand instead of unmarshalling into a struct so unknown fields and badly
// typed scalars surface as structured compile errors, not permissive zeros.
func parseDefFile(data []byte, modID, relPath string) ([]EntityDef, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &CompileError{Code: CodeMalformedFile, ModID: modID,
			Message: fmt.Sprintf("%s: %v", relPath, err)}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil // empty file contributes nothing
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, &CompileError{Code: CodeMalformedFile, ModID: modID,
			Message: fmt.Sprintf("%s: top level must be a mapping", relPath)}
	}

	var defsNode *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if key.Value == "defs" {
			defsNode = doc.Content[i+1]
			continue
		}
		return nil, &CompileError{Code: CodeUnknownField, ModID: modID, Field: key.Value,
			Message: fmt.Sprintf("%s: unknown top-level key", relPath)}
	}
	if defsNode == nil {
		return nil, nil
	}
	if defsNode.Kind != yaml.SequenceNode {
		return nil, &CompileError{Code: CodeMalformedFile, ModID: modID,
			Message: fmt.Sprintf("%s: defs must be a sequence", relPath)}
	}

	var defs []EntityDef
	for _, defNode := range defsNode.Content {
		def, err := parseDefNode(defNode, modID, relPath)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func parseDefNode(node *yaml.Node, modID, relPath string) (EntityDef, error) {
	def := EntityDef{
		MoveSpeed:  DefaultMoveSpeed,
		Renderable: core.RenderableDesc{Kind: core.RenderablePlaceholder},
	}
	if node.Kind != yaml.MappingNode {
		return def, &CompileError{Code: CodeMalformedFile, ModID: modID,
			Message: fmt.Sprintf("%s: each def must be a mapping", relPath)}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		var err error
		switch key {
		case "name":
			def.DefName, err = scalarString(value, modID, def.DefName, key)
		case "label":
			def.Label, err = scalarString(value, modID, def.DefName, key)
		case "renderable":
			var raw string
			raw, err = scalarString(value, modID, def.DefName, key)
			if err == nil {
				def.Renderable, err = parseRenderable(raw, modID, def.DefName)
			}
		case "moveSpeed":
			def.MoveSpeed, err = scalarFloat(value, modID, def.DefName, key)
		case "healthMax":
			def.HealthMax, err = scalarUintPtr(value, modID, def.DefName, key)
		case "baseDamage":
			def.BaseDamage, err = scalarUintPtr(value, modID, def.DefName, key)
		case "aggroRadius":
			def.AggroRadius, err = scalarFloatPtr(value, modID, def.DefName, key)
		case "attackRange":
			def.AttackRange, err = scalarFloatPtr(value, modID, def.DefName, key)
		case "attackCooldownSeconds":
			def.AttackCooldownSeconds, err = scalarFloatPtr(value, modID, def.DefName, key)
		case "tags":
			def.Tags, err = stringList(value, modID, def.DefName, key)
		default:
			err = &CompileError{Code: CodeUnknownField, ModID: modID, DefName: def.DefName, Field: key,
				Message: fmt.Sprintf("%s: unknown def field", relPath)}
		}
		if err != nil {
			return def, err
		}
	}

	if def.DefName == "" {
		return def, &CompileError{Code: CodeMissingDefName, ModID: modID,
			Message: fmt.Sprintf("%s: def without a name", relPath)}
	}
	if def.Renderable.DebugName == "" {
		def.Renderable.DebugName = def.DefName
	}
	return def, nil
}

func parseRenderable(raw, modID, defName string) (core.RenderableDesc, error) {
	switch {
	case raw == "placeholder":
		return core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: defName}, nil
	case strings.HasPrefix(raw, spriteRenderablePrefix):
		key := strings.TrimPrefix(raw, spriteRenderablePrefix)
		if key == "" {
			return core.RenderableDesc{}, &CompileError{Code: CodeInvalidValue, ModID: modID,
				DefName: defName, Field: "renderable", Message: "sprite renderable needs a key"}
		}
		return core.RenderableDesc{Kind: core.RenderableSprite, SpriteKey: key, DebugName: defName}, nil
	default:
		return core.RenderableDesc{}, &CompileError{Code: CodeInvalidValue, ModID: modID,
			DefName: defName, Field: "renderable",
			Message: fmt.Sprintf("expected placeholder or sprite:<key>, got %q", raw)}
	}
}

func scalarString(node *yaml.Node, modID, defName, field string) (string, error) {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return "", &CompileError{Code: CodeInvalidValue, ModID: modID, DefName: defName, Field: field,
			Message: "expected a string"}
	}
	return node.Value, nil
}

// scalarFloat accepts JSON-style floats and decimal integers only.
func scalarFloat(node *yaml.Node, modID, defName, field string) (float32, error) {
	if node.Kind != yaml.ScalarNode || (node.Tag != "!!float" && node.Tag != "!!int") {
		return 0, &CompileError{Code: CodeInvalidValue, ModID: modID, DefName: defName, Field: field,
			Message: fmt.Sprintf("expected a number, got %q", node.Value)}
	}
	f, err := strconv.ParseFloat(node.Value, 32)
	if err != nil {
		return 0, &CompileError{Code: CodeInvalidValue, ModID: modID, DefName: defName, Field: field,
			Message: fmt.Sprintf("invalid number %q", node.Value)}
	}
	return float32(f), nil
}

func scalarFloatPtr(node *yaml.Node, modID, defName, field string) (*float32, error) {
	f, err := scalarFloat(node, modID, defName, field)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func scalarUintPtr(node *yaml.Node, modID, defName, field string) (*uint32, error) {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!int" {
		return nil, &CompileError{Code: CodeInvalidValue, ModID: modID, DefName: defName, Field: field,
			Message: fmt.Sprintf("expected a non-negative integer, got %q", node.Value)}
	}
	v, err := strconv.ParseUint(node.Value, 10, 32)
	if err != nil {
		return nil, &CompileError{Code: CodeInvalidValue, ModID: modID, DefName: defName, Field: field,
			Message: fmt.Sprintf("invalid integer %q", node.Value)}
	}
	out := uint32(v)
	return &out, nil
}

func stringList(node *yaml.Node, modID, defName, field string) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, &CompileError{Code: CodeInvalidValue, ModID: modID, DefName: defName, Field: field,
			Message: "expected a list of strings"}
	}
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		s, err := scalarString(item, modID, defName, field)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
