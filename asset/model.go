package asset

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"product-viewer/scene"
)

// LoadModel fetches a .glb, .gltf or .obj model and returns a single root
// node holding its hierarchy. Any failure is fatal.
func LoadModel(ctx context.Context, location string, opts Options) (*scene.Node, error) {
	root, err := loadModel(ctx, location, opts)
	if err != nil {
		return nil, Fatal(location, err)
	}
	return root, nil
}

func loadModel(ctx context.Context, location string, opts Options) (*scene.Node, error) {
	u, err := parseLocation(location)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".glb", ".gltf", ".obj":
	default:
		return nil, fmt.Errorf("unsupported model format %q", ext)
	}

	res, err := newResource(ctx, opts.Client, location)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	p, cleanup, err := localPath(res)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	root := scene.NewNode(strings.TrimSuffix(path.Base(u.Path), ext))
	switch ext {
	case ".obj":
		meshes, err := scene.LoadOBJ(p)
		if err != nil {
			return nil, err
		}
		for _, m := range meshes {
			n := scene.NewNode(m.Name)
			n.Mesh = m
			root.AddChild(n)
		}
	default:
		result, err := scene.LoadGLTF(p)
		if err != nil {
			return nil, err
		}
		for _, n := range result.Roots {
			root.AddChild(n)
		}
	}

	meshes := root.Meshes()
	if len(meshes) == 0 {
		return nil, fmt.Errorf("model has no geometry")
	}
	opts.logger("model").Info("model loaded",
		zap.String("path", res.Path()),
		zap.Int("meshes", len(meshes)))
	return root, nil
}
