package scene

import "product-viewer/core"

// Scene is the root of everything drawn in a frame.
type Scene struct {
	Root        *Node
	Background  core.Color
	Environment *Environment
	Lights      []*DirectionalLight
	Ambient     *AmbientLight
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Background: core.ColorFromBytes(30, 30, 30),
	}
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) AddLight(light *DirectionalLight) {
	s.Lights = append(s.Lights, light)
}

func (s *Scene) SetAmbient(a *AmbientLight) {
	s.Ambient = a
}

// SetEnvironment installs env for lighting and reflections.
func (s *Scene) SetEnvironment(env *Environment) {
	s.Environment = env
}

// ShadowCaster returns the first light that casts shadows, or nil.
func (s *Scene) ShadowCaster() *DirectionalLight {
	for _, l := range s.Lights {
		if l.CastShadow {
			return l
		}
	}
	return nil
}

// GetVisibleNodes returns all nodes with meshes that are visible
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node

	s.Root.Traverse(func(node *Node) {
		if node.Visible && node.Mesh != nil {
			visible = append(visible, node)
		}
	})

	return visible
}
