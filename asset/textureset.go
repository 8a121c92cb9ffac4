package asset

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"product-viewer/scene"
)

// TextureSet maps roles to loaded textures. A missing role means the
// channel is not applied.
type TextureSet map[TextureRole]*scene.Texture

// Roles returns the present roles in AllRoles order.
func (ts TextureSet) Roles() []TextureRole {
	var out []TextureRole
	for _, r := range AllRoles {
		if ts[r] != nil {
			out = append(out, r)
		}
	}
	return out
}

// TextureResult is the outcome of one role's load.
type TextureResult struct {
	Role     TextureRole
	Location string
	Texture  *scene.Texture
	Err      error
}

// LoadTextureSet fetches <dir>/<role><ext> for every role concurrently. It
// never fails: each failed role is logged and left out of the set. It returns
// once every attempt has settled.
func LoadTextureSet(ctx context.Context, dir string, roles []TextureRole, opts Options) TextureSet {
	set, _ := LoadTextureResults(ctx, dir, roles, opts)
	return set
}

// LoadTextureResults is LoadTextureSet that also returns per-role outcomes
// in the order of roles.
func LoadTextureResults(ctx context.Context, dir string, roles []TextureRole, opts Options) (TextureSet, []TextureResult) {
	log := opts.logger("textures")
	results := make([]TextureResult, len(roles))

	var g errgroup.Group
	for i, role := range roles {
		location := resolve(dir, string(role)+opts.ext())
		results[i] = TextureResult{Role: role, Location: location}
		g.Go(func() error {
			tex, err := LoadTexture(ctx, location, opts)
			if err != nil {
				results[i].Err = Recoverable(location, err)
				return nil
			}
			results[i].Texture = tex
			return nil
		})
	}
	_ = g.Wait()

	set := make(TextureSet, len(roles))
	for _, r := range results {
		if r.Err != nil {
			log.Warn("texture not applied", zap.String("role", string(r.Role)), zap.Error(r.Err))
			continue
		}
		set[r.Role] = r.Texture
	}
	return set, results
}
