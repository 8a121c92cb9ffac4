package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"product-viewer/core"
	"product-viewer/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// channel is one optional material texture slot in the main shader.
type channel struct {
	unit   uint32
	hasLoc int32
}

// Renderer is the OpenGL draw backend: one shadow pass for the shadow
// casting light, a forward PBR pass into an HDR target and a tone-mapped
// blit to the window.
type Renderer struct {
	program uint32

	mvpLoc           int32
	modelLoc         int32
	lightViewProjLoc int32

	lightCountLoc    int32
	lightDirLoc      [MaxLights]int32
	lightRadianceLoc [MaxLights]int32
	shadowLightLoc   int32
	ambientColorLoc  int32
	cameraPosLoc     int32

	matColorLoc     int32
	matRoughnessLoc int32
	matMetalnessLoc int32
	envIntensityLoc int32
	bumpScaleLoc    int32
	aoIntensityLoc  int32
	displacementLoc int32
	hasShadowsLoc   int32
	shadowTexelLoc  int32
	hasEnvMapLoc    int32
	envMaxLodLoc    int32

	baseColor, normal, roughness, bump, ao, occlusion, displacement channel

	shadowProg        uint32
	shadowLightMVPLoc int32
	shadowMap         *ShadowMap

	postProcess *PostProcessFBO

	viewportW int32
	viewportH int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
	textures  map[*scene.Texture]struct{}
	// failed remembers uploads that errored so they are not retried per frame.
	failed map[any]struct{}
	env    *scene.Environment

	log *zap.Logger
}

// NewRenderer initialises OpenGL for a width×height framebuffer with a
// shadowSize² shadow map. The GL context must be current.
func NewRenderer(width, height, shadowSize int, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}
	shadowProg, err := newProgram(depthVertSrc, depthFragSrc)
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, fmt.Errorf("depth shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	r := &Renderer{
		program:    prog,
		shadowProg: shadowProg,

		mvpLoc:           uniform(prog, "mvp"),
		modelLoc:         uniform(prog, "model"),
		lightViewProjLoc: uniform(prog, "lightViewProj"),

		lightCountLoc:   uniform(prog, "lightCount"),
		shadowLightLoc:  uniform(prog, "shadowLight"),
		ambientColorLoc: uniform(prog, "ambientColor"),
		cameraPosLoc:    uniform(prog, "cameraPos"),

		matColorLoc:     uniform(prog, "matColor"),
		matRoughnessLoc: uniform(prog, "matRoughness"),
		matMetalnessLoc: uniform(prog, "matMetalness"),
		envIntensityLoc: uniform(prog, "envMapIntensity"),
		bumpScaleLoc:    uniform(prog, "bumpScale"),
		aoIntensityLoc:  uniform(prog, "aoMapIntensity"),
		displacementLoc: uniform(prog, "displacementScale"),
		hasShadowsLoc:   uniform(prog, "hasShadows"),
		shadowTexelLoc:  uniform(prog, "shadowTexel"),
		hasEnvMapLoc:    uniform(prog, "hasEnvMap"),
		envMaxLodLoc:    uniform(prog, "envMaxLod"),

		baseColor:    channel{unitBaseColor, uniform(prog, "hasBaseColorMap")},
		normal:       channel{unitNormal, uniform(prog, "hasNormalMap")},
		roughness:    channel{unitRoughness, uniform(prog, "hasRoughnessMap")},
		bump:         channel{unitBump, uniform(prog, "hasBumpMap")},
		ao:           channel{unitAO, uniform(prog, "hasAOMap")},
		occlusion:    channel{unitOcclusion, uniform(prog, "hasOcclusionMap")},
		displacement: channel{unitDisplacement, uniform(prog, "hasDisplacementMap")},

		shadowLightMVPLoc: uniform(shadowProg, "lightMVP"),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
		textures:  make(map[*scene.Texture]struct{}),
		failed:    make(map[any]struct{}),
		log:       log,
	}
	for i := range MaxLights {
		r.lightDirLoc[i] = uniform(prog, fmt.Sprintf("lightDir[%d]", i))
		r.lightRadianceLoc[i] = uniform(prog, fmt.Sprintf("lightRadiance[%d]", i))
	}

	gl.UseProgram(prog)
	for name, unit := range map[string]int32{
		"baseColorMap":    unitBaseColor,
		"shadowMap":       unitShadow,
		"normalMap":       unitNormal,
		"roughnessMap":    unitRoughness,
		"bumpMap":         unitBump,
		"aoMap":           unitAO,
		"occlusionMap":    unitOcclusion,
		"envMap":          unitEnv,
		"displacementMap": unitDisplacement,
	} {
		gl.Uniform1i(uniform(prog, name), unit)
	}
	ident := mgl32.Ident4()
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &ident[0])

	if shadowSize > 0 {
		if r.shadowMap, err = NewShadowMap(shadowSize); err != nil {
			r.Destroy()
			return nil, err
		}
	}
	if r.postProcess, err = NewPostProcessFBO(width, height, log); err != nil {
		r.Destroy()
		return nil, err
	}
	r.SetViewport(width, height)
	return r, nil
}

// SetViewport resizes the viewport and the HDR target to exactly
// width×height pixels.
func (r *Renderer) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	if r.postProcess != nil && (r.postProcess.Width != r.viewportW || r.postProcess.Height != r.viewportH) {
		r.postProcess.Resize(width, height)
	}
}

// SetExposure sets the tone-mapping exposure multiplier.
func (r *Renderer) SetExposure(v float32) {
	r.postProcess.Exposure = v
}

// HasShadowMap reports whether the shadow FBO exists.
func (r *Renderer) HasShadowMap() bool {
	return r.shadowMap != nil
}

// BeginShadowPass binds the depth FBO. It reports false when shadows are
// disabled, in which case DrawMeshShadow must not be called.
func (r *Renderer) BeginShadowPass() bool {
	if r.shadowMap == nil {
		return false
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.shadowMap.FBO)
	gl.Viewport(0, 0, r.shadowMap.Size, r.shadowMap.Size)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.UseProgram(r.shadowProg)
	return true
}

// DrawMeshShadow draws a mesh into the depth buffer.
func (r *Renderer) DrawMeshShadow(mesh *scene.Mesh, lightMVP mgl32.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}
	gl.UniformMatrix4fv(r.shadowLightMVPLoc, 1, false, &lightMVP[0])
	r.drawGPU(gpu, mesh)
}

// EndShadowPass restores the default framebuffer and viewport.
func (r *Renderer) EndShadowPass() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
}

// BeginFrame binds the HDR target, clears it and sets per-frame lighting,
// camera and shadow uniforms. lightVP is the shadow caster's light-space
// transform; hasShadows is true when the shadow map was rendered this frame.
func (r *Renderer) BeginFrame(s *scene.Scene, cam *scene.PerspectiveCamera, lightVP mgl32.Mat4, hasShadows bool) {
	pp := r.postProcess
	pp.Background = s.Background
	gl.BindFramebuffer(gl.FRAMEBUFFER, pp.FBO)
	gl.Viewport(0, 0, pp.Width, pp.Height)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.cameraPosLoc, cam.Position.X(), cam.Position.Y(), cam.Position.Z())

	ambient := core.ColorBlack
	if s.Ambient != nil {
		ambient = s.Ambient.Color.Scale(s.Ambient.Intensity)
	}
	gl.Uniform3f(r.ambientColorLoc, ambient.R, ambient.G, ambient.B)

	n := min(len(s.Lights), MaxLights)
	if len(s.Lights) > MaxLights {
		r.warnOnce(s, "too many directional lights, extra lights ignored", zap.Int("count", len(s.Lights)))
	}
	shadowLight := int32(-1)
	for i, l := range s.Lights[:n] {
		d := l.Direction()
		rad := l.Color.Scale(l.Intensity)
		gl.Uniform3f(r.lightDirLoc[i], d.X(), d.Y(), d.Z())
		gl.Uniform3f(r.lightRadianceLoc[i], rad.R, rad.G, rad.B)
		if l.CastShadow && shadowLight < 0 {
			shadowLight = int32(i)
		}
	}
	gl.Uniform1i(r.lightCountLoc, int32(n))
	gl.Uniform1i(r.shadowLightLoc, shadowLight)

	if hasShadows && r.shadowMap != nil {
		gl.Uniform1i(r.hasShadowsLoc, 1)
		gl.Uniform1f(r.shadowTexelLoc, r.shadowMap.Texel())
		gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &lightVP[0])
		gl.ActiveTexture(gl.TEXTURE0 + unitShadow)
		gl.BindTexture(gl.TEXTURE_2D, r.shadowMap.DepthTex)
	} else {
		gl.Uniform1i(r.hasShadowsLoc, 0)
	}

	r.bindEnvironment(s.Environment)
}

// bindEnvironment uploads env on first use and binds it for reflections.
func (r *Renderer) bindEnvironment(env *scene.Environment) {
	if env != r.env && r.env != nil {
		DeleteEnvironment(r.env)
		r.env = nil
	}
	if env != nil && env.GLID == 0 {
		if _, bad := r.failed[env]; !bad {
			if err := UploadEnvironment(env); err != nil {
				r.failed[env] = struct{}{}
				r.log.Warn("environment upload failed", zap.String("name", env.Name), zap.Error(err))
			}
		}
	}
	if env == nil || env.GLID == 0 {
		gl.Uniform1i(r.hasEnvMapLoc, 0)
		return
	}
	r.env = env
	gl.Uniform1i(r.hasEnvMapLoc, 1)
	gl.Uniform1f(r.envMaxLodLoc, float32(mipLevels(env.Width, env.Height)))
	gl.ActiveTexture(gl.TEXTURE0 + unitEnv)
	gl.BindTexture(gl.TEXTURE_2D, env.GLID)
}

// DrawMesh draws a mesh with the given MVP and model matrices using its
// material, or the default material when it has none.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mvp, model mgl32.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	r.applyMaterial(mat, mesh.HasUV2)
	r.drawGPU(gpu, mesh)
}

// EndFrame resolves the HDR target to the window.
func (r *Renderer) EndFrame() {
	r.postProcess.Blit()
}

func (r *Renderer) drawGPU(gpu *GPUMesh, mesh *scene.Mesh) {
	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) applyMaterial(mat *scene.StandardMaterial, hasUV2 bool) {
	gl.Uniform3f(r.matColorLoc, mat.Color.R, mat.Color.G, mat.Color.B)
	gl.Uniform1f(r.matRoughnessLoc, mat.Roughness)
	gl.Uniform1f(r.matMetalnessLoc, mat.Metalness)
	gl.Uniform1f(r.envIntensityLoc, mat.EnvMapIntensity)
	gl.Uniform1f(r.bumpScaleLoc, mat.BumpScale)
	gl.Uniform1f(r.aoIntensityLoc, mat.AOMapIntensity)
	gl.Uniform1f(r.displacementLoc, mat.DisplacementScale)

	r.bindChannel(r.baseColor, mat.BaseColorMap)
	r.bindChannel(r.normal, mat.NormalMap)
	r.bindChannel(r.roughness, mat.RoughnessMap)
	r.bindChannel(r.bump, mat.BumpMap)
	r.bindChannel(r.occlusion, mat.OcclusionMap)
	r.bindChannel(r.displacement, mat.DisplacementMap)
	// The AO map reads the second UV set.
	if hasUV2 {
		r.bindChannel(r.ao, mat.AOMap)
	} else {
		r.bindChannel(r.ao, nil)
	}
}

// bindChannel uploads tex on first use and binds it to the channel's unit.
func (r *Renderer) bindChannel(c channel, tex *scene.Texture) {
	if tex != nil && tex.GLID == 0 {
		if _, bad := r.failed[tex]; !bad {
			if err := UploadTexture(tex); err != nil {
				r.failed[tex] = struct{}{}
				r.log.Warn("texture upload failed", zap.String("name", tex.Name), zap.Error(err))
			} else {
				r.textures[tex] = struct{}{}
				r.log.Debug("texture uploaded",
					zap.String("name", tex.Name),
					zap.Stringer("colorSpace", tex.ColorSpace))
			}
		}
	}
	if tex == nil || tex.GLID == 0 {
		gl.Uniform1i(c.hasLoc, 0)
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + c.unit)
	gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
	gl.Uniform1i(c.hasLoc, 1)
}

func (r *Renderer) warnOnce(key any, msg string, fields ...zap.Field) {
	if _, seen := r.failed[key]; seen {
		return
	}
	r.failed[key] = struct{}{}
	r.log.Warn(msg, fields...)
}

func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Color)},
		{3, unsafe.Offsetof(v.Tangent)},
		{3, unsafe.Offsetof(v.Bitangent)},
		{2, unsafe.Offsetof(v.UV2)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)))
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	gpu, ok := r.gpuMeshes[mesh]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	if gpu.HasIndices {
		gl.DeleteBuffers(1, &gpu.EBO)
	}
	delete(r.gpuMeshes, mesh)
	mesh.GPUData = nil
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	for tex := range r.textures {
		DeleteTexture(tex)
	}
	clear(r.textures)
	DeleteEnvironment(r.env)
	r.env = nil
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
		r.shadowMap = nil
	}
	if r.postProcess != nil {
		r.postProcess.Destroy()
		r.postProcess = nil
	}
	if r.shadowProg != 0 {
		gl.DeleteProgram(r.shadowProg)
		r.shadowProg = 0
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
