package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"product-viewer/core"
)

// PostProcessFBO is an HDR off-screen render target resolved to the default
// framebuffer with exposure and ACES tone mapping.
// The depth attachment is sampled to keep the background out of tone mapping.
type PostProcessFBO struct {
	FBO      uint32
	ColorTex uint32 // RGBA16F
	DepthTex uint32
	Width    int32
	Height   int32

	// Exposure multiplies scene radiance before tone mapping.
	Exposure float32
	// Background is written as-is where nothing was drawn.
	Background core.Color

	prog     uint32
	hdrLoc   int32
	depthLoc int32
	expLoc   int32
	bgLoc    int32
	quadVAO uint32 // empty VAO for the fullscreen triangle
	log     *zap.Logger
}

func NewPostProcessFBO(width, height int, log *zap.Logger) (*PostProcessFBO, error) {
	pp := &PostProcessFBO{Exposure: 1, log: log}

	prog, err := newProgram(ppVertSrc, ppFragSrc)
	if err != nil {
		return nil, fmt.Errorf("post-process shader: %w", err)
	}
	pp.prog = prog
	pp.hdrLoc = uniform(prog, "hdrBuffer")
	pp.depthLoc = uniform(prog, "depthBuffer")
	pp.expLoc = uniform(prog, "exposure")
	pp.bgLoc = uniform(prog, "background")

	gl.UseProgram(prog)
	gl.Uniform1i(pp.hdrLoc, 0)
	gl.Uniform1i(pp.depthLoc, 1)

	gl.GenVertexArrays(1, &pp.quadVAO)

	pp.allocFBO(width, height)
	return pp, nil
}

func (pp *PostProcessFBO) allocFBO(width, height int) {
	pp.Width = int32(max(width, 1))
	pp.Height = int32(max(height, 1))

	gl.GenTextures(1, &pp.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F,
		pp.Width, pp.Height, 0, gl.RGBA, gl.HALF_FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.GenTextures(1, &pp.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, pp.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F,
		pp.Width, pp.Height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &pp.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, pp.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_2D, pp.ColorTex, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT,
		gl.TEXTURE_2D, pp.DepthTex, 0)
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		pp.log.Warn("HDR framebuffer incomplete", zap.Uint32("status", s))
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (pp *PostProcessFBO) freeFBO() {
	if pp.FBO != 0 {
		gl.DeleteFramebuffers(1, &pp.FBO)
		pp.FBO = 0
	}
	if pp.ColorTex != 0 {
		gl.DeleteTextures(1, &pp.ColorTex)
		pp.ColorTex = 0
	}
	if pp.DepthTex != 0 {
		gl.DeleteTextures(1, &pp.DepthTex)
		pp.DepthTex = 0
	}
}

// Resize recreates the HDR target at the new pixel size.
func (pp *PostProcessFBO) Resize(width, height int) {
	pp.freeFBO()
	pp.allocFBO(width, height)
}

// Destroy frees all GPU resources owned by pp.
func (pp *PostProcessFBO) Destroy() {
	pp.freeFBO()
	if pp.prog != 0 {
		gl.DeleteProgram(pp.prog)
		pp.prog = 0
	}
	if pp.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &pp.quadVAO)
		pp.quadVAO = 0
	}
}

// Blit tone-maps the HDR target into the default framebuffer.
func (pp *PostProcessFBO) Blit() {
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(pp.quadVAO)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, pp.Width, pp.Height)
	gl.UseProgram(pp.prog)
	gl.Uniform1f(pp.expLoc, pp.Exposure)
	gl.Uniform3f(pp.bgLoc, pp.Background.R, pp.Background.G, pp.Background.B)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, pp.DepthTex)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}
