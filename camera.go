package canvas

import "github.com/chewxy/math32"

// Camera produces the per-batch Transform for a pixel-space 2D viewport.
// The projection maps (0,0)..(w,h) to clip space and the view looks down the
// -Z axis, so element positions are plain pixel coordinates. Zoom and a
// reference resolution scale the model matrix, letting a UI authored for one
// resolution render on another without touching element data.
type Camera struct {
	// Eye is the top-left world coordinate visible on screen.
	Eye Vec3

	// Zoom scales the scene uniformly. 1 means one world unit per pixel.
	Zoom float32

	screen     Vec2
	refHeight  float32
	resScale   float32
	view, proj Mat4
}

// NewCamera creates a camera for the given screen size in pixels.
func NewCamera(width, height float32) *Camera {
	c := &Camera{Zoom: 1, resScale: 1}
	c.SetScreen(width, height)
	return c
}

// SetScreen updates the screen size. The projection is rebuilt only when the
// size actually changes.
func (c *Camera) SetScreen(width, height float32) {
	screen := V2(width, height)
	if c.screen == screen && c.proj != (Mat4{}) {
		return
	}
	c.screen = screen
	c.proj = Orthographic(0, width, 0, height, 0, 1)
	c.view = LookAt(V3(0, 0, 1), V3(0, 0, 0), V3(0, 1, 0))
	if c.refHeight > 0 {
		c.resScale = height / c.refHeight
	}
}

// SetReference sets the resolution the UI was authored for. Elements laid
// out for a reference height render at the same apparent size on any screen.
func (c *Camera) SetReference(height float32) {
	c.refHeight = height
	if height > 0 && c.screen.Y > 0 {
		c.resScale = c.screen.Y / height
	}
}

// Scaling returns the combined resolution and zoom scale factor.
func (c *Camera) Scaling() float32 {
	return c.resScale * c.Zoom
}

// LookAt centers the camera on the given world position.
func (c *Camera) LookAt(center Vec2) {
	s := c.Scaling()
	c.Eye = V3(center.X-c.screen.X/s/2, center.Y-c.screen.Y/s/2, 0)
}

// Viewport returns the world-space size currently visible.
func (c *Camera) Viewport() Vec2 {
	return c.screen.Div(c.Scaling())
}

// Transform returns the batch transform for world-space rendering: the model
// matrix applies zoom and the eye offset, snapped per component by the
// caller if pixel-perfect output is needed.
func (c *Camera) Transform() Transform {
	s := c.Scaling()
	model := Scaling(V3(s, s, 1)).Mul(Translation(c.Eye.Neg()))
	return Transform{Model: model, View: c.view, Proj: c.proj}
}

// ScreenTransform returns the batch transform for screen-space overlays:
// resolution scaling applies but zoom and the eye offset do not.
func (c *Camera) ScreenTransform() Transform {
	model := Scaling(V3(c.resScale, c.resScale, 1))
	return Transform{Model: model, View: c.view, Proj: c.proj}
}

// SnapEye floors the eye position to integer world coordinates. Fractional
// camera positions sample textures between texels and break pixel-perfect
// rendering.
func (c *Camera) SnapEye() {
	c.Eye.X = math32.Floor(c.Eye.X)
	c.Eye.Y = math32.Floor(c.Eye.Y)
}
