// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// BeginFrame/DrawSprite for the OpenGL/EGL target: a second, transform-
// and-blend-aware pipeline alongside opengl_upload.go's fixed full-
// viewport quad, used by the Scene Renderer to composite one or
// more Image objects per frame.

package gpux

/*
#cgo pkg-config: glesv2
#include <GLES2/gl2.h>
#include <stdlib.h>

static const GLfloat wayvidSpriteVerts[] = {
	// x, y,    u, v
	-1, -1,   0, 1,
	 1, -1,   1, 1,
	-1,  1,   0, 0,
	 1,  1,   1, 0,
};
*/
import "C"

import (
	"fmt"
	"unsafe"
)

const glSpriteVertexShaderSrc = `
attribute vec2 aPos;
attribute vec2 aUV;
uniform mat3 uTransform;
varying vec2 vUV;
void main() {
	vec3 p = uTransform * vec3(aPos, 1.0);
	vUV = aUV;
	gl_Position = vec4(p.xy, 0.0, 1.0);
}
`

const glSpriteFragmentShaderSrc = `
precision mediump float;
varying vec2 vUV;
uniform sampler2D uTex;
uniform float uAlpha;
void main() {
	vec4 c = texture2D(uTex, vUV);
	gl_FragColor = vec4(c.rgb, c.a * uAlpha);
}
`

// glSprite is the lazily-created, process-lifetime sprite pipeline
// shared by every DrawSprite call on one openGLTarget.
type glSprite struct {
	texture     C.GLuint
	program     C.GLuint
	vbo         C.GLuint
	posLoc      C.GLint
	uvLoc       C.GLint
	transformLoc C.GLint
	alphaLoc    C.GLint
	ready       bool
}

func (t *openGLTarget) BeginFrame(r, g, b, a float32) error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	C.glViewport(0, 0, C.GLsizei(t.w), C.GLsizei(t.h))
	C.glClearColor(C.GLfloat(r), C.GLfloat(g), C.GLfloat(b), C.GLfloat(a))
	C.glClear(C.GL_COLOR_BUFFER_BIT)
	return nil
}

// glBlendEnum maps the GL enum names GLBlendFunc returns to their
// constants; an unrecognized name maps to GL_SRC_ALPHA.
func glBlendEnum(name string) C.GLenum {
	switch name {
	case "GL_SRC_ALPHA":
		return C.GL_SRC_ALPHA
	case "GL_ONE":
		return C.GL_ONE
	case "GL_ONE_MINUS_SRC_ALPHA":
		return C.GL_ONE_MINUS_SRC_ALPHA
	case "GL_DST_COLOR":
		return C.GL_DST_COLOR
	case "GL_ZERO":
		return C.GL_ZERO
	case "GL_ONE_MINUS_SRC_COLOR":
		return C.GL_ONE_MINUS_SRC_COLOR
	default:
		return C.GL_SRC_ALPHA
	}
}

func (t *openGLTarget) DrawSprite(pix []byte, texW, texH int, transform [9]float64, alpha float64, blendSrc, blendDst string) error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	if len(pix) < texW*texH*4 {
		return fmt.Errorf("gpux: DrawSprite: pix too small for %dx%d", texW, texH)
	}
	if !t.sprite.ready {
		if err := t.sprite.init(); err != nil {
			return err
		}
	}

	C.glEnable(C.GL_BLEND)
	C.glBlendFunc(glBlendEnum(blendSrc), glBlendEnum(blendDst))

	C.glActiveTexture(C.GL_TEXTURE0)
	C.glBindTexture(C.GL_TEXTURE_2D, t.sprite.texture)
	C.glTexImage2D(C.GL_TEXTURE_2D, 0, C.GL_RGBA, C.GLsizei(texW), C.GLsizei(texH), 0,
		C.GL_RGBA, C.GL_UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))

	C.glUseProgram(t.sprite.program)
	C.glBindBuffer(C.GL_ARRAY_BUFFER, t.sprite.vbo)
	stride := C.GLsizei(4 * 4)
	C.glEnableVertexAttribArray(C.GLuint(t.sprite.posLoc))
	C.glVertexAttribPointer(C.GLuint(t.sprite.posLoc), 2, C.GL_FLOAT, C.GL_FALSE, stride, unsafe.Pointer(uintptr(0)))
	C.glEnableVertexAttribArray(C.GLuint(t.sprite.uvLoc))
	C.glVertexAttribPointer(C.GLuint(t.sprite.uvLoc), 2, C.GL_FLOAT, C.GL_FALSE, stride, unsafe.Pointer(uintptr(2*4)))

	// glUniformMatrix3fv wants column-major data; transform is
	// row-major (scene.Mat3), so transpose=true reinterprets it in
	// place rather than requiring the caller to reorder it.
	var m [9]C.GLfloat
	for i, v := range transform {
		m[i] = C.GLfloat(v)
	}
	C.glUniformMatrix3fv(t.sprite.transformLoc, 1, C.GL_TRUE, &m[0])
	C.glUniform1f(t.sprite.alphaLoc, C.GLfloat(alpha))

	C.glDrawArrays(C.GL_TRIANGLE_STRIP, 0, 4)
	C.glDisable(C.GL_BLEND)
	return nil
}

func (s *glSprite) init() error {
	vs, err := compileShader(C.GL_VERTEX_SHADER, glSpriteVertexShaderSrc)
	if err != nil {
		return err
	}
	fs, err := compileShader(C.GL_FRAGMENT_SHADER, glSpriteFragmentShaderSrc)
	if err != nil {
		return err
	}
	prog := C.glCreateProgram()
	C.glAttachShader(prog, vs)
	C.glAttachShader(prog, fs)
	C.glLinkProgram(prog)
	var linked C.GLint
	C.glGetProgramiv(prog, C.GL_LINK_STATUS, &linked)
	if linked == 0 {
		return fmt.Errorf("gpux: sprite glLinkProgram failed")
	}
	C.glDeleteShader(vs)
	C.glDeleteShader(fs)

	cPos := C.CString("aPos")
	defer C.free(unsafe.Pointer(cPos))
	cUV := C.CString("aUV")
	defer C.free(unsafe.Pointer(cUV))
	cTransform := C.CString("uTransform")
	defer C.free(unsafe.Pointer(cTransform))
	cAlpha := C.CString("uAlpha")
	defer C.free(unsafe.Pointer(cAlpha))

	var vbo, tex C.GLuint
	C.glGenBuffers(1, &vbo)
	C.glBindBuffer(C.GL_ARRAY_BUFFER, vbo)
	C.glBufferData(C.GL_ARRAY_BUFFER, C.GLsizeiptr(unsafe.Sizeof(C.wayvidSpriteVerts)),
		unsafe.Pointer(&C.wayvidSpriteVerts[0]), C.GL_STATIC_DRAW)

	C.glGenTextures(1, &tex)
	C.glBindTexture(C.GL_TEXTURE_2D, tex)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_MIN_FILTER, C.GL_LINEAR)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_MAG_FILTER, C.GL_LINEAR)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_WRAP_S, C.GL_CLAMP_TO_EDGE)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_WRAP_T, C.GL_CLAMP_TO_EDGE)

	s.program = prog
	s.vbo = vbo
	s.texture = tex
	s.posLoc = C.glGetAttribLocation(prog, cPos)
	s.uvLoc = C.glGetAttribLocation(prog, cUV)
	s.transformLoc = C.glGetUniformLocation(prog, cTransform)
	s.alphaLoc = C.glGetUniformLocation(prog, cAlpha)
	s.ready = true
	return nil
}

func (t *openGLTarget) destroySprite() {
	if !t.sprite.ready {
		return
	}
	C.glDeleteTextures(1, &t.sprite.texture)
	C.glDeleteBuffers(1, &t.sprite.vbo)
	C.glDeleteProgram(t.sprite.program)
	t.sprite.ready = false
}
