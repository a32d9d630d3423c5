// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// UploadFrame for the OpenGL/EGL target: a lazily-created texture drawn
// as a full-viewport triangle strip, the minimal pipeline needed to put
// a decoded RGBA frame on screen.

package gpux

/*
#cgo pkg-config: glesv2
#include <GLES2/gl2.h>
#include <stdlib.h>

static const GLfloat wayvidQuadVerts[] = {
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

const glVertexShaderSrc = `
attribute vec2 aPos;
attribute vec2 aUV;
varying vec2 vUV;
void main() {
	vUV = aUV;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
`

const glFragmentShaderSrc = `
precision mediump float;
varying vec2 vUV;
uniform sampler2D uTex;
void main() {
	gl_FragColor = texture2D(uTex, vUV);
}
`

// glQuad is the lazily-created, process-lifetime quad pipeline shared
// by every frame uploaded to one openGLTarget.
type glQuad struct {
	texture C.GLuint
	program C.GLuint
	vbo     C.GLuint
	posLoc  C.GLint
	uvLoc   C.GLint
	ready   bool
}

func (t *openGLTarget) UploadFrame(pix []byte, w, h int) error {
	if t.destroyed {
		return ErrTargetDestroyed
	}
	if len(pix) < w*h*4 {
		return fmt.Errorf("gpux: UploadFrame: pix too small for %dx%d", w, h)
	}
	if !t.quad.ready {
		if err := t.quad.init(); err != nil {
			return err
		}
	}

	C.glViewport(0, 0, C.GLsizei(t.w), C.GLsizei(t.h))
	C.glClearColor(0, 0, 0, 1)
	C.glClear(C.GL_COLOR_BUFFER_BIT)

	C.glActiveTexture(C.GL_TEXTURE0)
	C.glBindTexture(C.GL_TEXTURE_2D, t.quad.texture)
	C.glTexImage2D(C.GL_TEXTURE_2D, 0, C.GL_RGBA, C.GLsizei(w), C.GLsizei(h), 0,
		C.GL_RGBA, C.GL_UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))

	C.glUseProgram(t.quad.program)
	C.glBindBuffer(C.GL_ARRAY_BUFFER, t.quad.vbo)
	stride := C.GLsizei(4 * 4)
	C.glEnableVertexAttribArray(C.GLuint(t.quad.posLoc))
	C.glVertexAttribPointer(C.GLuint(t.quad.posLoc), 2, C.GL_FLOAT, C.GL_FALSE, stride, unsafe.Pointer(uintptr(0)))
	C.glEnableVertexAttribArray(C.GLuint(t.quad.uvLoc))
	C.glVertexAttribPointer(C.GLuint(t.quad.uvLoc), 2, C.GL_FLOAT, C.GL_FALSE, stride, unsafe.Pointer(uintptr(2*4)))
	C.glDrawArrays(C.GL_TRIANGLE_STRIP, 0, 4)
	return nil
}

func (q *glQuad) init() error {
	vs, err := compileShader(C.GL_VERTEX_SHADER, glVertexShaderSrc)
	if err != nil {
		return err
	}
	fs, err := compileShader(C.GL_FRAGMENT_SHADER, glFragmentShaderSrc)
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
		return fmt.Errorf("gpux: glLinkProgram failed")
	}
	C.glDeleteShader(vs)
	C.glDeleteShader(fs)

	cPos := C.CString("aPos")
	defer C.free(unsafe.Pointer(cPos))
	cUV := C.CString("aUV")
	defer C.free(unsafe.Pointer(cUV))

	var vbo, tex C.GLuint
	C.glGenBuffers(1, &vbo)
	C.glBindBuffer(C.GL_ARRAY_BUFFER, vbo)
	C.glBufferData(C.GL_ARRAY_BUFFER, C.GLsizeiptr(unsafe.Sizeof(C.wayvidQuadVerts)),
		unsafe.Pointer(&C.wayvidQuadVerts[0]), C.GL_STATIC_DRAW)

	C.glGenTextures(1, &tex)
	C.glBindTexture(C.GL_TEXTURE_2D, tex)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_MIN_FILTER, C.GL_LINEAR)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_MAG_FILTER, C.GL_LINEAR)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_WRAP_S, C.GL_CLAMP_TO_EDGE)
	C.glTexParameteri(C.GL_TEXTURE_2D, C.GL_TEXTURE_WRAP_T, C.GL_CLAMP_TO_EDGE)

	q.program = prog
	q.vbo = vbo
	q.texture = tex
	q.posLoc = C.glGetAttribLocation(prog, cPos)
	q.uvLoc = C.glGetAttribLocation(prog, cUV)
	q.ready = true
	return nil
}

func (t *openGLTarget) destroyQuad() {
	if !t.quad.ready {
		return
	}
	C.glDeleteTextures(1, &t.quad.texture)
	C.glDeleteBuffers(1, &t.quad.vbo)
	C.glDeleteProgram(t.quad.program)
	t.quad.ready = false
}

func compileShader(kind C.GLenum, src string) (C.GLuint, error) {
	shader := C.glCreateShader(kind)
	csrc := C.CString(src)
	defer C.free(unsafe.Pointer(csrc))
	C.glShaderSource(shader, 1, &csrc, nil)
	C.glCompileShader(shader)
	var compiled C.GLint
	C.glGetShaderiv(shader, C.GL_COMPILE_STATUS, &compiled)
	if compiled == 0 {
		return 0, fmt.Errorf("gpux: shader compile failed")
	}
	return shader, nil
}
