// Package shader compiles the embedded GLSL programs.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/orrery/internal/engine/shader/glsl"
)

// Load compiles a named embedded program, binds its uniform block to
// blockBinding and its sampler to texture unit 0.
func Load(name string, blockBinding uint32) (uint32, error) {
	vert, frag, err := glsl.Program(name)
	if err != nil {
		return 0, err
	}
	program, err := CompileProgram(vert, frag)
	if err != nil {
		return 0, fmt.Errorf("program %s: %w", name, err)
	}

	idx := gl.GetUniformBlockIndex(program, gl.Str(glsl.UniformBlock+"\x00"))
	if idx == gl.INVALID_INDEX {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("program %s: uniform block %s not active", name, glsl.UniformBlock)
	}
	gl.UniformBlockBinding(program, idx, blockBinding)

	gl.UseProgram(program)
	gl.Uniform1i(GetUniform(program, glsl.TextureSampler), 0)
	gl.UseProgram(0)
	return program, nil
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32, stage string) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csource, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(sh, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("%s shader: %s", stage, msg)
	}
	return sh, nil
}

func infoLog(obj uint32, getiv func(uint32, uint32, *int32), getLog func(uint32, int32, *int32, *uint8)) string {
	var logLen int32
	getiv(obj, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return "(no log)"
	}
	buf := make([]byte, logLen)
	getLog(obj, logLen, nil, &buf[0])
	return string(buf)
}

// GetUniform returns the uniform location for the given name, or -1.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
