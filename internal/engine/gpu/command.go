package gpu

import "fmt"

// CommandKind tags a recorded command.
type CommandKind int

const (
	CmdBindPipeline CommandKind = iota
	CmdBindDescriptorSet
	CmdBindMesh
	CmdDrawIndexed
)

// String returns a short name for logs and test failures.
func (k CommandKind) String() string {
	switch k {
	case CmdBindPipeline:
		return "bind_pipeline"
	case CmdBindDescriptorSet:
		return "bind_set"
	case CmdBindMesh:
		return "bind_mesh"
	case CmdDrawIndexed:
		return "draw_indexed"
	default:
		return fmt.Sprintf("cmd(%d)", int(k))
	}
}

// Command is one recorded operation. Only the fields for its Kind are set.
type Command struct {
	Kind       CommandKind
	Pipeline   Pipeline
	Set        DescriptorSet
	ImageIndex int
	Mesh       Mesh
	IndexCount int
}

// CommandBuffer records draw commands for one frame.
type CommandBuffer struct {
	cmds  []Command
	draws int
}

// NewCommandBuffer creates an empty buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{cmds: make([]Command, 0, 64)}
}

// Reset clears the buffer for reuse, keeping its capacity.
func (cb *CommandBuffer) Reset() {
	cb.cmds = cb.cmds[:0]
	cb.draws = 0
}

// BindPipeline selects the pipeline for subsequent draws.
func (cb *CommandBuffer) BindPipeline(p Pipeline) {
	cb.cmds = append(cb.cmds, Command{Kind: CmdBindPipeline, Pipeline: p})
}

// BindDescriptorSet binds a set's texture and its uniform slot for imageIndex.
func (cb *CommandBuffer) BindDescriptorSet(s DescriptorSet, imageIndex int) {
	cb.cmds = append(cb.cmds, Command{Kind: CmdBindDescriptorSet, Set: s, ImageIndex: imageIndex})
}

// BindMesh selects the vertex and index buffers.
func (cb *CommandBuffer) BindMesh(m Mesh) {
	cb.cmds = append(cb.cmds, Command{Kind: CmdBindMesh, Mesh: m})
}

// DrawIndexed draws count indices from the bound mesh.
func (cb *CommandBuffer) DrawIndexed(count int) {
	cb.cmds = append(cb.cmds, Command{Kind: CmdDrawIndexed, IndexCount: count})
	cb.draws++
}

// Commands returns the recorded commands in order.
func (cb *CommandBuffer) Commands() []Command {
	return cb.cmds
}

// DrawCount returns the number of draw commands recorded.
func (cb *CommandBuffer) DrawCount() int {
	return cb.draws
}
